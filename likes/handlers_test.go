package likes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/auth"
	"github.com/user/vidtube-go/models"
)

type likeKey struct {
	target string
	id     uuid.UUID
	user   uuid.UUID
}

// fakeService keeps likes in a set.
type fakeService struct {
	existing map[uuid.UUID]bool
	likes    map[likeKey]bool
}

func (f *fakeService) Toggle(_ context.Context, target Target, targetID, userID uuid.UUID) (bool, error) {
	if !f.existing[targetID] {
		return false, apperror.NewNotFoundError(target.Name+" not found", nil)
	}
	k := likeKey{target.Name, targetID, userID}
	if f.likes[k] {
		delete(f.likes, k)
		return false, nil
	}
	f.likes[k] = true
	return true, nil
}

func (f *fakeService) LikedVideos(context.Context, uuid.UUID) (*LikedVideos, error) {
	videos := []models.VideoCard{{ID: uuid.New(), Title: "liked"}}
	return &LikedVideos{LikedVideos: videos, Count: len(videos)}, nil
}

var viewer = auth.Identity{UserID: uuid.New(), Username: "alice"}

func post(t *testing.T, h http.Handler, target string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, nil)
	req = req.WithContext(auth.NewContextWithIdentity(req.Context(), viewer))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestToggleTwiceUnlikes(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
	}{
		{"/toggle/v/", "Video"},
		{"/toggle/c/", "Comment"},
		{"/toggle/t/", "Tweet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targetID := uuid.New()
			svc := &fakeService{existing: map[uuid.UUID]bool{targetID: true}, likes: map[likeKey]bool{}}
			r := chi.NewRouter()
			NewLikeHandlers(svc).RegisterRoutes(r)

			code, env := post(t, r, tt.prefix+targetID.String())
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, tt.name+" liked successfully", env["message"])
			assert.Nil(t, env["data"])
			assert.Len(t, svc.likes, 1)

			code, env = post(t, r, tt.prefix+targetID.String())
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, tt.name+" unliked successfully", env["message"])
			assert.Empty(t, svc.likes)

			code, env = post(t, r, tt.prefix+uuid.NewString())
			assert.Equal(t, http.StatusNotFound, code)
			assert.Equal(t, tt.name+" not found", env["message"])

			code, _ = post(t, r, tt.prefix+"123")
			assert.Equal(t, http.StatusBadRequest, code)
		})
	}
}

func TestGetLikedVideos(t *testing.T) {
	r := chi.NewRouter()
	NewLikeHandlers(&fakeService{}).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/videos", nil)
	req = req.WithContext(auth.NewContextWithIdentity(req.Context(), viewer))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data LikedVideos `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 1, env.Data.Count)
	assert.Equal(t, "liked", env.Data.LikedVideos[0].Title)
}

func TestToggleRequiresIdentity(t *testing.T) {
	r := chi.NewRouter()
	NewLikeHandlers(&fakeService{}).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/toggle/v/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
