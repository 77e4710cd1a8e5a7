package dashboard

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

type fakeService struct {
	stats  map[uuid.UUID]*Stats
	videos map[uuid.UUID][]models.VideoCard
}

func (f *fakeService) Stats(_ context.Context, id uuid.UUID) (*Stats, error) {
	if s, ok := f.stats[id]; ok {
		return s, nil
	}
	return &Stats{}, nil
}

func (f *fakeService) Videos(_ context.Context, id uuid.UUID) ([]models.VideoCard, error) {
	if len(f.videos[id]) == 0 {
		return nil, apperror.NewNotFoundError("No videos found for this channel", nil)
	}
	return f.videos[id], nil
}

func get(t *testing.T, h http.Handler, id auth.Identity, target string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(auth.NewContextWithIdentity(req.Context(), id))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestDashboard(t *testing.T) {
	busy := auth.Identity{UserID: uuid.New(), Username: "busy"}
	idle := auth.Identity{UserID: uuid.New(), Username: "idle"}
	svc := &fakeService{
		stats: map[uuid.UUID]*Stats{busy.UserID: {TotalVideos: 2, TotalLikes: 5, TotalViews: 120, TotalSubscribers: 3}},
		videos: map[uuid.UUID][]models.VideoCard{busy.UserID: {
			{ID: uuid.New(), Title: "new", IsPublished: false},
			{ID: uuid.New(), Title: "old", IsPublished: true},
		}},
	}
	r := chi.NewRouter()
	NewDashboardHandlers(svc).RegisterRoutes(r)

	code, env := get(t, r, busy, "/stats")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{
		"totalVideos":      float64(2),
		"totalLikes":       float64(5),
		"totalViews":       float64(120),
		"totalSubscribers": float64(3),
	}, env["data"])

	code, env = get(t, r, idle, "/stats")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), env["data"].(map[string]any)["totalViews"])

	code, env = get(t, r, busy, "/videos")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env["data"], 2)

	code, env = get(t, r, idle, "/videos")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No videos found for this channel", env["message"])
}
