package comments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/auth"
	"github.com/user/vidtube-go/models"
	"github.com/user/vidtube-go/pagination"
)

type fakeService struct {
	comments map[uuid.UUID]*Comment
	videos   map[uuid.UUID]bool
	listed   pagination.Params
	deleted  []uuid.UUID
}

func (f *fakeService) List(_ context.Context, _ uuid.UUID, p pagination.Params) (*pagination.Page[Comment], error) {
	f.listed = p
	page := pagination.NewPage[Comment](nil, 0, p)
	return &page, nil
}

func (f *fakeService) Create(_ context.Context, videoID, ownerID uuid.UUID, content string) (*Comment, error) {
	if !f.videos[videoID] {
		return nil, apperror.NewNotFoundError("Video not found", nil)
	}
	c := &Comment{ID: uuid.New(), Content: content, VideoID: videoID, Owner: models.Owner{ID: ownerID}}
	f.comments[c.ID] = c
	return c, nil
}

func (f *fakeService) Get(_ context.Context, id uuid.UUID) (*Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Comment not found", nil)
	}
	return c, nil
}

func (f *fakeService) Update(_ context.Context, id uuid.UUID, content string) (*Comment, error) {
	f.comments[id].Content = content
	return f.comments[id], nil
}

func (f *fakeService) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	delete(f.comments, id)
	return nil
}

var (
	alice = auth.Identity{UserID: uuid.New(), Username: "alice"}
	bob   = auth.Identity{UserID: uuid.New(), Username: "bob"}
)

func setup() (*fakeService, http.Handler) {
	svc := &fakeService{comments: map[uuid.UUID]*Comment{}, videos: map[uuid.UUID]bool{}}
	r := chi.NewRouter()
	NewCommentHandler(svc).RegisterRoutes(r)
	return svc, r
}

func do(t *testing.T, h http.Handler, id auth.Identity, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.NewContextWithIdentity(req.Context(), id))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestAddComment(t *testing.T) {
	svc, h := setup()
	videoID := uuid.New()
	svc.videos[videoID] = true

	rec, env := do(t, h, alice, http.MethodPost, "/"+videoID.String(), `{"content":"  nice video  "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Comment added successfully", env["message"])
	assert.Equal(t, "nice video", env["data"].(map[string]any)["content"])

	rec, _ = do(t, h, alice, http.MethodPost, "/"+videoID.String(), `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, alice, http.MethodPost, "/"+uuid.NewString(), `{"content":"hello?"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = do(t, h, alice, http.MethodPost, "/not-a-uuid", `{"content":"hello?"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid videoId", env["message"])
}

func TestListCommentsUsesPagination(t *testing.T) {
	svc, h := setup()
	rec, env := do(t, h, alice, http.MethodGet, "/"+uuid.NewString()+"?page=3&limit=500", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pagination.Params{Page: 3, Limit: pagination.MaxLimit}, svc.listed)
	assert.Equal(t, []any{}, env["data"].(map[string]any)["docs"])
}

func TestOnlyOwnerMayEditOrDelete(t *testing.T) {
	svc, h := setup()
	c := &Comment{ID: uuid.New(), Content: "original", Owner: models.Owner{ID: alice.UserID}}
	svc.comments[c.ID] = c

	rec, env := do(t, h, bob, http.MethodPatch, "/c/"+c.ID.String(), `{"content":"edited by bob"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You are not authorized to update this comment", env["message"])
	assert.Equal(t, "original", c.Content)

	rec, _ = do(t, h, bob, http.MethodDelete, "/c/"+c.ID.String(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, svc.deleted)

	rec, _ = do(t, h, alice, http.MethodPatch, "/c/"+c.ID.String(), `{"content":"edited"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited", c.Content)

	rec, env = do(t, h, alice, http.MethodDelete, "/c/"+c.ID.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, env["data"])
	assert.Equal(t, []uuid.UUID{c.ID}, svc.deleted)

	rec, _ = do(t, h, alice, http.MethodDelete, "/c/"+c.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
