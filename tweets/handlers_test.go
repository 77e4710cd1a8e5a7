package tweets

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
)

type fakeService struct {
	tweets map[uuid.UUID]*Tweet
}

func (f *fakeService) Create(_ context.Context, ownerID uuid.UUID, content string) (*Tweet, error) {
	tw := &Tweet{ID: uuid.New(), Content: strings.TrimSpace(content), Owner: models.Owner{ID: ownerID}}
	f.tweets[tw.ID] = tw
	return tw, nil
}

func (f *fakeService) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]Tweet, error) {
	out := []Tweet{}
	for _, tw := range f.tweets {
		if tw.Owner.ID == ownerID {
			out = append(out, *tw)
		}
	}
	return out, nil
}

func (f *fakeService) Get(_ context.Context, id uuid.UUID) (*Tweet, error) {
	tw, ok := f.tweets[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Tweet not found", nil)
	}
	return tw, nil
}

func (f *fakeService) Update(_ context.Context, id uuid.UUID, content string) (*Tweet, error) {
	f.tweets[id].Content = content
	return f.tweets[id], nil
}

func (f *fakeService) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.tweets, id)
	return nil
}

var (
	alice = auth.Identity{UserID: uuid.New(), Username: "alice"}
	bob   = auth.Identity{UserID: uuid.New(), Username: "bob"}
)

func request(t *testing.T, h http.Handler, id auth.Identity, method, target, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(auth.NewContextWithIdentity(req.Context(), id))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestTweetLifecycle(t *testing.T) {
	svc := &fakeService{tweets: map[uuid.UUID]*Tweet{}}
	r := chi.NewRouter()
	NewTweetHandlers(svc).RegisterRoutes(r)

	code, env := request(t, r, alice, http.MethodPost, "/", `{"content":"hello world"}`)
	require.Equal(t, http.StatusCreated, code)
	id := env["data"].(map[string]any)["_id"].(string)

	code, env = request(t, r, alice, http.MethodPost, "/", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []any{"content is required"}, env["errors"])

	code, env = request(t, r, bob, http.MethodGet, "/user/"+alice.UserID.String(), "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env["data"], 1)

	code, env = request(t, r, bob, http.MethodPatch, "/"+id, `{"content":"bob was here"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Not authorized to update this tweet", env["message"])

	code, _ = request(t, r, alice, http.MethodPatch, "/"+id, `{"content":" "}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = request(t, r, alice, http.MethodPatch, "/"+id, `{"content":"hello again"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "hello again", env["data"].(map[string]any)["content"])

	code, _ = request(t, r, bob, http.MethodDelete, "/"+id, "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Len(t, svc.tweets, 1)

	code, _ = request(t, r, alice, http.MethodDelete, "/"+id, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, svc.tweets)

	code, _ = request(t, r, alice, http.MethodDelete, "/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
}
