package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidtube-go/apperror"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSONWritesSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]string{"title": "hello"}, "Video uploaded")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, float64(201), body["statusCode"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Video uploaded", body["message"])
	assert.Equal(t, "hello", body["data"].(map[string]any)["title"])
}

func TestHandleWritesAppError(t *testing.T) {
	h := Handle(func(w http.ResponseWriter, r *http.Request) error {
		return apperror.NewForbiddenError("You can only edit your own videos", nil)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/videos/x", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "You can only edit your own videos", body["message"])
	assert.Equal(t, []any{}, body["errors"])
}

func TestHandleHidesUnexpectedErrors(t *testing.T) {
	h := Handle(func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("pq: connection refused to 10.0.0.3")
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestHandleSuccessPassesThrough(t *testing.T) {
	h := Handle(func(w http.ResponseWriter, r *http.Request) error {
		OK(w, nil, "Video liked successfully")
		return nil
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	body := decodeBody(t, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["data"])
	assert.Equal(t, "Video liked successfully", body["message"])
}

func TestRecovererWritesFailureEnvelope(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])
}

type createTweet struct {
	Content string `json:"content" validate:"required,notblank"`
}

type updateAccount struct {
	FullName string `json:"fullName" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"first!"}`))
		var dst createTweet
		require.NoError(t, DecodeJSON(req, &dst))
		assert.Equal(t, "first!", dst.Content)
	})

	t.Run("blank content is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"   "}`))
		err := DecodeJSON(req, &createTweet{})

		appErr, ok := apperror.FromError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode())
		assert.Equal(t, "All fields are required", appErr.Message)
		assert.Equal(t, []string{"content must not be blank"}, appErr.Details)
	})

	t.Run("empty body runs required checks", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		err := DecodeJSON(req, &updateAccount{})

		appErr, ok := apperror.FromError(err)
		require.True(t, ok)
		assert.ElementsMatch(t, []string{"fullName is required", "email is required"}, appErr.Details)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":`))
		err := DecodeJSON(req, &createTweet{})
		assert.Equal(t, apperror.KindBadRequest, err.(*apperror.AppError).Kind)
	})

	t.Run("bad email", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"fullName":"A","email":"nope"}`))
		err := DecodeJSON(req, &updateAccount{})

		appErr, ok := apperror.FromError(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid request", appErr.Message)
		assert.Equal(t, []string{"email must be a valid email"}, appErr.Details)
	})
}

func TestPathID(t *testing.T) {
	id := uuid.New()
	r := chi.NewRouter()
	var got uuid.UUID
	r.Get("/videos/{videoId}", Handle(func(w http.ResponseWriter, r *http.Request) error {
		var err error
		got, err = PathID(r, "videoId")
		if err != nil {
			return err
		}
		OK(w, nil, "ok")
		return nil
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, got)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos/not-an-id", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid videoId", decodeBody(t, rec)["message"])
}
