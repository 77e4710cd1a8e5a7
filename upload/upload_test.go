package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	field, filename, content string
}

func multipartRequest(t *testing.T, values map[string]string, files ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func entries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	list, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return list
}

func TestFieldsSavesFilesAndCleansUp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "temp")
	var seen map[string][]File
	var title string
	var existedDuringHandler bool

	h := Fields(dir, 1<<20,
		Field{Name: "videoFile", MaxCount: 1},
		Field{Name: "thumbnail", MaxCount: 1},
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Files(r.Context())
		title = r.FormValue("title")
		_, err := os.Stat(Path(r.Context(), "videoFile"))
		existedDuringHandler = err == nil
		w.WriteHeader(http.StatusCreated)
	}))

	req := multipartRequest(t, map[string]string{"title": "My video"},
		part{"videoFile", "clip.MP4", "video bytes"},
		part{"thumbnail", "thumb.png", "png bytes"},
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "My video", title)
	require.Len(t, seen["videoFile"], 1)
	assert.Equal(t, "clip.MP4", seen["videoFile"][0].OriginalName)
	assert.True(t, strings.HasSuffix(seen["videoFile"][0].Path, ".mp4"))
	assert.Equal(t, int64(len("video bytes")), seen["videoFile"][0].Size)
	assert.True(t, existedDuringHandler)
	assert.Empty(t, entries(t, dir), "scratch files are removed after the handler")
}

func TestFieldsRejectsTooManyFiles(t *testing.T) {
	dir := t.TempDir()
	called := false
	h := Fields(dir, 1<<20, Field{Name: "avatar", MaxCount: 1})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := multipartRequest(t, nil,
		part{"avatar", "a.png", "1"},
		part{"avatar", "b.png", "2"},
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Empty(t, entries(t, dir))
}

func TestFieldsRejectsUnexpectedField(t *testing.T) {
	h := Fields(t.TempDir(), 1<<20, Field{Name: "avatar", MaxCount: 1})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, nil, part{"resume", "cv.pdf", "pdf"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFieldsRejectsOversizedBody(t *testing.T) {
	h := Fields(t.TempDir(), 64, Field{Name: "avatar", MaxCount: 1})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, nil, part{"avatar", "a.png", strings.Repeat("x", 4096)}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFieldsPassesThroughJSON(t *testing.T) {
	called := false
	h := Fields(t.TempDir(), 1<<20, Field{Name: "thumbnail", MaxCount: 1})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, Files(r.Context()))
		assert.Empty(t, Path(r.Context(), "thumbnail"))
	}))

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/1", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
}
