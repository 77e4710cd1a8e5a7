package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidtube-go/apperror"
)

type fakeStore struct {
	puts    map[string]string // key -> content type
	removed []string
	putErr  error
	rmErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{puts: map[string]string{}}
}

func (f *fakeStore) Put(_ context.Context, key, path, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	f.puts[key] = contentType
	return nil
}

func (f *fakeStore) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return f.rmErr
}

func scratchFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestUploadStoresAndRemovesScratch(t *testing.T) {
	store := newFakeStore()
	c := NewClient(store, "https://cdn.example.com/media/")
	local := scratchFile(t, "clip.MP4", "not really a video")

	url, err := c.Upload(context.Background(), local, FolderVideos)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/media/videos/"))
	assert.True(t, strings.HasSuffix(url, ".mp4"))
	require.Len(t, store.puts, 1)
	for key := range store.puts {
		assert.Equal(t, strings.TrimPrefix(url, "https://cdn.example.com/media/"), key)
	}

	_, statErr := os.Stat(local)
	assert.True(t, os.IsNotExist(statErr), "scratch file must be removed after upload")
}

func TestUploadEmptyPath(t *testing.T) {
	store := newFakeStore()
	url, err := NewClient(store, "https://cdn.example.com").Upload(context.Background(), "", FolderCoverImages)

	require.NoError(t, err)
	assert.Empty(t, url)
	assert.Empty(t, store.puts)
}

func TestUploadFailureStillRemovesScratch(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("503 slow down")
	local := scratchFile(t, "avatar.png", "png")

	_, err := NewClient(store, "https://cdn.example.com").Upload(context.Background(), local, FolderAvatars)

	require.Error(t, err)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindExternalService, appErr.Kind)

	_, statErr := os.Stat(local)
	assert.True(t, os.IsNotExist(statErr))
}

func TestObjectKey(t *testing.T) {
	c := NewClient(newFakeStore(), "https://cdn.example.com/media")

	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/media/videos/abc.mp4", "videos/abc.mp4"},
		{"https://other-host.example.org/bucket/thumbnails/x.png", "thumbnails/x.png"},
		{"https://other-host.example.org/x.png", "x.png"},
		{"https://other-host.example.org/", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.ObjectKey(tt.url), tt.url)
	}
}

func TestDeleteSwallowsErrors(t *testing.T) {
	store := newFakeStore()
	store.rmErr = errors.New("access denied")
	c := NewClient(store, "https://cdn.example.com/media")

	assert.NotPanics(t, func() {
		c.Delete(context.Background(), "https://cdn.example.com/media/avatars/a.png")
	})
	assert.Equal(t, []string{"avatars/a.png"}, store.removed)

	c.Delete(context.Background(), "")
	assert.Len(t, store.removed, 1, "empty url is a no-op")
}
