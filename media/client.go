package media

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/vidtube-go/apperror"
)

// Folders used as key prefixes.
const (
	FolderAvatars     = "avatars"
	FolderCoverImages = "cover-images"
	FolderVideos      = "videos"
	FolderThumbnails  = "thumbnails"
)

// Client uploads scratch files to a Store and hands back their public URLs.
// It is built once at start-up and shared by every handler.
type Client struct {
	store   Store
	baseURL string
}

// NewClient wraps store. baseURL is the public prefix under which stored keys are served.
func NewClient(store Store, baseURL string) *Client {
	return &Client{store: store, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload stores the file at localPath under folder and returns its public URL.
//
// An empty localPath returns ("", nil) so optional files can be passed straight through.
// The local file is removed whether or not the upload succeeds.
func (c *Client) Upload(ctx context.Context, localPath, folder string) (string, error) {
	if localPath == "" {
		return "", nil
	}
	defer removeScratch(ctx, localPath)

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(localPath); err == nil {
		contentType = mt.String()
	}

	key := folder + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(localPath))
	if err := c.store.Put(ctx, key, localPath, contentType); err != nil {
		return "", apperror.NewExternalServiceError("failed to upload file to media host", err)
	}

	zerolog.Ctx(ctx).Debug().Str("key", key).Str("content_type", contentType).Msg("uploaded media")
	return c.baseURL + "/" + key, nil
}

// Delete removes the object behind a URL previously returned by Upload. Failures are
// logged and swallowed: a dangling object must never fail the request that replaced it.
func (c *Client) Delete(ctx context.Context, rawURL string) {
	if rawURL == "" {
		return
	}
	key := c.ObjectKey(rawURL)
	if key == "" {
		zerolog.Ctx(ctx).Warn().Str("url", rawURL).Msg("cannot derive media key from url")
		return
	}
	if err := c.store.Remove(ctx, key); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to delete media")
	}
}

// ObjectKey derives the storage key from a public URL: the part after the configured
// base URL, or else the last two path segments ("folder/name.ext").
func (c *Client) ObjectKey(rawURL string) string {
	if c.baseURL != "" && strings.HasPrefix(rawURL, c.baseURL+"/") {
		return strings.TrimPrefix(rawURL, c.baseURL+"/")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return ""
	}
	file := path.Base(p)
	dir := path.Base(path.Dir(p))
	if dir == "." || dir == "/" {
		return file
	}
	return dir + "/" + file
}

func removeScratch(ctx context.Context, localPath string) {
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", localPath).Msg("failed to remove scratch file")
	}
}
