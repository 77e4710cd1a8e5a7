// Package media stores uploaded files (avatars, cover images, videos, thumbnails) on an
// S3-compatible object host and deletes them again.
//
// The Store interface is the thin wrapper over the host's SDK; Client adds the
// application contract on top: object keys, public URLs, scratch-file cleanup and
// best-effort deletes.
package media

import (
	"context"
	"fmt"

	"github.com/user/vidtube-go/config"
)

// Store puts and removes objects by key.
type Store interface {
	// Put uploads the local file at path under key and returns nothing but an error;
	// the public URL is derived by the Client from its base URL.
	Put(ctx context.Context, key, path, contentType string) error
	Remove(ctx context.Context, key string) error
}

// NewStore builds the backend selected by cfg.Driver.
func NewStore(ctx context.Context, cfg *config.MediaConfig) (Store, error) {
	switch cfg.Driver {
	case "s3", "":
		return NewS3Store(ctx, cfg)
	case "minio":
		return NewMinioStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.Driver)
	}
}
