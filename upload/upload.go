// Package upload is the multipart middleware that accepts named file fields, writes each
// file to a local scratch directory and exposes the saved paths to the handler.
//
// Scratch files still present when the handler returns are removed; media.Client.Upload
// removes the ones it consumes itself.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/response"
)

// memoryLimit is how much of a multipart body is buffered in memory before spilling
// to temporary files.
const memoryLimit = 32 << 20

// Field names an accepted file field and how many files it may carry.
type Field struct {
	Name     string
	MaxCount int
}

// File is one saved upload.
type File struct {
	Field        string `json:"field"`
	OriginalName string `json:"originalName"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
}

type contextKey struct{}

// Fields returns middleware that saves the listed file fields into dir.
// Requests that are not multipart pass through with no files.
func Fields(dir string, maxBytes int64, fields ...Field) func(http.Handler) http.Handler {
	allowed := make(map[string]int, len(fields))
	for _, f := range fields {
		allowed[f.Name] = f.MaxCount
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMultipart(r) {
				next.ServeHTTP(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			if err := r.ParseMultipartForm(memoryLimit); err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					response.Error(w, r, apperror.NewBadRequestError(fmt.Sprintf("upload exceeds %d bytes", maxBytes), err))
					return
				}
				response.Error(w, r, apperror.NewBadRequestError("invalid multipart form", err))
				return
			}
			defer func() {
				if err := r.MultipartForm.RemoveAll(); err != nil {
					zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to remove multipart temp files")
				}
			}()

			saved, err := save(dir, r.MultipartForm.File, allowed)
			defer cleanup(r.Context(), saved)
			if err != nil {
				response.Error(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, saved)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Files returns every file saved for the request, keyed by field name.
func Files(ctx context.Context) map[string][]File {
	files, _ := ctx.Value(contextKey{}).(map[string][]File)
	return files
}

// Path returns the scratch path of the first file in field, or "" when none was sent.
func Path(ctx context.Context, field string) string {
	files := Files(ctx)[field]
	if len(files) == 0 {
		return ""
	}
	return files[0].Path
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func save(dir string, form map[string][]*multipart.FileHeader, allowed map[string]int) (map[string][]File, error) {
	saved := make(map[string][]File)

	for field, headers := range form {
		maxCount, ok := allowed[field]
		if !ok {
			return saved, apperror.NewBadRequestError(fmt.Sprintf("unexpected file field %q", field), nil)
		}
		if len(headers) > maxCount {
			return saved, apperror.NewBadRequestError(fmt.Sprintf("too many files for field %q (max %d)", field, maxCount), nil)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return saved, apperror.NewInternalError("failed to prepare upload directory", err)
	}

	for field, headers := range form {
		for _, fh := range headers {
			path, err := saveOne(dir, fh)
			if err != nil {
				return saved, apperror.NewInternalError("failed to save upload", err)
			}
			saved[field] = append(saved[field], File{
				Field:        field,
				OriginalName: fh.Filename,
				Path:         path,
				Size:         fh.Size,
			})
		}
	}
	return saved, nil
}

func saveOne(dir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(filepath.Base(fh.Filename)))
	path := filepath.Join(dir, uuid.NewString()+ext)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func cleanup(ctx context.Context, saved map[string][]File) {
	for _, files := range saved {
		for _, f := range files {
			if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
				zerolog.Ctx(ctx).Warn().Err(err).Str("path", f.Path).Msg("failed to remove scratch file")
			}
		}
	}
}
