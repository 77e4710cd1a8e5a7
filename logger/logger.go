// Package logger builds the application's zerolog logger and the HTTP access-log
// middleware chain. Handlers and services never build their own logger: they pull the
// request-scoped one out of the context with `zerolog.Ctx(ctx)`.
package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Options controls how the root logger is built.
type Options struct {
	Level       string    // zerolog level name; unknown values fall back to info
	Development bool      // human-friendly console output instead of JSON
	Writer      io.Writer // defaults to os.Stdout
}

// New creates a timestamped zerolog.Logger.
func New(opts Options) zerolog.Logger {
	var w io.Writer = os.Stdout
	if opts.Writer != nil {
		w = opts.Writer
	}
	if opts.Development {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Middleware returns the request logging chain:
//   - puts `log` into every request context (so `zerolog.Ctx(r.Context())` works),
//   - tags each line with a request id, echoed back in the X-Request-Id header,
//   - writes one access line per request once the response is done.
func Middleware(log zerolog.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		hlog.NewHandler(log),
		hlog.RequestIDHandler("req_id", "X-Request-Id"),
		hlog.RemoteAddrHandler("ip"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			event := hlog.FromRequest(r).Info()
			if status >= http.StatusInternalServerError {
				event = hlog.FromRequest(r).Error()
			}
			event.
				Str("method", r.Method).
				Stringer("url", r.URL).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request")
		}),
	}
}
