package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/response"
)

// TokenResolver turns an access token into the Identity of a live user.
type TokenResolver interface {
	ResolveAccessToken(ctx context.Context, token string) (Identity, error)
}

// Middleware rejects requests without a valid access token and attaches the caller's
// Identity to the context of the rest.
func Middleware(resolver TokenResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				response.Error(w, r, apperror.NewAuthError("Unauthorized request", nil))
				return
			}

			id, err := resolver.ResolveAccessToken(r.Context(), token)
			if err != nil {
				response.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}

// OptionalMiddleware attaches the Identity when a valid access token is present and lets
// every request through regardless.
func OptionalMiddleware(resolver TokenResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := resolver.ResolveAccessToken(r.Context(), token)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("ignoring invalid access token")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}

func withIdentity(ctx context.Context, id Identity) context.Context {
	ctx = NewContextWithIdentity(ctx, id)
	// Every later log line of the request carries the user id.
	zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("user_id", id.UserID.String())
	})
	return ctx
}

// tokenFromRequest reads the access token from the accessToken cookie, falling back to
// an "Authorization: Bearer <token>" header.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
