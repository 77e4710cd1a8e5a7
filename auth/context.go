package auth

import (
	"context"

	"github.com/user/vidtube-go/apperror"
)

// contextKey is unexported so no other package can collide with or forge the identity.
type contextKey string

const identityContextKey contextKey = "auth_identity"

// NewContextWithIdentity returns a copy of ctx carrying id.
func NewContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext extracts the caller's Identity, if the request was authenticated.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

// RequireIdentity is IdentityFromContext for handlers behind Middleware: a missing
// identity is a wiring bug, reported as 401 rather than a panic.
func RequireIdentity(ctx context.Context) (Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return Identity{}, apperror.NewAuthError("Unauthorized request", nil)
	}
	return id, nil
}
