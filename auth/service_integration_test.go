//go:build integration

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/dbtest"
)

func newUser(username, email string) NewUser {
	return NewUser{
		RegisterRequest: RegisterRequest{
			FullName: "Test " + username,
			Email:    email,
			Username: username,
			Password: "correct horse",
		},
		AvatarURL: "https://cdn.example.com/avatars/" + username + ".png",
	}
}

func TestServiceAccountLifecycle(t *testing.T) {
	pool := dbtest.NewPool(t)
	svc := NewService(pool, testAuthConfig())
	ctx := context.Background()

	user, err := svc.Register(ctx, newUser("Alice", "Alice@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.CoverImage)

	t.Run("duplicate username or email conflicts", func(t *testing.T) {
		err := svc.CheckAvailable(ctx, "ALICE", "someone@example.com")
		assert.True(t, apperror.Is(err, apperror.KindConflict))

		err = svc.CheckAvailable(ctx, "bob", "alice@example.com")
		assert.True(t, apperror.Is(err, apperror.KindConflict))

		_, err = svc.Register(ctx, newUser("alice", "other@example.com"))
		assert.True(t, apperror.Is(err, apperror.KindConflict))

		assert.NoError(t, svc.CheckAvailable(ctx, "bob", "bob@example.com"))
	})

	t.Run("login", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "wrong"})
		assert.True(t, apperror.Is(err, apperror.KindAuth))

		_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "x"})
		assert.True(t, apperror.Is(err, apperror.KindNotFound))

		_, err = svc.Login(ctx, LoginRequest{Password: "correct horse"})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.StatusCode())

		resp, err := svc.Login(ctx, LoginRequest{Email: "ALICE@example.com", Password: "correct horse"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.User.ID)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)

		id, err := svc.ResolveAccessToken(ctx, resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, id.UserID)
	})

	t.Run("refresh rotates and rejects stale tokens", func(t *testing.T) {
		first, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "correct horse"})
		require.NoError(t, err)

		second, err := svc.Refresh(ctx, first.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

		_, err = svc.Refresh(ctx, first.RefreshToken)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.KindAuth))
		assert.Equal(t, "Refresh token is expired or has been used", err.(*apperror.AppError).Message)

		require.NoError(t, svc.Logout(ctx, user.ID))
		_, err = svc.Refresh(ctx, second.RefreshToken)
		assert.True(t, apperror.Is(err, apperror.KindAuth))
	})

	t.Run("change password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{OldPassword: "nope", NewPassword: "battery staple"})
		require.Error(t, err)
		assert.Equal(t, "Invalid old password", err.(*apperror.AppError).Message)

		require.NoError(t, svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{OldPassword: "correct horse", NewPassword: "battery staple"}))

		_, err = svc.Login(ctx, LoginRequest{Username: "alice", Password: "battery staple"})
		assert.NoError(t, err)
	})

	t.Run("deleted user's token is rejected", func(t *testing.T) {
		ghost, err := svc.Register(ctx, newUser("ghost", "ghost@example.com"))
		require.NoError(t, err)
		resp, err := svc.Login(ctx, LoginRequest{Username: "ghost", Password: "correct horse"})
		require.NoError(t, err)

		_, err = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, ghost.ID)
		require.NoError(t, err)

		_, err = svc.ResolveAccessToken(ctx, resp.AccessToken)
		assert.True(t, apperror.Is(err, apperror.KindAuth))
	})
}
