package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessTokenSecret:    "access-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenSecret:   "refresh-secret",
		RefreshTokenDuration: 24 * time.Hour,
	}
}

func testUser() *User {
	return &User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", FullName: "Alice"}
}

func TestIssueAndValidate(t *testing.T) {
	m := NewTokenManager(testAuthConfig())
	user := testUser()

	pair, err := m.Issue(user)
	require.NoError(t, err)

	access, err := m.Validate(pair.AccessToken, tokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), access.UserID)
	assert.Equal(t, "alice", access.Username)
	assert.Equal(t, "alice@example.com", access.Email)

	refresh, err := m.Validate(pair.RefreshToken, tokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), refresh.UserID)
	assert.Empty(t, refresh.Username, "refresh tokens carry only the id")
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	m := NewTokenManager(testAuthConfig())
	pair, err := m.Issue(testUser())
	require.NoError(t, err)

	_, err = m.Validate(pair.RefreshToken, tokenTypeAccess)
	assert.Error(t, err, "refresh token must not pass as access token")

	_, err = m.Validate(pair.AccessToken, tokenTypeRefresh)
	assert.Error(t, err, "access token must not pass as refresh token")
}

func TestTokensMintedTogetherDiffer(t *testing.T) {
	m := NewTokenManager(testAuthConfig())
	frozen := time.Now()
	m.now = func() time.Time { return frozen }
	user := testUser()

	first, err := m.Issue(user)
	require.NoError(t, err)
	second, err := m.Issue(user)
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewTokenManager(testAuthConfig())
	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }

	pair, err := m.Issue(testUser())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(pair.AccessToken, tokenTypeAccess)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	other := testAuthConfig()
	other.AccessTokenSecret = "someone-else"
	pair, err := NewTokenManager(other).Issue(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager(testAuthConfig()).Validate(pair.AccessToken, tokenTypeAccess)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestRequireOwner(t *testing.T) {
	owner := uuid.New()

	assert.NoError(t, RequireOwner(owner, owner, "nope"))

	err := RequireOwner(owner, uuid.New(), "You can only delete your own tweets")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
	assert.Equal(t, "You can only delete your own tweets", err.Error())
}
