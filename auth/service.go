package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/config"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenIssuer      = "vidtube"
	// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
	pgUniqueViolation = "23505"
)

// Service implements account and session operations over PostgreSQL.
type Service struct {
	dbPool     *pgxpool.Pool
	authConfig config.AuthConfig
	tokens     *TokenManager
}

// NewService creates a new Service.
func NewService(dbPool *pgxpool.Pool, authConfig config.AuthConfig) *Service {
	return &Service{
		dbPool:     dbPool,
		authConfig: authConfig,
		tokens:     NewTokenManager(authConfig),
	}
}

// CheckAvailable fails with a conflict when the username or email is already taken.
// It runs before any file is uploaded so a doomed registration costs nothing.
func (s *Service) CheckAvailable(ctx context.Context, username, email string) error {
	var taken bool
	err := s.dbPool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
		normalize(username), normalize(email),
	).Scan(&taken)
	if err != nil {
		return apperror.NewDatabaseError("failed to check existing users", err)
	}
	if taken {
		return apperror.NewConflictError("User with email or username already exists", nil)
	}
	return nil
}

// Register creates a new user. Username and email are stored lower-cased.
func (s *Service) Register(ctx context.Context, in NewUser) (*User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rows, _ := s.dbPool.Query(ctx,
		`INSERT INTO users (username, email, full_name, avatar, cover_image, password)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+UserColumns,
		normalize(in.Username), normalize(in.Email), strings.TrimSpace(in.FullName),
		in.AvatarURL, in.CoverImageURL, string(hashedPassword),
	)
	user, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[User])
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.NewConflictError("User with email or username already exists", err)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

// Login verifies credentials, rotates the stored refresh token and returns a fresh pair.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if strings.TrimSpace(req.Username) == "" && strings.TrimSpace(req.Email) == "" {
		return nil, apperror.NewBadRequestError("Username or email is required", nil)
	}

	var (
		user         User
		passwordHash string
	)
	err := s.dbPool.QueryRow(ctx,
		`SELECT `+UserColumns+`, password FROM users
		 WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		 LIMIT 1`,
		normalize(req.Username), normalize(req.Email),
	).Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Avatar,
		&user.CoverImage, &user.CreatedAt, &user.UpdatedAt, &passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User does not exist", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("Invalid user credentials", nil)
	}

	pair, err := s.issueTokens(ctx, &user)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{User: &user, TokenPair: *pair}, nil
}

// Refresh exchanges a refresh token for a new pair. Only the most recently issued
// refresh token of a user is accepted; using it rotates it.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperror.NewAuthError("Unauthorized request", nil)
	}

	claims, err := s.tokens.Validate(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewAuthError("Invalid refresh token", err)
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperror.NewAuthError("Invalid refresh token", err)
	}

	var (
		user   User
		stored *string
	)
	err = s.dbPool.QueryRow(ctx,
		`SELECT `+UserColumns+`, refresh_token FROM users WHERE id = $1`, userID,
	).Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Avatar,
		&user.CoverImage, &user.CreatedAt, &user.UpdatedAt, &stored)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("Invalid refresh token", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if stored == nil || *stored != refreshToken {
		return nil, apperror.NewAuthError("Refresh token is expired or has been used", nil)
	}

	return s.issueTokens(ctx, &user)
}

// Logout forgets the user's refresh token so it can no longer be exchanged.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	_, err := s.dbPool.Exec(ctx,
		`UPDATE users SET refresh_token = NULL, updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return apperror.NewDatabaseError("failed to log out", err)
	}
	return nil
}

// ChangePassword replaces the password after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	var passwordHash string
	err := s.dbPool.QueryRow(ctx, `SELECT password FROM users WHERE id = $1`, userID).Scan(&passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFoundError("User does not exist", nil)
		}
		return apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.OldPassword)); err != nil {
		return apperror.NewBadRequestError("Invalid old password", nil)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.dbPool.Exec(ctx,
		`UPDATE users SET password = $2, updated_at = NOW() WHERE id = $1`, userID, string(newHash))
	if err != nil {
		return apperror.NewDatabaseError("failed to update password", err)
	}
	return nil
}

// ResolveAccessToken validates an access token and confirms its user still exists.
func (s *Service) ResolveAccessToken(ctx context.Context, token string) (Identity, error) {
	claims, err := s.tokens.Validate(token, tokenTypeAccess)
	if err != nil {
		return Identity{}, apperror.NewAuthError("Invalid access token", err)
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, apperror.NewAuthError("Invalid access token", err)
	}

	var username string
	err = s.dbPool.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, userID).Scan(&username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, apperror.NewAuthError("Invalid access token", nil)
		}
		return Identity{}, apperror.NewDatabaseError("failed to get user", err)
	}
	return Identity{UserID: userID, Username: username}, nil
}

// issueTokens mints a new pair and stores the refresh half on the user.
func (s *Service) issueTokens(ctx context.Context, user *User) (*TokenPair, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.NewInternalError("Something went wrong while generating refresh and access tokens", err)
	}

	_, err = s.dbPool.Exec(ctx,
		`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`, user.ID, pair.RefreshToken)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to store refresh token", err)
	}
	return pair, nil
}

// CustomClaims is the JWT payload. Access tokens carry the profile fields; refresh
// tokens carry only the user id.
type CustomClaims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// TokenManager signs and verifies access and refresh tokens with their own secrets.
type TokenManager struct {
	cfg config.AuthConfig
	now func() time.Time
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	return &TokenManager{cfg: cfg, now: time.Now}
}

// Issue mints an access token and a refresh token for user.
func (m *TokenManager) Issue(user *User) (*TokenPair, error) {
	access, err := m.sign(&CustomClaims{
		UserID:    user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		TokenType: tokenTypeAccess,
	}, m.cfg.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := m.sign(&CustomClaims{
		UserID:    user.ID.String(),
		TokenType: tokenTypeRefresh,
	}, m.cfg.RefreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *TokenManager) sign(claims *CustomClaims, duration time.Duration) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    tokenIssuer,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret(claims.TokenType))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token, checking signature, expiry and that it is of the expected type.
func (m *TokenManager) Validate(tokenString, expectedTokenType string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret(expectedTokenType), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != expectedTokenType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedTokenType, claims.TokenType)
	}
	return claims, nil
}

func (m *TokenManager) secret(tokenType string) []byte {
	if tokenType == tokenTypeRefresh {
		return []byte(m.cfg.RefreshTokenSecret)
	}
	return []byte(m.cfg.AccessTokenSecret)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
