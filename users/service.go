// Package users serves the signed-in user's own account (profile, avatar, cover image),
// public channel pages and the watch history.
package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/auth"
	"github.com/user/vidtube-go/models"
)

const pgUniqueViolation = "23505"

// Image columns that can be replaced through UpdateImage.
const (
	ImageAvatar     = "avatar"
	ImageCoverImage = "cover_image"
)

// UserService provides methods for account and channel queries.
type UserService struct {
	db *pgxpool.Pool
}

// NewUserService creates a new UserService.
func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// GetUser returns the user without password or refresh token.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*auth.User, error) {
	rows, _ := s.db.Query(ctx, `SELECT `+auth.UserColumns+` FROM users WHERE id = $1`, userID)
	user, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[auth.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	return user, nil
}

// UpdateAccount changes full name and email. A taken email is a conflict.
func (s *UserService) UpdateAccount(ctx context.Context, userID uuid.UUID, req UpdateAccountRequest) (*auth.User, error) {
	rows, _ := s.db.Query(ctx,
		`UPDATE users SET full_name = $2, email = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+auth.UserColumns,
		userID, strings.TrimSpace(req.FullName), strings.ToLower(strings.TrimSpace(req.Email)),
	)
	user, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[auth.User])
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperror.NewNotFoundError("User not found", nil)
		case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
			return nil, apperror.NewConflictError("Email is already in use", err)
		}
		return nil, apperror.NewDatabaseError("failed to update account", err)
	}
	return user, nil
}

// UpdateImage stores a new avatar or cover image URL and returns the updated user along
// with the URL it replaced, so the caller can delete the old file.
func (s *UserService) UpdateImage(ctx context.Context, userID uuid.UUID, column, url string) (*auth.User, string, error) {
	if column != ImageAvatar && column != ImageCoverImage {
		return nil, "", apperror.NewInternalError("unknown image column "+column, nil)
	}

	var (
		user *auth.User
		old  string
	)
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`SELECT `+column+` FROM users WHERE id = $1 FOR UPDATE`, userID,
		).Scan(&old); err != nil {
			return err
		}

		rows, _ := tx.Query(ctx,
			`UPDATE users SET `+column+` = $2, updated_at = NOW() WHERE id = $1 RETURNING `+auth.UserColumns,
			userID, url,
		)
		var err error
		user, err = pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[auth.User])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperror.NewNotFoundError("User not found", nil)
		}
		return nil, "", apperror.NewDatabaseError("failed to update image", err)
	}
	return user, old, nil
}

// ChannelProfile returns the channel page of username as seen by viewerID.
func (s *UserService) ChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*ChannelProfile, error) {
	var p ChannelProfile
	err := s.db.QueryRow(ctx, `
		SELECT u.id, u.full_name, u.username, u.email, u.avatar, u.cover_image,
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id),
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
		       EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2)
		FROM users u
		WHERE u.username = $1`,
		strings.ToLower(strings.TrimSpace(username)), viewerID,
	).Scan(&p.ID, &p.FullName, &p.Username, &p.Email, &p.Avatar, &p.CoverImage,
		&p.SubscribersCount, &p.ChannelsSubscribedToCount, &p.IsSubscribed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Channel does not exist", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get channel profile", err)
	}
	return &p, nil
}

// WatchHistory returns the videos userID watched, most recent first.
func (s *UserService) WatchHistory(ctx context.Context, userID uuid.UUID) ([]models.VideoCard, error) {
	rows, _ := s.db.Query(ctx, `
		SELECT `+models.VideoCardColumns+`
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		JOIN users u ON u.id = v.owner_id
		WHERE h.user_id = $1
		ORDER BY h.watched_at DESC`, userID)
	videos, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.VideoCard])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to get watch history", err)
	}
	if videos == nil {
		videos = []models.VideoCard{}
	}
	return videos, nil
}
