// Package tweets serves short text posts on a user's channel.
package tweets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/models"
)

// Tweet is a tweet with its author's summary.
type Tweet struct {
	ID        uuid.UUID    `json:"_id" db:"id"`
	Content   string       `json:"content" db:"content"`
	Owner     models.Owner `json:"owner" db:"owner"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

var tweetColumns = `t.id, t.content, ` + models.OwnerJSON("u") + ` AS owner, t.created_at, t.updated_at`

// ContentRequest is the body of POST and PATCH.
type ContentRequest struct {
	Content string `json:"content" validate:"required,notblank"`
}

// TweetService provides tweet persistence.
type TweetService struct {
	db *pgxpool.Pool
}

// NewTweetService creates a new TweetService.
func NewTweetService(db *pgxpool.Pool) *TweetService {
	return &TweetService{db: db}
}

// Create posts a tweet for ownerID.
func (s *TweetService) Create(ctx context.Context, ownerID uuid.UUID, content string) (*Tweet, error) {
	rows, _ := s.db.Query(ctx, `
		WITH t AS (
			INSERT INTO tweets (content, owner_id) VALUES ($1, $2)
			RETURNING *
		)
		SELECT `+tweetColumns+` FROM t JOIN users u ON u.id = t.owner_id`,
		strings.TrimSpace(content), ownerID,
	)
	tweet, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Tweet])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create tweet", err)
	}
	return tweet, nil
}

// ListByOwner returns the tweets of ownerID, newest first.
func (s *TweetService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Tweet, error) {
	rows, _ := s.db.Query(ctx, `
		SELECT `+tweetColumns+`
		FROM tweets t
		JOIN users u ON u.id = t.owner_id
		WHERE t.owner_id = $1
		ORDER BY t.created_at DESC`,
		ownerID,
	)
	tweets, err := pgx.CollectRows(rows, pgx.RowToStructByName[Tweet])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tweets", err)
	}
	if tweets == nil {
		tweets = []Tweet{}
	}
	return tweets, nil
}

// Get returns a single tweet.
func (s *TweetService) Get(ctx context.Context, tweetID uuid.UUID) (*Tweet, error) {
	rows, _ := s.db.Query(ctx, `
		SELECT `+tweetColumns+`
		FROM tweets t
		JOIN users u ON u.id = t.owner_id
		WHERE t.id = $1`,
		tweetID,
	)
	tweet, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Tweet])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Tweet not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get tweet", err)
	}
	return tweet, nil
}

// Update replaces the content of a tweet.
func (s *TweetService) Update(ctx context.Context, tweetID uuid.UUID, content string) (*Tweet, error) {
	rows, _ := s.db.Query(ctx, `
		WITH t AS (
			UPDATE tweets SET content = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+tweetColumns+` FROM t JOIN users u ON u.id = t.owner_id`,
		tweetID, strings.TrimSpace(content),
	)
	tweet, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Tweet])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Tweet not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update tweet", err)
	}
	return tweet, nil
}

// Delete removes a tweet.
func (s *TweetService) Delete(ctx context.Context, tweetID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tweets WHERE id = $1`, tweetID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete tweet", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("Tweet not found", nil)
	}
	return nil
}
