package comments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/pagination"
)

// CommentService provides comment persistence.
type CommentService struct {
	db *pgxpool.Pool
}

// NewCommentService creates a new CommentService.
func NewCommentService(db *pgxpool.Pool) *CommentService {
	return &CommentService{db: db}
}

// List returns a page of the comments on a video, newest first.
func (s *CommentService) List(ctx context.Context, videoID uuid.UUID, p pagination.Params) (*pagination.Page[Comment], error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE video_id = $1`, videoID).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count comments", err)
	}

	rows, _ := s.db.Query(ctx, `
		SELECT `+commentColumns+`
		FROM comments c
		JOIN users u ON u.id = c.owner_id
		WHERE c.video_id = $1
		ORDER BY c.created_at DESC, c.id
		LIMIT $2 OFFSET $3`,
		videoID, p.Limit, p.Offset(),
	)
	docs, err := pgx.CollectRows(rows, pgx.RowToStructByName[Comment])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list comments", err)
	}

	page := pagination.NewPage(docs, total, p)
	return &page, nil
}

// Create adds a comment to a video. A missing video is a 404.
func (s *CommentService) Create(ctx context.Context, videoID, ownerID uuid.UUID, content string) (*Comment, error) {
	rows, _ := s.db.Query(ctx, `
		WITH c AS (
			INSERT INTO comments (content, video_id, owner_id)
			VALUES ($1, $2, $3)
			RETURNING *
		)
		SELECT `+commentColumns+`
		FROM c
		JOIN users u ON u.id = c.owner_id`,
		content, videoID, ownerID,
	)
	comment, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Comment])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, apperror.NewNotFoundError("Video not found", err)
		}
		return nil, apperror.NewDatabaseError("failed to add comment", err)
	}
	return comment, nil
}

// Get returns a single comment.
func (s *CommentService) Get(ctx context.Context, commentID uuid.UUID) (*Comment, error) {
	rows, _ := s.db.Query(ctx, `
		SELECT `+commentColumns+`
		FROM comments c
		JOIN users u ON u.id = c.owner_id
		WHERE c.id = $1`,
		commentID,
	)
	comment, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Comment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Comment not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get comment", err)
	}
	return comment, nil
}

// Update replaces the content of a comment.
func (s *CommentService) Update(ctx context.Context, commentID uuid.UUID, content string) (*Comment, error) {
	rows, _ := s.db.Query(ctx, `
		WITH c AS (
			UPDATE comments SET content = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+commentColumns+`
		FROM c
		JOIN users u ON u.id = c.owner_id`,
		commentID, content,
	)
	comment, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Comment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Comment not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update comment", err)
	}
	return comment, nil
}

// Delete removes a comment and, through the foreign key, its likes.
func (s *CommentService) Delete(ctx context.Context, commentID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete comment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("Comment not found", nil)
	}
	return nil
}
