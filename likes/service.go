// Package likes toggles likes on videos, comments and tweets and lists liked videos.
package likes

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/models"
)

// Target is the kind of thing a like points at.
type Target struct {
	// Name is used in messages, e.g. "Video".
	Name   string
	table  string
	column string
}

// The likeable targets.
var (
	VideoTarget   = Target{Name: "Video", table: "videos", column: "video_id"}
	CommentTarget = Target{Name: "Comment", table: "comments", column: "comment_id"}
	TweetTarget   = Target{Name: "Tweet", table: "tweets", column: "tweet_id"}
)

// LikedVideos is the body of GET /likes/videos.
type LikedVideos struct {
	LikedVideos []models.VideoCard `json:"likedVideos"`
	Count       int                `json:"count"`
}

// LikeService provides like persistence.
type LikeService struct {
	db *pgxpool.Pool
}

// NewLikeService creates a new LikeService.
func NewLikeService(db *pgxpool.Pool) *LikeService {
	return &LikeService{db: db}
}

// Toggle removes userID's like on the target if there is one and adds it otherwise.
// It reports whether the target is liked afterwards.
//
// The lookup and the write are separate statements. Two concurrent toggles by the same
// user can both observe "not liked"; the partial unique indexes turn the second insert
// into a no-op, so the pair ends liked once rather than twice.
func (s *LikeService) Toggle(ctx context.Context, target Target, targetID, userID uuid.UUID) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+target.table+` WHERE id = $1)`, targetID,
	).Scan(&exists); err != nil {
		return false, apperror.NewDatabaseError("failed to look up "+target.table, err)
	}
	if !exists {
		return false, apperror.NewNotFoundError(target.Name+" not found", nil)
	}

	var liked bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE `+target.column+` = $1 AND liked_by = $2)`,
		targetID, userID,
	).Scan(&liked); err != nil {
		return false, apperror.NewDatabaseError("failed to look up like", err)
	}

	if liked {
		if _, err := s.db.Exec(ctx,
			`DELETE FROM likes WHERE `+target.column+` = $1 AND liked_by = $2`, targetID, userID,
		); err != nil {
			return false, apperror.NewDatabaseError("failed to remove like", err)
		}
		return false, nil
	}

	tag, err := s.db.Exec(ctx,
		`INSERT INTO likes (`+target.column+`, liked_by) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		targetID, userID,
	)
	if err != nil {
		return false, apperror.NewDatabaseError("failed to add like", err)
	}
	if tag.RowsAffected() == 0 {
		zerolog.Ctx(ctx).Debug().Str("target", target.Name).Msg("concurrent like already recorded")
	}
	return true, nil
}

// LikedVideos returns the published videos userID has liked, most recently liked first.
func (s *LikeService) LikedVideos(ctx context.Context, userID uuid.UUID) (*LikedVideos, error) {
	rows, _ := s.db.Query(ctx, `
		SELECT `+models.VideoCardColumns+`
		FROM likes l
		JOIN videos v ON v.id = l.video_id
		JOIN users u ON u.id = v.owner_id
		WHERE l.liked_by = $1 AND v.is_published
		ORDER BY l.created_at DESC`,
		userID,
	)
	videos, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.VideoCard])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list liked videos", err)
	}
	if videos == nil {
		videos = []models.VideoCard{}
	}
	return &LikedVideos{LikedVideos: videos, Count: len(videos)}, nil
}
