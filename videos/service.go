package videos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/models"
	"github.com/user/vidtube-go/pagination"
)

// sortColumns maps the public sortBy values onto columns. Anything else is rejected.
var sortColumns = map[string]string{
	"createdAt": "v.created_at",
	"views":     "v.views",
	"duration":  "v.duration",
	"title":     "v.title",
}

// VideoService provides video persistence.
type VideoService struct {
	db *pgxpool.Pool
}

// NewVideoService creates a new VideoService.
func NewVideoService(db *pgxpool.Pool) *VideoService {
	return &VideoService{db: db}
}

// List returns one page of published videos matching q.
func (s *VideoService) List(ctx context.Context, q ListQuery, p pagination.Params) (*pagination.Page[models.VideoCard], error) {
	orderBy, err := orderClause(q.SortBy, q.SortType)
	if err != nil {
		return nil, err
	}

	where := []string{"v.is_published"}
	var args []any
	if q.OwnerID != nil {
		args = append(args, *q.OwnerID)
		where = append(where, fmt.Sprintf("v.owner_id = $%d", len(args)))
	}
	if term := strings.TrimSpace(q.Query); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		where = append(where, fmt.Sprintf("(v.title ILIKE $%[1]d OR v.description ILIKE $%[1]d)", len(args)))
	}
	whereSQL := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM videos v WHERE `+whereSQL, args...).Scan(&total); err != nil {
		return nil, apperror.NewDatabaseError("failed to count videos", err)
	}

	args = append(args, p.Limit, p.Offset())
	rows, _ := s.db.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM videos v
		JOIN users u ON u.id = v.owner_id
		WHERE %s
		ORDER BY %s, v.id
		LIMIT $%d OFFSET $%d`,
		models.VideoCardColumns, whereSQL, orderBy, len(args)-1, len(args)), args...)
	docs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.VideoCard])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list videos", err)
	}

	page := pagination.NewPage(docs, total, p)
	return &page, nil
}

// Create inserts a new, published video.
func (s *VideoService) Create(ctx context.Context, v NewVideo) (*Video, error) {
	rows, _ := s.db.Query(ctx,
		`INSERT INTO videos (video_file, thumbnail, title, description, duration, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+videoColumns,
		v.VideoFile, v.Thumbnail, strings.TrimSpace(v.Title), strings.TrimSpace(v.Description), v.Duration, v.OwnerID,
	)
	video, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Video])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create video", err)
	}
	zerolog.Ctx(ctx).Info().Str("video_id", video.ID.String()).Msg("video published")
	return video, nil
}

// Get returns a video regardless of its publish state. Handlers use it for ownership
// checks before mutating.
func (s *VideoService) Get(ctx context.Context, videoID uuid.UUID) (*Video, error) {
	rows, _ := s.db.Query(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, videoID)
	video, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Video])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Video not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get video", err)
	}
	return video, nil
}

// View counts one view and returns the video as seen by viewer. Unpublished videos are
// visible only to their owner. A signed-in viewer gets the video recorded at the front
// of their watch history.
func (s *VideoService) View(ctx context.Context, videoID uuid.UUID, viewer *uuid.UUID) (*VideoDetail, error) {
	var detail *VideoDetail
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE videos SET views = views + 1
			 WHERE id = $1 AND (is_published OR owner_id = $2)`,
			videoID, viewer,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		if viewer != nil {
			if _, err := tx.Exec(ctx,
				`INSERT INTO watch_history (user_id, video_id) VALUES ($1, $2)
				 ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = NOW()`,
				*viewer, videoID,
			); err != nil {
				return err
			}
		}

		rows, _ := tx.Query(ctx, `
			SELECT `+models.VideoCardColumns+`, v.updated_at,
			       (SELECT COUNT(*) FROM likes l WHERE l.video_id = v.id) AS likes_count,
			       EXISTS (SELECT 1 FROM likes l WHERE l.video_id = v.id AND l.liked_by = $2) AS is_liked
			FROM videos v
			JOIN users u ON u.id = v.owner_id
			WHERE v.id = $1`,
			videoID, viewer,
		)
		detail, err = pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[VideoDetail])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Video not found or not published", nil)
		}
		return nil, apperror.NewDatabaseError("failed to fetch video", err)
	}
	return detail, nil
}

// Update applies the non-empty fields of u.
func (s *VideoService) Update(ctx context.Context, videoID uuid.UUID, u VideoUpdate) (*Video, error) {
	rows, _ := s.db.Query(ctx,
		`UPDATE videos SET
		     title       = COALESCE(NULLIF($2, ''), title),
		     description = COALESCE(NULLIF($3, ''), description),
		     thumbnail   = COALESCE(NULLIF($4, ''), thumbnail),
		     updated_at  = NOW()
		 WHERE id = $1
		 RETURNING `+videoColumns,
		videoID, strings.TrimSpace(u.Title), strings.TrimSpace(u.Description), u.Thumbnail,
	)
	video, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Video])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Video not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update video", err)
	}
	return video, nil
}

// Delete removes the video row; comments, likes, history and playlist entries cascade.
func (s *VideoService) Delete(ctx context.Context, videoID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM videos WHERE id = $1`, videoID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete video", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("Video not found", nil)
	}
	return nil
}

// TogglePublish flips the publish flag and returns the updated video.
func (s *VideoService) TogglePublish(ctx context.Context, videoID uuid.UUID) (*Video, error) {
	rows, _ := s.db.Query(ctx,
		`UPDATE videos SET is_published = NOT is_published, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+videoColumns,
		videoID,
	)
	video, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Video])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Video not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to toggle publish status", err)
	}
	return video, nil
}

func orderClause(sortBy, sortType string) (string, error) {
	if sortBy == "" {
		sortBy = "createdAt"
	}
	column, ok := sortColumns[sortBy]
	if !ok {
		return "", apperror.NewBadRequestError("Invalid sortBy: expected one of createdAt, views, duration, title", nil)
	}

	switch strings.ToLower(sortType) {
	case "", "desc":
		return column + " DESC", nil
	case "asc":
		return column + " ASC", nil
	default:
		return "", apperror.NewBadRequestError("Invalid sortType: expected asc or desc", nil)
	}
}

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
