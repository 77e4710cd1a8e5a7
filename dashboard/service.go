// Package dashboard reports channel statistics and videos to the channel owner.
package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/models"
)

// Stats are the aggregate numbers of one channel.
type Stats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
}

// DashboardService computes channel statistics.
type DashboardService struct {
	db *pgxpool.Pool
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(db *pgxpool.Pool) *DashboardService {
	return &DashboardService{db: db}
}

// Stats runs the four counts concurrently. The first failure cancels the rest.
func (s *DashboardService) Stats(ctx context.Context, channelID uuid.UUID) (*Stats, error) {
	var stats Stats
	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int64, query string) {
		g.Go(func() error {
			return s.db.QueryRow(gctx, query, channelID).Scan(dst)
		})
	}
	count(&stats.TotalVideos, `SELECT COUNT(*) FROM videos WHERE owner_id = $1`)
	count(&stats.TotalLikes, `SELECT COUNT(*) FROM likes l JOIN videos v ON v.id = l.video_id WHERE v.owner_id = $1`)
	count(&stats.TotalViews, `SELECT COALESCE(SUM(views), 0)::bigint FROM videos WHERE owner_id = $1`)
	count(&stats.TotalSubscribers, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`)

	if err := g.Wait(); err != nil {
		return nil, apperror.NewDatabaseError("failed to compute channel stats", err)
	}
	return &stats, nil
}

// Videos returns every video of the channel, published or not, newest first.
func (s *DashboardService) Videos(ctx context.Context, channelID uuid.UUID) ([]models.VideoCard, error) {
	rows, _ := s.db.Query(ctx, `
		SELECT `+models.VideoCardColumns+`
		FROM videos v
		JOIN users u ON u.id = v.owner_id
		WHERE v.owner_id = $1
		ORDER BY v.created_at DESC`,
		channelID,
	)
	videos, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.VideoCard])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list channel videos", err)
	}
	if len(videos) == 0 {
		return nil, apperror.NewNotFoundError("No videos found for this channel", nil)
	}
	return videos, nil
}
