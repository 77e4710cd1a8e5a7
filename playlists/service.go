package playlists

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/models"
)

// PlaylistService provides playlist persistence.
type PlaylistService struct {
	db *pgxpool.Pool
}

// NewPlaylistService creates a new PlaylistService.
func NewPlaylistService(db *pgxpool.Pool) *PlaylistService {
	return &PlaylistService{db: db}
}

// Create inserts an empty playlist owned by ownerID.
func (s *PlaylistService) Create(ctx context.Context, ownerID uuid.UUID, req CreatePlaylistRequest) (*Playlist, error) {
	rows, _ := s.db.Query(ctx, `
		WITH p AS (
			INSERT INTO playlists (name, description, owner_id)
			VALUES ($1, $2, $3)
			RETURNING *
		)
		SELECT `+playlistColumns+` FROM p`,
		strings.TrimSpace(req.Name), strings.TrimSpace(req.Description), ownerID,
	)
	playlist, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Playlist])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create playlist", err)
	}
	return playlist, nil
}

// ListByOwner returns every playlist of ownerID, newest first.
func (s *PlaylistService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Playlist, error) {
	rows, _ := s.db.Query(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists p
		WHERE p.owner_id = $1
		ORDER BY p.created_at DESC`,
		ownerID,
	)
	playlists, err := pgx.CollectRows(rows, pgx.RowToStructByName[Playlist])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list playlists", err)
	}
	if playlists == nil {
		playlists = []Playlist{}
	}
	return playlists, nil
}

// Get returns the playlist row without its videos.
func (s *PlaylistService) Get(ctx context.Context, playlistID uuid.UUID) (*Playlist, error) {
	rows, _ := s.db.Query(ctx, `SELECT `+playlistColumns+` FROM playlists p WHERE p.id = $1`, playlistID)
	playlist, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Playlist])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Playlist not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get playlist", err)
	}
	return playlist, nil
}

// Detail returns the playlist with its videos in the order they were added. Unpublished
// videos are only listed for their owner.
func (s *PlaylistService) Detail(ctx context.Context, playlistID uuid.UUID, viewerID uuid.UUID) (*PlaylistDetail, error) {
	playlist, err := s.Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	rows, _ := s.db.Query(ctx, `
		SELECT `+models.VideoCardColumns+`
		FROM playlist_videos pv
		JOIN videos v ON v.id = pv.video_id
		JOIN users u ON u.id = v.owner_id
		WHERE pv.playlist_id = $1 AND (v.is_published OR v.owner_id = $2)
		ORDER BY pv.position`,
		playlistID, viewerID,
	)
	videos, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.VideoCard])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list playlist videos", err)
	}
	if videos == nil {
		videos = []models.VideoCard{}
	}
	return &PlaylistDetail{Playlist: *playlist, Videos: videos}, nil
}

// Update sets the non-blank fields of req.
func (s *PlaylistService) Update(ctx context.Context, playlistID uuid.UUID, req UpdatePlaylistRequest) (*Playlist, error) {
	rows, _ := s.db.Query(ctx, `
		WITH p AS (
			UPDATE playlists SET
			    name        = COALESCE(NULLIF($2, ''), name),
			    description = COALESCE(NULLIF($3, ''), description),
			    updated_at  = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+playlistColumns+` FROM p`,
		playlistID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description),
	)
	playlist, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Playlist])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Playlist not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update playlist", err)
	}
	return playlist, nil
}

// Delete removes the playlist and its entries.
func (s *PlaylistService) Delete(ctx context.Context, playlistID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, playlistID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete playlist", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("Playlist not found", nil)
	}
	return nil
}

// AddVideo appends videoID to the playlist. Adding a video that is already present
// leaves the playlist unchanged.
func (s *PlaylistService) AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`, videoID).Scan(&exists); err != nil {
			return apperror.NewDatabaseError("failed to look up video", err)
		}
		if !exists {
			return apperror.NewNotFoundError("Video not found", nil)
		}

		tag, err := tx.Exec(ctx,
			`INSERT INTO playlist_videos (playlist_id, video_id) VALUES ($1, $2)
			 ON CONFLICT (playlist_id, video_id) DO NOTHING`,
			playlistID, videoID,
		)
		if err != nil {
			return apperror.NewDatabaseError("failed to add video to playlist", err)
		}
		if tag.RowsAffected() > 0 {
			return touch(ctx, tx, playlistID)
		}
		return nil
	})
}

// RemoveVideo drops videoID from the playlist. Removing an absent video is not an error.
func (s *PlaylistService) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`,
			playlistID, videoID,
		)
		if err != nil {
			return apperror.NewDatabaseError("failed to remove video from playlist", err)
		}
		if tag.RowsAffected() > 0 {
			return touch(ctx, tx, playlistID)
		}
		return nil
	})
}

func touch(ctx context.Context, tx pgx.Tx, playlistID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `UPDATE playlists SET updated_at = NOW() WHERE id = $1`, playlistID); err != nil {
		return apperror.NewDatabaseError("failed to update playlist", err)
	}
	return nil
}
