// Package playlists manages user-curated, ordered lists of videos.
package playlists

import (
	"time"

	"github.com/google/uuid"

	"github.com/user/vidtube-go/models"
)

// Playlist is a playlist row plus the number of videos in it.
type Playlist struct {
	ID          uuid.UUID `json:"_id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	OwnerID     uuid.UUID `json:"owner" db:"owner_id"`
	TotalVideos int64     `json:"totalVideos" db:"total_videos"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// playlistColumns selects a Playlist from a relation aliased p.
const playlistColumns = `p.id, p.name, p.description, p.owner_id,
	(SELECT COUNT(*) FROM playlist_videos pv WHERE pv.playlist_id = p.id) AS total_videos,
	p.created_at, p.updated_at`

// PlaylistDetail is a playlist with its videos in insertion order.
type PlaylistDetail struct {
	Playlist
	Videos []models.VideoCard `json:"videos"`
}

// CreatePlaylistRequest is the body of POST /playlist.
type CreatePlaylistRequest struct {
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description" validate:"required,notblank"`
}

// UpdatePlaylistRequest is the body of PATCH /playlist/{playlistId}. Blank fields are
// left unchanged, but at least one must be set.
type UpdatePlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
