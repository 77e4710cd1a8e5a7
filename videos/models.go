// Package videos serves video listing, upload, playback metadata and owner-only edits.
package videos

import (
	"time"

	"github.com/google/uuid"

	"github.com/user/vidtube-go/models"
)

// Video is a row of the videos table.
type Video struct {
	ID          uuid.UUID `json:"_id" db:"id"`
	VideoFile   string    `json:"videoFile" db:"video_file"`
	Thumbnail   string    `json:"thumbnail" db:"thumbnail"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Duration    float64   `json:"duration" db:"duration"`
	Views       int64     `json:"views" db:"views"`
	IsPublished bool      `json:"isPublished" db:"is_published"`
	OwnerID     uuid.UUID `json:"owner" db:"owner_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

const videoColumns = "id, video_file, thumbnail, title, description, duration, views, is_published, owner_id, created_at, updated_at"

// VideoDetail is a single video as returned to a viewer.
type VideoDetail struct {
	models.VideoCard
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
	LikesCount int64     `json:"likesCount" db:"likes_count"`
	IsLiked    bool      `json:"isLiked" db:"is_liked"`
}

// NewVideo is what Create persists after both files have been uploaded.
type NewVideo struct {
	Title       string
	Description string
	Duration    float64
	VideoFile   string
	Thumbnail   string
	OwnerID     uuid.UUID
}

// VideoUpdate holds the optional changes of PATCH /videos/{videoId}. Empty strings
// leave the column untouched.
type VideoUpdate struct {
	Title       string
	Description string
	Thumbnail   string
}

// ListQuery filters and orders the public listing.
type ListQuery struct {
	Query    string
	SortBy   string
	SortType string
	OwnerID  *uuid.UUID
}

// PublishRequest carries the text fields of the multipart upload form.
type PublishRequest struct {
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description" validate:"required,notblank"`
}
