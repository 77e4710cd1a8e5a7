// Package comments serves the comment threads under each video.
package comments

import (
	"time"

	"github.com/google/uuid"

	"github.com/user/vidtube-go/models"
)

// Comment is a comment together with its author's summary.
type Comment struct {
	ID        uuid.UUID    `json:"_id" db:"id"`
	Content   string       `json:"content" db:"content"`
	VideoID   uuid.UUID    `json:"video" db:"video_id"`
	Owner     models.Owner `json:"owner" db:"owner"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

// commentColumns selects a Comment from `comments c JOIN users u`.
var commentColumns = `c.id, c.content, c.video_id, ` + models.OwnerJSON("u") + ` AS owner, c.created_at, c.updated_at`

// ContentRequest is the body of both POST and PATCH.
type ContentRequest struct {
	Content string `json:"content" validate:"required,notblank"`
}
