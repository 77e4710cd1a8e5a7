// Package models holds the read models shared by several resources: the owner summary
// embedded in listings and the compact video card used by history, likes, playlists and
// the dashboard.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Owner is the public summary of a user shown next to content they own.
type Owner struct {
	ID       uuid.UUID `json:"_id"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
	Avatar   string    `json:"avatar"`
}

// OwnerJSON builds an Owner as a JSON object from the users row aliased as alias.
// pgx decodes the column straight into an Owner field.
func OwnerJSON(alias string) string {
	return `json_build_object('_id', ` + alias + `.id, 'username', ` + alias + `.username, ` +
		`'fullName', ` + alias + `.full_name, 'avatar', ` + alias + `.avatar)`
}

// VideoCard is a video as it appears in lists.
type VideoCard struct {
	ID          uuid.UUID `json:"_id" db:"id"`
	VideoFile   string    `json:"videoFile" db:"video_file"`
	Thumbnail   string    `json:"thumbnail" db:"thumbnail"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Duration    float64   `json:"duration" db:"duration"`
	Views       int64     `json:"views" db:"views"`
	IsPublished bool      `json:"isPublished" db:"is_published"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	Owner       Owner     `json:"owner" db:"owner"`
}

// VideoCardColumns selects a VideoCard from `videos v JOIN users u`.
var VideoCardColumns = `v.id, v.video_file, v.thumbnail, v.title, v.description, v.duration, v.views, ` +
	`v.is_published, v.created_at, ` + OwnerJSON("u") + ` AS owner`
