// Package auth handles accounts and sessions: registration, login, token refresh,
// logout, password changes and the JWT middleware that identifies the caller.
package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account as returned by the API.
// The password hash and refresh token are loaded only by the queries that need them
// and are never serialized.
type User struct {
	ID         uuid.UUID `json:"_id" db:"id"`
	Username   string    `json:"username" db:"username" example:"chaiaurcode"`
	Email      string    `json:"email" db:"email" example:"hitesh@example.com"`
	FullName   string    `json:"fullName" db:"full_name" example:"Hitesh Choudhary"`
	Avatar     string    `json:"avatar" db:"avatar"`
	CoverImage string    `json:"coverImage" db:"cover_image"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// UserColumns lists the columns scanned into a User, in struct order.
const UserColumns = "id, username, email, full_name, avatar, cover_image, created_at, updated_at"

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID   uuid.UUID
	Username string
}
