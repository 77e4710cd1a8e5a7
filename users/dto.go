package users

import (
	"github.com/google/uuid"
)

// UpdateAccountRequest is the body of PATCH /users/update-account.
type UpdateAccountRequest struct {
	FullName string `json:"fullName" validate:"required,notblank" example:"Alice Liddell"`
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
}

// ChannelProfile is a user's public channel page.
type ChannelProfile struct {
	ID                        uuid.UUID `json:"_id"`
	FullName                  string    `json:"fullName"`
	Username                  string    `json:"username"`
	Email                     string    `json:"email"`
	Avatar                    string    `json:"avatar"`
	CoverImage                string    `json:"coverImage"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
}
