package auth

// RegisterRequest carries the text fields of the multipart registration form.
// The avatar (required) and coverImage (optional) arrive as files.
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,notblank" example:"Hitesh Choudhary"`
	Email    string `json:"email" validate:"required,notblank" example:"hitesh@example.com"`
	Username string `json:"username" validate:"required,notblank" example:"chaiaurcode"`
	Password string `json:"password" validate:"required,notblank" example:"s3cret-pass"`
}

// NewUser is what the service persists once the media files have been uploaded.
type NewUser struct {
	RegisterRequest
	AvatarURL     string
	CoverImageURL string
}

// LoginRequest accepts either a username or an email.
type LoginRequest struct {
	Username string `json:"username" example:"chaiaurcode"`
	Email    string `json:"email" example:"hitesh@example.com"`
	Password string `json:"password" example:"s3cret-pass"`
}

// TokenPair is an access token and its matching refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refreshToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	User *User `json:"user"`
	TokenPair
}

// RefreshTokenRequest is the optional JSON body of the refresh endpoint; the cookie wins
// when both are present.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest is the body of the change-password endpoint.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}
