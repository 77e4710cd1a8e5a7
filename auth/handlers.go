package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/config"
	"github.com/user/vidtube-go/media"
	"github.com/user/vidtube-go/response"
	"github.com/user/vidtube-go/upload"
)

// AuthService is what the handlers need from Service.
type AuthService interface {
	CheckAvailable(ctx context.Context, username, email string) error
	Register(ctx context.Context, in NewUser) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error
}

// MediaStore uploads scratch files and deletes stored ones.
type MediaStore interface {
	Upload(ctx context.Context, localPath, folder string) (string, error)
	Delete(ctx context.Context, url string)
}

// Handler serves the account and session endpoints under /users.
type Handler struct {
	service AuthService
	media   MediaStore
	cfg     config.AuthConfig
}

// NewHandler creates a new Handler.
func NewHandler(service AuthService, media MediaStore, cfg config.AuthConfig) *Handler {
	return &Handler{service: service, media: media, cfg: cfg}
}

// HandleRegister godoc
// @Summary Register a user
// @Description Creates an account. The avatar file is required, the cover image optional.
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Param fullName formData string true "Full name"
// @Param email formData string true "Email"
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param avatar formData file true "Avatar image"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} response.Envelope{data=auth.User}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /users/register [post]
func (h *Handler) HandleRegister() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		req := RegisterRequest{
			FullName: r.FormValue("fullName"),
			Email:    r.FormValue("email"),
			Username: r.FormValue("username"),
			Password: r.FormValue("password"),
		}
		if err := response.Validate(&req); err != nil {
			return err
		}

		ctx := r.Context()
		if err := h.service.CheckAvailable(ctx, req.Username, req.Email); err != nil {
			return err
		}

		avatarPath := upload.Path(ctx, "avatar")
		if avatarPath == "" {
			return apperror.NewBadRequestError("Avatar file is required", nil)
		}

		avatarURL, err := h.media.Upload(ctx, avatarPath, media.FolderAvatars)
		if err != nil {
			return err
		}
		coverURL, err := h.media.Upload(ctx, upload.Path(ctx, "coverImage"), media.FolderCoverImages)
		if err != nil {
			h.media.Delete(ctx, avatarURL)
			return err
		}

		user, err := h.service.Register(ctx, NewUser{
			RegisterRequest: req,
			AvatarURL:       avatarURL,
			CoverImageURL:   coverURL,
		})
		if err != nil {
			h.media.Delete(ctx, avatarURL)
			h.media.Delete(ctx, coverURL)
			return err
		}

		response.Created(w, user, "User registered successfully")
		return nil
	})
}

// HandleLogin godoc
// @Summary Log in
// @Description Logs in with username or email. Sets accessToken and refreshToken cookies.
// @Tags Users
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope{data=auth.LoginResponse}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /users/login [post]
func (h *Handler) HandleLogin() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		var req LoginRequest
		if err := response.DecodeJSON(r, &req); err != nil {
			return err
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			return err
		}

		h.setAuthCookies(w, &resp.TokenPair)
		response.OK(w, resp, "User logged in successfully")
		return nil
	})
}

// HandleLogout godoc
// @Summary Log out
// @Description Forgets the stored refresh token and clears both auth cookies.
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /users/logout [post]
func (h *Handler) HandleLogout() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		if err := h.service.Logout(r.Context(), id.UserID); err != nil {
			return err
		}

		h.clearAuthCookies(w)
		response.OK(w, struct{}{}, "User logged out")
		return nil
	})
}

// HandleRefreshToken godoc
// @Summary Refresh tokens
// @Description Exchanges the refresh token (cookie or body) for a new token pair.
// @Tags Users
// @Accept json
// @Produce json
// @Param refreshBody body auth.RefreshTokenRequest false "Refresh token when not sent as a cookie"
// @Success 200 {object} response.Envelope{data=auth.TokenPair}
// @Failure 401 {object} apperror.ErrorResponse
// @Router /users/refresh-token [post]
func (h *Handler) HandleRefreshToken() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		token := ""
		if c, err := r.Cookie(RefreshTokenCookie); err == nil {
			token = c.Value
		}
		if token == "" {
			var req RefreshTokenRequest
			if err := response.DecodeJSON(r, &req); err != nil {
				return err
			}
			token = req.RefreshToken
		}

		pair, err := h.service.Refresh(r.Context(), token)
		if err != nil {
			return err
		}

		h.setAuthCookies(w, pair)
		response.OK(w, pair, "Access token refreshed")
		return nil
	})
}

// HandleChangePassword godoc
// @Summary Change password
// @Tags Users
// @Accept json
// @Produce json
// @Param body body auth.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /users/change-password [post]
func (h *Handler) HandleChangePassword() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := RequireIdentity(r.Context())
		if err != nil {
			return err
		}

		var req ChangePasswordRequest
		if err := response.DecodeJSON(r, &req); err != nil {
			return err
		}
		if err := h.service.ChangePassword(r.Context(), id.UserID, req); err != nil {
			return err
		}

		response.OK(w, struct{}{}, "Password changed successfully")
		return nil
	})
}
