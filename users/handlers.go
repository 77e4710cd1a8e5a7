package users

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/auth"
	"github.com/user/vidtube-go/media"
	"github.com/user/vidtube-go/models"
	"github.com/user/vidtube-go/response"
	"github.com/user/vidtube-go/upload"
)

// Service is what the handlers need from UserService.
type Service interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*auth.User, error)
	UpdateAccount(ctx context.Context, userID uuid.UUID, req UpdateAccountRequest) (*auth.User, error)
	UpdateImage(ctx context.Context, userID uuid.UUID, column, url string) (*auth.User, string, error)
	ChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (*ChannelProfile, error)
	WatchHistory(ctx context.Context, userID uuid.UUID) ([]models.VideoCard, error)
}

// MediaStore uploads scratch files to the media host and deletes stored ones.
type MediaStore interface {
	Upload(ctx context.Context, localPath, folder string) (string, error)
	Delete(ctx context.Context, url string)
}

// UserHandlers provides HTTP handlers for the signed-in user's account and channels.
type UserHandlers struct {
	service Service
	media   MediaStore
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service Service, media MediaStore) *UserHandlers {
	return &UserHandlers{service: service, media: media}
}

// HandleGetCurrentUser godoc
// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=auth.User}
// @Failure 401 {object} apperror.ErrorResponse
// @Router /users/current-user [get]
func (h *UserHandlers) HandleGetCurrentUser() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		user, err := h.service.GetUser(r.Context(), id.UserID)
		if err != nil {
			return err
		}
		response.OK(w, user, "Current user fetched successfully")
		return nil
	})
}

// HandleUpdateAccount godoc
// @Summary Update account details
// @Tags Users
// @Accept json
// @Produce json
// @Param body body users.UpdateAccountRequest true "Full name and email"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=auth.User}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Router /users/update-account [patch]
func (h *UserHandlers) HandleUpdateAccount() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		var req UpdateAccountRequest
		if err := response.DecodeJSON(r, &req); err != nil {
			return err
		}
		user, err := h.service.UpdateAccount(r.Context(), id.UserID, req)
		if err != nil {
			return err
		}
		response.OK(w, user, "Account details updated successfully")
		return nil
	})
}

// HandleUpdateAvatar godoc
// @Summary Replace avatar
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=auth.User}
// @Failure 400 {object} apperror.ErrorResponse
// @Router /users/avatar [patch]
func (h *UserHandlers) HandleUpdateAvatar() http.HandlerFunc {
	return h.replaceImage("avatar", ImageAvatar, media.FolderAvatars, "Avatar image updated successfully")
}

// HandleUpdateCoverImage godoc
// @Summary Replace cover image
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Param coverImage formData file true "Cover image"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=auth.User}
// @Failure 400 {object} apperror.ErrorResponse
// @Router /users/cover-image [patch]
func (h *UserHandlers) HandleUpdateCoverImage() http.HandlerFunc {
	return h.replaceImage("coverImage", ImageCoverImage, media.FolderCoverImages, "Cover image updated successfully")
}

func (h *UserHandlers) replaceImage(field, column, folder, message string) http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()
		id, err := auth.RequireIdentity(ctx)
		if err != nil {
			return err
		}

		localPath := upload.Path(ctx, field)
		if localPath == "" {
			return apperror.NewBadRequestError(field+" file is missing", nil)
		}

		url, err := h.media.Upload(ctx, localPath, folder)
		if err != nil {
			return err
		}

		user, old, err := h.service.UpdateImage(ctx, id.UserID, column, url)
		if err != nil {
			h.media.Delete(ctx, url)
			return err
		}
		h.media.Delete(ctx, old)

		response.OK(w, user, message)
		return nil
	})
}

// HandleGetChannelProfile godoc
// @Summary Channel profile
// @Description Public channel page with subscriber counts and whether the caller is subscribed.
// @Tags Users
// @Produce json
// @Param username path string true "Channel username"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=users.ChannelProfile}
// @Failure 404 {object} apperror.ErrorResponse
// @Router /users/c/{username} [get]
func (h *UserHandlers) HandleGetChannelProfile() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		username := chi.URLParam(r, "username")
		if username == "" {
			return apperror.NewBadRequestError("Username is missing", nil)
		}
		profile, err := h.service.ChannelProfile(r.Context(), username, id.UserID)
		if err != nil {
			return err
		}
		response.OK(w, profile, "User channel fetched successfully")
		return nil
	})
}

// HandleGetWatchHistory godoc
// @Summary Watch history
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.VideoCard}
// @Router /users/history [get]
func (h *UserHandlers) HandleGetWatchHistory() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		history, err := h.service.WatchHistory(r.Context(), id.UserID)
		if err != nil {
			return err
		}
		response.OK(w, history, "Watch history fetched successfully")
		return nil
	})
}
