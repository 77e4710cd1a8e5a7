package likes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/vidtube-go/auth"
	"github.com/user/vidtube-go/response"
)

// Service is what the handlers need from LikeService.
type Service interface {
	Toggle(ctx context.Context, target Target, targetID, userID uuid.UUID) (bool, error)
	LikedVideos(ctx context.Context, userID uuid.UUID) (*LikedVideos, error)
}

// LikeHandlers provides HTTP handlers for likes.
type LikeHandlers struct {
	service Service
}

// NewLikeHandlers creates new LikeHandlers.
func NewLikeHandlers(service Service) *LikeHandlers {
	return &LikeHandlers{service: service}
}

// RegisterRoutes registers the like routes. Every route expects an authenticated caller.
func (h *LikeHandlers) RegisterRoutes(router chi.Router) {
	router.Post("/toggle/v/{videoId}", h.HandleToggleVideoLike())
	router.Post("/toggle/c/{commentId}", h.HandleToggleCommentLike())
	router.Post("/toggle/t/{tweetId}", h.HandleToggleTweetLike())
	router.Get("/videos", h.HandleGetLikedVideos())
}

// HandleToggleVideoLike godoc
// @Summary Like or unlike a video
// @Tags Likes
// @Produce json
// @Param videoId path string true "Video ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} apperror.ErrorResponse
// @Router /likes/toggle/v/{videoId} [post]
func (h *LikeHandlers) HandleToggleVideoLike() http.HandlerFunc {
	return h.toggle(VideoTarget, "videoId")
}

// HandleToggleCommentLike godoc
// @Summary Like or unlike a comment
// @Tags Likes
// @Produce json
// @Param commentId path string true "Comment ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} apperror.ErrorResponse
// @Router /likes/toggle/c/{commentId} [post]
func (h *LikeHandlers) HandleToggleCommentLike() http.HandlerFunc {
	return h.toggle(CommentTarget, "commentId")
}

// HandleToggleTweetLike godoc
// @Summary Like or unlike a tweet
// @Tags Likes
// @Produce json
// @Param tweetId path string true "Tweet ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} apperror.ErrorResponse
// @Router /likes/toggle/t/{tweetId} [post]
func (h *LikeHandlers) HandleToggleTweetLike() http.HandlerFunc {
	return h.toggle(TweetTarget, "tweetId")
}

func (h *LikeHandlers) toggle(target Target, param string) http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		targetID, err := response.PathID(r, param)
		if err != nil {
			return err
		}

		liked, err := h.service.Toggle(r.Context(), target, targetID, id.UserID)
		if err != nil {
			return err
		}

		message := target.Name + " unliked successfully"
		if liked {
			message = target.Name + " liked successfully"
		}
		response.OK(w, nil, message)
		return nil
	})
}

// HandleGetLikedVideos godoc
// @Summary Videos the caller liked
// @Tags Likes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=likes.LikedVideos}
// @Router /likes/videos [get]
func (h *LikeHandlers) HandleGetLikedVideos() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		liked, err := h.service.LikedVideos(r.Context(), id.UserID)
		if err != nil {
			return err
		}
		response.OK(w, liked, "Liked videos fetched successfully")
		return nil
	})
}
