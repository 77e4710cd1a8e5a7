package comments

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/vidtube-go/auth"
	"github.com/user/vidtube-go/pagination"
	"github.com/user/vidtube-go/response"
)

// Service is what the handlers need from CommentService.
type Service interface {
	List(ctx context.Context, videoID uuid.UUID, p pagination.Params) (*pagination.Page[Comment], error)
	Create(ctx context.Context, videoID, ownerID uuid.UUID, content string) (*Comment, error)
	Get(ctx context.Context, commentID uuid.UUID) (*Comment, error)
	Update(ctx context.Context, commentID uuid.UUID, content string) (*Comment, error)
	Delete(ctx context.Context, commentID uuid.UUID) error
}

// CommentHandler handles HTTP requests for comments.
type CommentHandler struct {
	service Service
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service Service) *CommentHandler {
	return &CommentHandler{service: service}
}

// RegisterRoutes registers the comment routes. Every route expects an authenticated caller.
func (h *CommentHandler) RegisterRoutes(router chi.Router) {
	router.Get("/{videoId}", h.HandleListComments())
	router.Post("/{videoId}", h.HandleAddComment())
	router.Patch("/c/{commentId}", h.HandleUpdateComment())
	router.Delete("/c/{commentId}", h.HandleDeleteComment())
}

// HandleListComments godoc
// @Summary List comments of a video
// @Tags Comments
// @Produce json
// @Param videoId path string true "Video ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=pagination.Page[comments.Comment]}
// @Failure 400 {object} apperror.ErrorResponse
// @Router /comments/{videoId} [get]
func (h *CommentHandler) HandleListComments() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		videoID, err := response.PathID(r, "videoId")
		if err != nil {
			return err
		}
		page, err := h.service.List(r.Context(), videoID, pagination.FromRequest(r))
		if err != nil {
			return err
		}
		response.OK(w, page, "Video comments fetched successfully")
		return nil
	})
}

// HandleAddComment godoc
// @Summary Comment on a video
// @Tags Comments
// @Accept json
// @Produce json
// @Param videoId path string true "Video ID"
// @Param body body comments.ContentRequest true "Comment"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=comments.Comment}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /comments/{videoId} [post]
func (h *CommentHandler) HandleAddComment() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		videoID, err := response.PathID(r, "videoId")
		if err != nil {
			return err
		}
		var req ContentRequest
		if err := response.DecodeJSON(r, &req); err != nil {
			return err
		}

		comment, err := h.service.Create(r.Context(), videoID, id.UserID, strings.TrimSpace(req.Content))
		if err != nil {
			return err
		}
		response.Created(w, comment, "Comment added successfully")
		return nil
	})
}

// HandleUpdateComment godoc
// @Summary Edit a comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param commentId path string true "Comment ID"
// @Param body body comments.ContentRequest true "New content"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=comments.Comment}
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /comments/c/{commentId} [patch]
func (h *CommentHandler) HandleUpdateComment() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		var req ContentRequest
		if err := response.DecodeJSON(r, &req); err != nil {
			return err
		}
		comment, err := h.ownedComment(r, "You are not authorized to update this comment")
		if err != nil {
			return err
		}

		updated, err := h.service.Update(r.Context(), comment.ID, strings.TrimSpace(req.Content))
		if err != nil {
			return err
		}
		response.OK(w, updated, "Comment updated successfully")
		return nil
	})
}

// HandleDeleteComment godoc
// @Summary Delete a comment
// @Tags Comments
// @Produce json
// @Param commentId path string true "Comment ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /comments/c/{commentId} [delete]
func (h *CommentHandler) HandleDeleteComment() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		comment, err := h.ownedComment(r, "You are not authorized to delete this comment")
		if err != nil {
			return err
		}
		if err := h.service.Delete(r.Context(), comment.ID); err != nil {
			return err
		}
		response.OK(w, nil, "Comment deleted successfully")
		return nil
	})
}

func (h *CommentHandler) ownedComment(r *http.Request, forbidden string) (*Comment, error) {
	id, err := auth.RequireIdentity(r.Context())
	if err != nil {
		return nil, err
	}
	commentID, err := response.PathID(r, "commentId")
	if err != nil {
		return nil, err
	}
	comment, err := h.service.Get(r.Context(), commentID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(comment.Owner.ID, id.UserID, forbidden); err != nil {
		return nil, err
	}
	return comment, nil
}
