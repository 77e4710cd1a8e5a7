package dashboard

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/vidtube-go/auth"
	"github.com/user/vidtube-go/models"
	"github.com/user/vidtube-go/response"
)

// Service is what the handlers need from DashboardService.
type Service interface {
	Stats(ctx context.Context, channelID uuid.UUID) (*Stats, error)
	Videos(ctx context.Context, channelID uuid.UUID) ([]models.VideoCard, error)
}

// DashboardHandlers provides HTTP handlers for the channel dashboard.
type DashboardHandlers struct {
	service Service
}

// NewDashboardHandlers creates new DashboardHandlers.
func NewDashboardHandlers(service Service) *DashboardHandlers {
	return &DashboardHandlers{service: service}
}

// RegisterRoutes registers the dashboard routes. Every route expects an authenticated caller.
func (h *DashboardHandlers) RegisterRoutes(router chi.Router) {
	router.Get("/stats", h.HandleGetStats())
	router.Get("/videos", h.HandleGetVideos())
}

// HandleGetStats godoc
// @Summary Channel statistics of the caller
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=dashboard.Stats}
// @Router /dashboard/stats [get]
func (h *DashboardHandlers) HandleGetStats() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		stats, err := h.service.Stats(r.Context(), id.UserID)
		if err != nil {
			return err
		}
		response.OK(w, stats, "Channel statistics fetched successfully")
		return nil
	})
}

// HandleGetVideos godoc
// @Summary All videos of the caller's channel
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.VideoCard}
// @Failure 404 {object} apperror.ErrorResponse
// @Router /dashboard/videos [get]
func (h *DashboardHandlers) HandleGetVideos() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		videos, err := h.service.Videos(r.Context(), id.UserID)
		if err != nil {
			return err
		}
		response.OK(w, videos, "Channel videos fetched successfully")
		return nil
	})
}
