package subscriptions

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/vidtube-go/auth"
	"github.com/user/vidtube-go/response"
)

// Service is what the handlers need from SubscriptionService.
type Service interface {
	Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
	Subscribers(ctx context.Context, channelID uuid.UUID) (*Subscribers, error)
	Channels(ctx context.Context, subscriberID uuid.UUID) (*Channels, error)
}

// SubscriptionHandlers provides HTTP handlers for subscriptions.
type SubscriptionHandlers struct {
	service Service
}

// NewSubscriptionHandlers creates new SubscriptionHandlers.
func NewSubscriptionHandlers(service Service) *SubscriptionHandlers {
	return &SubscriptionHandlers{service: service}
}

// RegisterRoutes registers the subscription routes. Every route expects an authenticated caller.
func (h *SubscriptionHandlers) RegisterRoutes(router chi.Router) {
	router.Post("/c/{channelId}", h.HandleToggleSubscription())
	router.Get("/c/{channelId}", h.HandleGetSubscribers())
	router.Get("/u/{subscriberId}", h.HandleGetSubscribedChannels())
}

// HandleToggleSubscription godoc
// @Summary Subscribe to or unsubscribe from a channel
// @Tags Subscriptions
// @Produce json
// @Param channelId path string true "Channel (user) ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /subscriptions/c/{channelId} [post]
func (h *SubscriptionHandlers) HandleToggleSubscription() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		channelID, err := response.PathID(r, "channelId")
		if err != nil {
			return err
		}

		subscribed, err := h.service.Toggle(r.Context(), id.UserID, channelID)
		if err != nil {
			return err
		}
		message := "Unsubscribed successfully"
		if subscribed {
			message = "Subscribed successfully"
		}
		response.OK(w, nil, message)
		return nil
	})
}

// HandleGetSubscribers godoc
// @Summary Subscribers of a channel
// @Tags Subscriptions
// @Produce json
// @Param channelId path string true "Channel (user) ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=subscriptions.Subscribers}
// @Failure 400 {object} apperror.ErrorResponse
// @Router /subscriptions/c/{channelId} [get]
func (h *SubscriptionHandlers) HandleGetSubscribers() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		channelID, err := response.PathID(r, "channelId")
		if err != nil {
			return err
		}
		subs, err := h.service.Subscribers(r.Context(), channelID)
		if err != nil {
			return err
		}
		response.OK(w, subs, "Channel subscribers fetched successfully")
		return nil
	})
}

// HandleGetSubscribedChannels godoc
// @Summary Channels a user subscribes to
// @Tags Subscriptions
// @Produce json
// @Param subscriberId path string true "Subscriber (user) ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=subscriptions.Channels}
// @Failure 400 {object} apperror.ErrorResponse
// @Router /subscriptions/u/{subscriberId} [get]
func (h *SubscriptionHandlers) HandleGetSubscribedChannels() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		subscriberID, err := response.PathID(r, "subscriberId")
		if err != nil {
			return err
		}
		channels, err := h.service.Channels(r.Context(), subscriberID)
		if err != nil {
			return err
		}
		response.OK(w, channels, "Subscribed channels fetched successfully")
		return nil
	})
}
