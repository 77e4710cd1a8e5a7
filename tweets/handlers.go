package tweets

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/vidtube-go/auth"
	"github.com/user/vidtube-go/response"
)

// Service is what the handlers need from TweetService.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, content string) (*Tweet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Tweet, error)
	Get(ctx context.Context, tweetID uuid.UUID) (*Tweet, error)
	Update(ctx context.Context, tweetID uuid.UUID, content string) (*Tweet, error)
	Delete(ctx context.Context, tweetID uuid.UUID) error
}

// TweetHandlers provides HTTP handlers for tweets.
type TweetHandlers struct {
	service Service
}

// NewTweetHandlers creates new TweetHandlers.
func NewTweetHandlers(service Service) *TweetHandlers {
	return &TweetHandlers{service: service}
}

// RegisterRoutes registers the tweet routes. Every route expects an authenticated caller.
func (h *TweetHandlers) RegisterRoutes(router chi.Router) {
	router.Post("/", h.HandleCreateTweet())
	router.Get("/user/{userId}", h.HandleGetUserTweets())
	router.Patch("/{tweetId}", h.HandleUpdateTweet())
	router.Delete("/{tweetId}", h.HandleDeleteTweet())
}

// HandleCreateTweet godoc
// @Summary Post a tweet
// @Tags Tweets
// @Accept json
// @Produce json
// @Param body body tweets.ContentRequest true "Tweet"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=tweets.Tweet}
// @Failure 400 {object} apperror.ErrorResponse
// @Router /tweets [post]
func (h *TweetHandlers) HandleCreateTweet() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		var req ContentRequest
		if err := response.DecodeJSON(r, &req); err != nil {
			return err
		}
		tweet, err := h.service.Create(r.Context(), id.UserID, req.Content)
		if err != nil {
			return err
		}
		response.Created(w, tweet, "Tweet created successfully")
		return nil
	})
}

// HandleGetUserTweets godoc
// @Summary Tweets of a user
// @Tags Tweets
// @Produce json
// @Param userId path string true "User ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]tweets.Tweet}
// @Failure 400 {object} apperror.ErrorResponse
// @Router /tweets/user/{userId} [get]
func (h *TweetHandlers) HandleGetUserTweets() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		userID, err := response.PathID(r, "userId")
		if err != nil {
			return err
		}
		tweets, err := h.service.ListByOwner(r.Context(), userID)
		if err != nil {
			return err
		}
		response.OK(w, tweets, "User tweets fetched successfully")
		return nil
	})
}

// HandleUpdateTweet godoc
// @Summary Edit a tweet
// @Tags Tweets
// @Accept json
// @Produce json
// @Param tweetId path string true "Tweet ID"
// @Param body body tweets.ContentRequest true "New content"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=tweets.Tweet}
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /tweets/{tweetId} [patch]
func (h *TweetHandlers) HandleUpdateTweet() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		var req ContentRequest
		if err := response.DecodeJSON(r, &req); err != nil {
			return err
		}
		tweet, err := h.ownedTweet(r, "Not authorized to update this tweet")
		if err != nil {
			return err
		}
		updated, err := h.service.Update(r.Context(), tweet.ID, req.Content)
		if err != nil {
			return err
		}
		response.OK(w, updated, "Tweet updated successfully")
		return nil
	})
}

// HandleDeleteTweet godoc
// @Summary Delete a tweet
// @Tags Tweets
// @Produce json
// @Param tweetId path string true "Tweet ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /tweets/{tweetId} [delete]
func (h *TweetHandlers) HandleDeleteTweet() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		tweet, err := h.ownedTweet(r, "Not authorized to delete this tweet")
		if err != nil {
			return err
		}
		if err := h.service.Delete(r.Context(), tweet.ID); err != nil {
			return err
		}
		response.OK(w, nil, "Tweet deleted successfully")
		return nil
	})
}

func (h *TweetHandlers) ownedTweet(r *http.Request, forbidden string) (*Tweet, error) {
	id, err := auth.RequireIdentity(r.Context())
	if err != nil {
		return nil, err
	}
	tweetID, err := response.PathID(r, "tweetId")
	if err != nil {
		return nil, err
	}
	tweet, err := h.service.Get(r.Context(), tweetID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(tweet.Owner.ID, id.UserID, forbidden); err != nil {
		return nil, err
	}
	return tweet, nil
}
