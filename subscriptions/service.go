// Package subscriptions lets users follow channels and lists both sides of the relation.
package subscriptions

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/models"
)

// Subscribers is the body of GET /subscriptions/c/{channelId}.
type Subscribers struct {
	Subscribers []models.Owner `json:"subscribers"`
	Count       int            `json:"count"`
}

// Channels is the body of GET /subscriptions/u/{subscriberId}.
type Channels struct {
	Channels []models.Owner `json:"channels"`
	Count    int            `json:"count"`
}

// SubscriptionService provides subscription persistence.
type SubscriptionService struct {
	db *pgxpool.Pool
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(db *pgxpool.Pool) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Toggle subscribes subscriberID to channelID, or unsubscribes if already subscribed.
// It reports whether the subscription exists afterwards.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	if subscriberID == channelID {
		return false, apperror.NewBadRequestError("You cannot subscribe to yourself", nil)
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, channelID).Scan(&exists); err != nil {
		return false, apperror.NewDatabaseError("failed to look up channel", err)
	}
	if !exists {
		return false, apperror.NewNotFoundError("Channel not found", nil)
	}

	var subscribed bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`,
		subscriberID, channelID,
	).Scan(&subscribed); err != nil {
		return false, apperror.NewDatabaseError("failed to look up subscription", err)
	}

	if subscribed {
		if _, err := s.db.Exec(ctx,
			`DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`, subscriberID, channelID,
		); err != nil {
			return false, apperror.NewDatabaseError("failed to unsubscribe", err)
		}
		return false, nil
	}

	if _, err := s.db.Exec(ctx,
		`INSERT INTO subscriptions (subscriber_id, channel_id) VALUES ($1, $2)
		 ON CONFLICT (subscriber_id, channel_id) DO NOTHING`,
		subscriberID, channelID,
	); err != nil {
		return false, apperror.NewDatabaseError("failed to subscribe", err)
	}
	return true, nil
}

// Subscribers lists the users subscribed to channelID, most recent first.
func (s *SubscriptionService) Subscribers(ctx context.Context, channelID uuid.UUID) (*Subscribers, error) {
	owners, err := s.owners(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar
		FROM subscriptions s
		JOIN users u ON u.id = s.subscriber_id
		WHERE s.channel_id = $1
		ORDER BY s.created_at DESC`, channelID)
	if err != nil {
		return nil, err
	}
	return &Subscribers{Subscribers: owners, Count: len(owners)}, nil
}

// Channels lists the channels subscriberID follows, most recent first.
func (s *SubscriptionService) Channels(ctx context.Context, subscriberID uuid.UUID) (*Channels, error) {
	owners, err := s.owners(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar
		FROM subscriptions s
		JOIN users u ON u.id = s.channel_id
		WHERE s.subscriber_id = $1
		ORDER BY s.created_at DESC`, subscriberID)
	if err != nil {
		return nil, err
	}
	return &Channels{Channels: owners, Count: len(owners)}, nil
}

func (s *SubscriptionService) owners(ctx context.Context, query string, id uuid.UUID) ([]models.Owner, error) {
	rows, _ := s.db.Query(ctx, query, id)
	owners, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Owner, error) {
		var o models.Owner
		err := row.Scan(&o.ID, &o.Username, &o.FullName, &o.Avatar)
		return o, err
	})
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list subscriptions", err)
	}
	if owners == nil {
		owners = []models.Owner{}
	}
	return owners, nil
}
