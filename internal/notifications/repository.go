package notifications

import (
	"context"

	"github.com/openduty/console/internal/domain"
)

// Repository defines the interface for notification channel data access.
type Repository interface {
	CreateChannel(ctx context.Context, channel *domain.NotificationChannel) error
	GetChannelByID(ctx context.Context, id string) (*domain.NotificationChannel, error)
	ListChannels(ctx context.Context) ([]domain.NotificationChannel, error)
	UpdateChannel(ctx context.Context, channel *domain.NotificationChannel) error
	DeleteChannel(ctx context.Context, id string) error

	// ListEnabledChannels returns the channels eligible for fan-out, in a
	// stable order (oldest first). The dispatcher preserves this order in
	// its result list.
	ListEnabledChannels(ctx context.Context) ([]domain.NotificationChannel, error)
}
