package notifications

import (
	"context"
	"fmt"

	"github.com/openduty/console/internal/domain"
)

// Service implements notification channel registry logic.
type Service struct {
	repo Repository
}

// NewService creates a new notifications service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateChannelInput holds data for registering a channel.
type CreateChannelInput struct {
	Type    domain.ChannelType
	Name    string
	Config  map[string]string
	Enabled bool
}

// CreateChannel registers a new notification channel. The config bag is
// stored as-is; missing type-specific keys surface as per-channel delivery
// failures at dispatch time, never as dispatch-wide errors.
func (s *Service) CreateChannel(ctx context.Context, input CreateChannelInput) (*domain.NotificationChannel, error) {
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidChannelType, input.Type)
	}

	channel := &domain.NotificationChannel{
		Type:    input.Type,
		Name:    input.Name,
		Config:  input.Config,
		Enabled: input.Enabled,
	}
	if channel.Config == nil {
		channel.Config = map[string]string{}
	}

	if err := s.repo.CreateChannel(ctx, channel); err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	return channel, nil
}

// UpdateChannelInput holds data for updating a channel. Nil fields are left
// unchanged.
type UpdateChannelInput struct {
	Name    *string
	Config  map[string]string
	Enabled *bool
}

// UpdateChannel updates an existing channel.
func (s *Service) UpdateChannel(ctx context.Context, id string, input UpdateChannelInput) (*domain.NotificationChannel, error) {
	channel, err := s.repo.GetChannelByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		channel.Name = *input.Name
	}
	if input.Config != nil {
		channel.Config = input.Config
	}
	if input.Enabled != nil {
		channel.Enabled = *input.Enabled
	}

	if err := s.repo.UpdateChannel(ctx, channel); err != nil {
		return nil, fmt.Errorf("update channel: %w", err)
	}
	return channel, nil
}

// ListChannels returns all registered channels.
func (s *Service) ListChannels(ctx context.Context) ([]domain.NotificationChannel, error) {
	return s.repo.ListChannels(ctx)
}

// GetChannel returns the channel with the given id.
func (s *Service) GetChannel(ctx context.Context, id string) (*domain.NotificationChannel, error) {
	return s.repo.GetChannelByID(ctx, id)
}

// DeleteChannel removes a channel from the registry.
func (s *Service) DeleteChannel(ctx context.Context, id string) error {
	return s.repo.DeleteChannel(ctx, id)
}
