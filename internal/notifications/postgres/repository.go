// Package postgres provides PostgreSQL implementation of notifications repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/notifications"
)

// Repository implements notifications.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateChannel creates a new notification channel.
func (r *Repository) CreateChannel(ctx context.Context, channel *domain.NotificationChannel) error {
	query := `
		INSERT INTO notification_channels (type, name, config, enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		channel.Type,
		channel.Name,
		channel.Config,
		channel.Enabled,
	).Scan(&channel.ID, &channel.CreatedAt, &channel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create channel: %w", err)
	}
	return nil
}

// GetChannelByID retrieves a notification channel by ID.
func (r *Repository) GetChannelByID(ctx context.Context, id string) (*domain.NotificationChannel, error) {
	query := `
		SELECT id, type, name, config, enabled, created_at, updated_at
		FROM notification_channels
		WHERE id = $1
	`
	var channel domain.NotificationChannel
	err := r.db.QueryRow(ctx, query, id).Scan(
		&channel.ID,
		&channel.Type,
		&channel.Name,
		&channel.Config,
		&channel.Enabled,
		&channel.CreatedAt,
		&channel.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notifications.ErrChannelNotFound
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return &channel, nil
}

// ListChannels retrieves all notification channels, oldest first.
func (r *Repository) ListChannels(ctx context.Context) ([]domain.NotificationChannel, error) {
	return r.listChannels(ctx, false)
}

// ListEnabledChannels retrieves all enabled channels, oldest first.
func (r *Repository) ListEnabledChannels(ctx context.Context) ([]domain.NotificationChannel, error) {
	return r.listChannels(ctx, true)
}

func (r *Repository) listChannels(ctx context.Context, enabledOnly bool) ([]domain.NotificationChannel, error) {
	query := `
		SELECT id, type, name, config, enabled, created_at, updated_at
		FROM notification_channels
	`
	if enabledOnly {
		query += " WHERE enabled"
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	channels := make([]domain.NotificationChannel, 0)
	for rows.Next() {
		var channel domain.NotificationChannel
		err := rows.Scan(
			&channel.ID,
			&channel.Type,
			&channel.Name,
			&channel.Config,
			&channel.Enabled,
			&channel.CreatedAt,
			&channel.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, channel)
	}

	return channels, rows.Err()
}

// UpdateChannel updates an existing notification channel.
func (r *Repository) UpdateChannel(ctx context.Context, channel *domain.NotificationChannel) error {
	query := `
		UPDATE notification_channels
		SET name = $2, config = $3, enabled = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		channel.ID,
		channel.Name,
		channel.Config,
		channel.Enabled,
	).Scan(&channel.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notifications.ErrChannelNotFound
		}
		return fmt.Errorf("update channel: %w", err)
	}
	return nil
}

// DeleteChannel deletes a notification channel.
func (r *Repository) DeleteChannel(ctx context.Context, id string) error {
	query := `DELETE FROM notification_channels WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}

	if result.RowsAffected() == 0 {
		return notifications.ErrChannelNotFound
	}
	return nil
}
