// Package postgres provides PostgreSQL implementation of the timeline ledger.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openduty/console/internal/domain"
)

// Repository implements timeline.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Append adds an event to an incident's timeline.
func (r *Repository) Append(ctx context.Context, event *domain.TimelineEvent) error {
	query := `
		INSERT INTO timeline_events (incident_id, kind, content, author)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		event.IncidentID,
		event.Kind,
		event.Content,
		event.Author,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("append timeline event: %w", err)
	}
	return nil
}

// ListByIncident returns all events for an incident, oldest first.
// The seq column breaks created_at ties in insertion order.
func (r *Repository) ListByIncident(ctx context.Context, incidentID string) ([]domain.TimelineEvent, error) {
	query := `
		SELECT id, incident_id, kind, content, author, created_at
		FROM timeline_events
		WHERE incident_id = $1
		ORDER BY created_at ASC, seq ASC
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list timeline events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.TimelineEvent, 0)
	for rows.Next() {
		var event domain.TimelineEvent
		err := rows.Scan(
			&event.ID,
			&event.IncidentID,
			&event.Kind,
			&event.Content,
			&event.Author,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
