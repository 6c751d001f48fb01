// Package postgres provides PostgreSQL implementation of incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/incidents"
)

// Repository implements incidents.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateWithEvent inserts the incident and its initial timeline event in one
// transaction.
func (r *Repository) CreateWithEvent(ctx context.Context, incident *domain.Incident, event *domain.TimelineEvent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	insertIncident := `
		INSERT INTO incidents (title, description, severity, status, commander, team_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, insertIncident,
		incident.Title,
		incident.Description,
		incident.Severity,
		incident.Status,
		incident.Commander,
		incident.TeamID,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert incident: %w", err)
	}

	event.IncidentID = incident.ID

	insertEvent := `
		INSERT INTO timeline_events (incident_id, kind, content, author)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, insertEvent,
		event.IncidentID,
		event.Kind,
		event.Content,
		event.Author,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert initial event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves an incident by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	query := `
		SELECT id, title, description, severity, status, commander, team_id, created_at, updated_at
		FROM incidents
		WHERE id = $1
	`
	var incident domain.Incident
	err := r.db.QueryRow(ctx, query, id).Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.Severity,
		&incident.Status,
		&incident.Commander,
		&incident.TeamID,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return &incident, nil
}

// List retrieves incidents with optional filters, newest first.
func (r *Repository) List(ctx context.Context, filters incidents.Filters) ([]domain.Incident, error) {
	query := `
		SELECT id, title, description, severity, status, commander, team_id, created_at, updated_at
		FROM incidents
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filters.TeamID != nil {
		query += fmt.Sprintf(" AND team_id = $%d", argNum)
		args = append(args, *filters.TeamID)
		argNum++
	}

	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, *filters.Status)
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Incident, 0)
	for rows.Next() {
		var incident domain.Incident
		err := rows.Scan(
			&incident.ID,
			&incident.Title,
			&incident.Description,
			&incident.Severity,
			&incident.Status,
			&incident.Commander,
			&incident.TeamID,
			&incident.CreatedAt,
			&incident.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		result = append(result, incident)
	}

	return result, rows.Err()
}

// UpdateStatusWithEvent writes the new status and the STATUS_CHANGE event in
// one transaction.
func (r *Repository) UpdateStatusWithEvent(ctx context.Context, incident *domain.Incident, event *domain.TimelineEvent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	updateQuery := `
		UPDATE incidents
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err = tx.QueryRow(ctx, updateQuery, incident.ID, incident.Status).Scan(&incident.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return incidents.ErrIncidentNotFound
		}
		return fmt.Errorf("update incident: %w", err)
	}

	insertEvent := `
		INSERT INTO timeline_events (incident_id, kind, content, author)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, insertEvent,
		event.IncidentID,
		event.Kind,
		event.Content,
		event.Author,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert status change event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
