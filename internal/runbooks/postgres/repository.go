// Package postgres provides PostgreSQL implementation of runbooks repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/runbooks"
)

// Repository implements runbooks.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts the runbook and its steps in one transaction.
func (r *Repository) Create(ctx context.Context, runbook *domain.Runbook) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	insertRunbook := `
		INSERT INTO runbooks (name)
		VALUES ($1)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, insertRunbook, runbook.Name).
		Scan(&runbook.ID, &runbook.CreatedAt, &runbook.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert runbook: %w", err)
	}

	if err := insertSteps(ctx, tx, runbook); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a runbook with its steps.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Runbook, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM runbooks
		WHERE id = $1
	`
	var runbook domain.Runbook
	err := r.db.QueryRow(ctx, query, id).Scan(
		&runbook.ID,
		&runbook.Name,
		&runbook.CreatedAt,
		&runbook.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, runbooks.ErrRunbookNotFound
		}
		return nil, fmt.Errorf("get runbook: %w", err)
	}

	steps, err := r.listSteps(ctx, runbook.ID)
	if err != nil {
		return nil, err
	}
	runbook.Steps = steps

	return &runbook, nil
}

// List retrieves all runbooks with their steps, newest first.
func (r *Repository) List(ctx context.Context) ([]domain.Runbook, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM runbooks
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list runbooks: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Runbook, 0)
	for rows.Next() {
		var runbook domain.Runbook
		err := rows.Scan(
			&runbook.ID,
			&runbook.Name,
			&runbook.CreatedAt,
			&runbook.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan runbook: %w", err)
		}
		result = append(result, runbook)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		steps, err := r.listSteps(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Steps = steps
	}

	return result, nil
}

// Update renames the runbook and replaces its steps in one transaction.
func (r *Repository) Update(ctx context.Context, runbook *domain.Runbook) error {
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
		UPDATE runbooks
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err = tx.QueryRow(ctx, updateQuery, runbook.ID, runbook.Name).
		Scan(&runbook.CreatedAt, &runbook.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return runbooks.ErrRunbookNotFound
		}
		return fmt.Errorf("update runbook: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM runbook_steps WHERE runbook_id = $1`, runbook.ID); err != nil {
		return fmt.Errorf("delete steps: %w", err)
	}

	if err := insertSteps(ctx, tx, runbook); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete removes a runbook. Steps go with it via ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM runbooks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete runbook: %w", err)
	}
	if result.RowsAffected() == 0 {
		return runbooks.ErrRunbookNotFound
	}
	return nil
}

func (r *Repository) listSteps(ctx context.Context, runbookID string) ([]domain.RunbookStep, error) {
	query := `
		SELECT id, runbook_id, title, description, type, target, auto_execute, position
		FROM runbook_steps
		WHERE runbook_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.Query(ctx, query, runbookID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	steps := make([]domain.RunbookStep, 0)
	for rows.Next() {
		var step domain.RunbookStep
		err := rows.Scan(
			&step.ID,
			&step.RunbookID,
			&step.Title,
			&step.Description,
			&step.Type,
			&step.Target,
			&step.AutoExecute,
			&step.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, step)
	}

	return steps, rows.Err()
}

func insertSteps(ctx context.Context, tx pgx.Tx, runbook *domain.Runbook) error {
	insertStep := `
		INSERT INTO runbook_steps (runbook_id, title, description, type, target, auto_execute, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	for i := range runbook.Steps {
		step := &runbook.Steps[i]
		step.RunbookID = runbook.ID
		err := tx.QueryRow(ctx, insertStep,
			step.RunbookID,
			step.Title,
			step.Description,
			step.Type,
			step.Target,
			step.AutoExecute,
			step.Position,
		).Scan(&step.ID)
		if err != nil {
			return fmt.Errorf("insert step: %w", err)
		}
	}
	return nil
}
