// Package runbooks provides runbook templates and step execution.
package runbooks

import (
	"context"

	"github.com/openduty/console/internal/domain"
)

// Repository defines the interface for runbook data access.
type Repository interface {
	// Create persists a runbook with its steps.
	Create(ctx context.Context, runbook *domain.Runbook) error

	// GetByID retrieves a runbook with its steps ordered by position.
	// Returns ErrRunbookNotFound if the runbook does not exist.
	GetByID(ctx context.Context, id string) (*domain.Runbook, error)

	// List retrieves all runbooks with their steps.
	List(ctx context.Context) ([]domain.Runbook, error)

	// Update renames the runbook and replaces its steps atomically.
	// Returns ErrRunbookNotFound if the runbook does not exist.
	Update(ctx context.Context, runbook *domain.Runbook) error

	// Delete removes a runbook and its steps.
	// Returns ErrRunbookNotFound if the runbook does not exist.
	Delete(ctx context.Context, id string) error
}
