// Package timeline provides the append-only incident timeline ledger.
package timeline

import (
	"context"

	"github.com/openduty/console/internal/domain"
)

// Repository defines the interface for ledger data access. The ledger is
// append-only: there is no update or delete operation.
type Repository interface {
	// Append adds an event to an incident's timeline. It fails only on
	// infrastructure errors, which are surfaced to the caller.
	Append(ctx context.Context, event *domain.TimelineEvent) error

	// ListByIncident returns all events for the incident ordered by creation
	// time ascending, ties broken by insertion order.
	ListByIncident(ctx context.Context, incidentID string) ([]domain.TimelineEvent, error)
}
