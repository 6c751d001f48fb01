// Package incidents provides incident lifecycle management.
package incidents

import (
	"context"

	"github.com/openduty/console/internal/domain"
)

// Repository defines the interface for incident data access.
type Repository interface {
	// CreateWithEvent inserts the incident and its initial timeline event as
	// a single atomic unit. A reader must never observe one without the other.
	CreateWithEvent(ctx context.Context, incident *domain.Incident, event *domain.TimelineEvent) error

	GetByID(ctx context.Context, id string) (*domain.Incident, error)
	List(ctx context.Context, filters Filters) ([]domain.Incident, error)

	// UpdateStatusWithEvent writes the incident's new status and updated_at
	// together with the STATUS_CHANGE timeline event, atomically.
	UpdateStatusWithEvent(ctx context.Context, incident *domain.Incident, event *domain.TimelineEvent) error
}

// Filters narrows incident listing.
type Filters struct {
	TeamID *string
	Status *domain.IncidentStatus
	Limit  int
	Offset int
}
