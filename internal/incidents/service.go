package incidents

import (
	"context"
	"fmt"

	"github.com/openduty/console/internal/domain"
)

// Service implements the incident state machine.
//
// Every status transition is paired with a STATUS_CHANGE timeline event;
// the repository persists both as one atomic unit.
type Service struct {
	repo Repository
}

// NewService creates a new incident service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// DeclareInput holds data for declaring an incident.
type DeclareInput struct {
	Title       string
	Description string
	Severity    domain.IncidentSeverity
	Commander   string
	TeamID      *string
}

// Declare creates a new incident with status OPEN and appends the initial
// STATUS_CHANGE event.
func (s *Service) Declare(ctx context.Context, input DeclareInput) (*domain.Incident, error) {
	if !input.Severity.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSeverity, input.Severity)
	}

	incident := &domain.Incident{
		Title:       input.Title,
		Description: input.Description,
		Severity:    input.Severity,
		Status:      domain.IncidentStatusOpen,
		Commander:   input.Commander,
		TeamID:      input.TeamID,
	}

	event := &domain.TimelineEvent{
		Kind:    domain.TimelineEventStatusChange,
		Content: fmt.Sprintf("Incident started. Severity: %s", input.Severity),
		Author:  domain.AuthorSystem,
	}

	if err := s.repo.CreateWithEvent(ctx, incident, event); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}

	return incident, nil
}

// UpdateStatus transitions the incident to the given status and appends the
// corresponding STATUS_CHANGE event. Only transitions allowed by the state
// machine are accepted.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus) (*domain.Incident, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !incident.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, incident.Status, status)
	}

	incident.Status = status

	event := &domain.TimelineEvent{
		IncidentID: incident.ID,
		Kind:       domain.TimelineEventStatusChange,
		Content:    fmt.Sprintf("Status updated to %s", status),
		Author:     domain.AuthorSystem,
	}

	if err := s.repo.UpdateStatusWithEvent(ctx, incident, event); err != nil {
		return nil, fmt.Errorf("update incident status: %w", err)
	}

	return incident, nil
}

// Get returns the incident with the given id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Incident, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns incidents matching the filters, newest first.
func (s *Service) List(ctx context.Context, filters Filters) ([]domain.Incident, error) {
	return s.repo.List(ctx, filters)
}
