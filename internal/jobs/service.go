package jobs

import (
	"context"
	"fmt"

	"github.com/openduty/console/internal/domain"
)

// Service implements job submission and lookup.
type Service struct {
	repo Repository
}

// NewService creates a new jobs service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SubmitInput holds data for submitting a job.
type SubmitInput struct {
	Kind    domain.JobKind
	Payload domain.JobPayload
}

// Submit validates the request and enqueues a new PENDING job.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*domain.Job, error) {
	if !input.Kind.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJobKind, input.Kind)
	}
	if !input.Payload.ActionType.IsValid() {
		return nil, fmt.Errorf("%w: unknown action type %q", ErrInvalidPayload, input.Payload.ActionType)
	}
	if input.Payload.IncidentID == "" {
		return nil, fmt.Errorf("%w: incident id is required", ErrInvalidPayload)
	}
	if input.Payload.Target == "" {
		return nil, fmt.Errorf("%w: target is required", ErrInvalidPayload)
	}

	job := &domain.Job{
		Kind:    input.Kind,
		Payload: input.Payload,
		Status:  domain.JobStatusPending,
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	return job, nil
}

// Get returns the job with the given id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Job, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns jobs, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Job, error) {
	return s.repo.List(ctx, limit, offset)
}
