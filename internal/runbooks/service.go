package runbooks

import (
	"context"
	"fmt"

	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/jobs"
)

// JobSubmitter enqueues automation jobs for the worker.
type JobSubmitter interface {
	Submit(ctx context.Context, input jobs.SubmitInput) (*domain.Job, error)
}

// LedgerAppender appends events to the timeline ledger.
type LedgerAppender interface {
	Append(ctx context.Context, event *domain.TimelineEvent) error
}

// Service implements runbook business logic.
type Service struct {
	repo   Repository
	jobs   JobSubmitter
	ledger LedgerAppender
}

// NewService creates a new runbooks service.
func NewService(repo Repository, jobs JobSubmitter, ledger LedgerAppender) *Service {
	return &Service{repo: repo, jobs: jobs, ledger: ledger}
}

// StepInput holds data for one runbook step.
type StepInput struct {
	Title       string
	Description string
	Type        domain.StepType
	Target      string
	AutoExecute bool
}

// CreateInput holds data for creating a runbook.
type CreateInput struct {
	Name  string
	Steps []StepInput
}

// Create validates the steps and persists a new runbook.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Runbook, error) {
	steps, err := buildSteps(input.Steps)
	if err != nil {
		return nil, err
	}

	runbook := &domain.Runbook{
		Name:  input.Name,
		Steps: steps,
	}

	if err := s.repo.Create(ctx, runbook); err != nil {
		return nil, fmt.Errorf("create runbook: %w", err)
	}

	return runbook, nil
}

// UpdateInput holds data for updating a runbook. The step list replaces the
// existing steps wholesale.
type UpdateInput struct {
	Name  string
	Steps []StepInput
}

// Update renames a runbook and replaces its steps.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*domain.Runbook, error) {
	steps, err := buildSteps(input.Steps)
	if err != nil {
		return nil, err
	}

	runbook := &domain.Runbook{
		ID:    id,
		Name:  input.Name,
		Steps: steps,
	}

	if err := s.repo.Update(ctx, runbook); err != nil {
		return nil, err
	}

	return runbook, nil
}

// Get returns the runbook with the given id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Runbook, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all runbooks.
func (s *Service) List(ctx context.Context) ([]domain.Runbook, error) {
	return s.repo.List(ctx)
}

// Delete removes a runbook.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// ExecuteStepInput holds data for executing one runbook step against an
// incident.
type ExecuteStepInput struct {
	RunbookID  string
	StepID     string
	IncidentID string
	// Author attributed to manual-step ledger entries. Defaults to "System".
	Author string
}

// ExecuteStepResult reports what the execution produced. Manual steps record
// a ledger entry immediately; automated steps enqueue a job for the worker.
type ExecuteStepResult struct {
	Step domain.RunbookStep `json:"step"`
	Job  *domain.Job        `json:"job,omitempty"`
}

// ExecuteStep executes a single step. Manual steps complete synchronously
// with a RUNBOOK_ACTION ledger entry. Notify and http steps enqueue a
// PENDING job and record that the step was queued.
func (s *Service) ExecuteStep(ctx context.Context, input ExecuteStepInput) (*ExecuteStepResult, error) {
	runbook, err := s.repo.GetByID(ctx, input.RunbookID)
	if err != nil {
		return nil, err
	}

	var step *domain.RunbookStep
	for i := range runbook.Steps {
		if runbook.Steps[i].ID == input.StepID {
			step = &runbook.Steps[i]
			break
		}
	}
	if step == nil {
		return nil, ErrStepNotFound
	}

	if step.Type == domain.StepTypeManual {
		author := input.Author
		if author == "" {
			author = domain.AuthorSystem
		}
		event := &domain.TimelineEvent{
			IncidentID: input.IncidentID,
			Kind:       domain.TimelineEventRunbook,
			Content:    fmt.Sprintf("Manual step completed: %s", step.Title),
			Author:     author,
		}
		if err := s.ledger.Append(ctx, event); err != nil {
			return nil, fmt.Errorf("append ledger entry: %w", err)
		}
		return &ExecuteStepResult{Step: *step}, nil
	}

	target := step.Target
	if target == "" {
		target = "Unknown"
	}

	job, err := s.jobs.Submit(ctx, jobs.SubmitInput{
		Kind: domain.JobKindRunbookStep,
		Payload: domain.JobPayload{
			IncidentID:  input.IncidentID,
			StepID:      step.ID,
			RunbookName: runbook.Name,
			ActionType:  domain.StepActionType(step.Type),
			Target:      target,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("submit job: %w", err)
	}

	event := &domain.TimelineEvent{
		IncidentID: input.IncidentID,
		Kind:       domain.TimelineEventRunbook,
		Content:    fmt.Sprintf("Queued automated step: %s (Worker will process)", step.Title),
		Author:     domain.AuthorSystem,
	}
	if err := s.ledger.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	return &ExecuteStepResult{Step: *step, Job: job}, nil
}

func buildSteps(inputs []StepInput) ([]domain.RunbookStep, error) {
	steps := make([]domain.RunbookStep, 0, len(inputs))
	for i, in := range inputs {
		if !in.Type.IsValid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStepType, in.Type)
		}
		steps = append(steps, domain.RunbookStep{
			Title:       in.Title,
			Description: in.Description,
			Type:        in.Type,
			Target:      in.Target,
			AutoExecute: in.AutoExecute,
			Position:    i,
		})
	}
	return steps, nil
}
