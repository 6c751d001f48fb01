package domain

import "time"

// JobKind represents the kind of an automation job.
type JobKind string

// Job kinds.
const (
	JobKindRunbookStep JobKind = "RUNBOOK_STEP"
)

// IsValid checks if the job kind is valid.
func (k JobKind) IsValid() bool {
	return k == JobKindRunbookStep
}

// JobStatus represents the processing status of a job.
// Transitions are monotonic: PENDING → PROCESSING → {COMPLETED, FAILED}.
type JobStatus string

// Job statuses.
const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// StepActionType represents the automated action of a runbook step.
type StepActionType string

// Step action types.
const (
	StepActionNotify StepActionType = "notify"
	StepActionHTTP   StepActionType = "http"
)

// IsValid checks if the action type is valid.
func (a StepActionType) IsValid() bool {
	return a == StepActionNotify || a == StepActionHTTP
}

// JobPayload carries the runbook step context for a queued job.
type JobPayload struct {
	IncidentID  string         `json:"incidentId"`
	StepID      string         `json:"stepId"`
	RunbookName string         `json:"runbookName"`
	ActionType  StepActionType `json:"actionType"`
	Target      string         `json:"target"`
}

// Job is a queued request to execute one runbook step's automated action.
type Job struct {
	ID        string     `json:"id"`
	Kind      JobKind    `json:"kind"`
	Payload   JobPayload `json:"payload"`
	Status    JobStatus  `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
}
