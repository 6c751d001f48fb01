package domain

import "time"

// StepType represents how a runbook step is executed.
type StepType string

// Step types. Manual steps are completed by a human; notify and http steps
// are executed by the automation worker.
const (
	StepTypeManual StepType = "manual"
	StepTypeNotify StepType = "notify"
	StepTypeHTTP   StepType = "http"
)

// IsValid checks if the step type is valid.
func (t StepType) IsValid() bool {
	return t == StepTypeManual || t == StepTypeNotify || t == StepTypeHTTP
}

// Runbook is a named reusable procedure made of ordered steps.
type Runbook struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Steps     []RunbookStep `json:"steps"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// RunbookStep is one step of a runbook.
type RunbookStep struct {
	ID          string   `json:"id"`
	RunbookID   string   `json:"runbook_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        StepType `json:"type"`
	Target      string   `json:"target,omitempty"`
	AutoExecute bool     `json:"auto_execute"`
	Position    int      `json:"position"`
}
