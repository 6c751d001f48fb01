package runbooks

import "errors"

var (
	// ErrRunbookNotFound is returned when a runbook is not found.
	ErrRunbookNotFound = errors.New("runbook not found")

	// ErrStepNotFound is returned when a step is not found in a runbook.
	ErrStepNotFound = errors.New("runbook step not found")

	// ErrInvalidStepType is returned when a step type is not recognized.
	ErrInvalidStepType = errors.New("invalid step type")
)
