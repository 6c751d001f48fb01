package incidents

import "errors"

// Service errors.
var (
	ErrIncidentNotFound  = errors.New("incident not found")
	ErrInvalidSeverity   = errors.New("invalid severity")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrIllegalTransition = errors.New("illegal status transition")
)
