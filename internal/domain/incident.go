package domain

import "time"

// IncidentSeverity represents the urgency of an incident, SEV1 being the most severe.
type IncidentSeverity string

// Incident severities.
const (
	SeveritySEV1 IncidentSeverity = "SEV1"
	SeveritySEV2 IncidentSeverity = "SEV2"
	SeveritySEV3 IncidentSeverity = "SEV3"
	SeveritySEV4 IncidentSeverity = "SEV4"
)

// IsValid checks if the severity is valid.
func (s IncidentSeverity) IsValid() bool {
	switch s {
	case SeveritySEV1, SeveritySEV2, SeveritySEV3, SeveritySEV4:
		return true
	}
	return false
}

// IncidentStatus represents the lifecycle status of an incident.
type IncidentStatus string

// Incident statuses.
const (
	IncidentStatusOpen         IncidentStatus = "OPEN"
	IncidentStatusAcknowledged IncidentStatus = "ACKNOWLEDGED"
	IncidentStatusResolved     IncidentStatus = "RESOLVED"
)

// IsValid checks if the status is valid.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusOpen, IncidentStatusAcknowledged, IncidentStatusResolved:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status transition is legal.
// Legal transitions: OPEN→ACKNOWLEDGED, OPEN→RESOLVED, ACKNOWLEDGED→RESOLVED,
// RESOLVED→OPEN (reopen).
func (s IncidentStatus) CanTransitionTo(target IncidentStatus) bool {
	switch s {
	case IncidentStatusOpen:
		return target == IncidentStatusAcknowledged || target == IncidentStatusResolved
	case IncidentStatusAcknowledged:
		return target == IncidentStatusResolved
	case IncidentStatusResolved:
		return target == IncidentStatusOpen
	}
	return false
}

// Incident represents a tracked operational event.
type Incident struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Severity    IncidentSeverity `json:"severity"`
	Status      IncidentStatus   `json:"status"`
	Commander   string           `json:"commander"`
	TeamID      *string          `json:"team_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Duration returns how long the incident has been (or was) active.
// For unresolved incidents this is the time since creation; for resolved
// incidents it is frozen at the resolving transition. Reopening restarts
// the computation from the reopen's updated_at.
func (i *Incident) Duration(now time.Time) time.Duration {
	if i.Status == IncidentStatusResolved {
		return i.UpdatedAt.Sub(i.CreatedAt)
	}
	return now.Sub(i.CreatedAt)
}
