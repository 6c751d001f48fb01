package domain

import "time"

// TimelineEventKind represents the kind of a timeline event.
type TimelineEventKind string

// Timeline event kinds.
const (
	TimelineEventNote         TimelineEventKind = "NOTE"
	TimelineEventStatusChange TimelineEventKind = "STATUS_CHANGE"
	TimelineEventRunbook      TimelineEventKind = "RUNBOOK_ACTION"
	TimelineEventAlert        TimelineEventKind = "ALERT"
)

// IsValid checks if the event kind is valid.
func (k TimelineEventKind) IsValid() bool {
	switch k {
	case TimelineEventNote, TimelineEventStatusChange, TimelineEventRunbook, TimelineEventAlert:
		return true
	}
	return false
}

// Fixed author identities used by the automation subsystem.
const (
	AuthorSystem           = "System"
	AuthorAutomationWorker = "Automation Worker"
)

// TimelineEvent is one entry in an incident's append-only timeline.
// Events are never mutated or deleted after creation.
type TimelineEvent struct {
	ID         string            `json:"id"`
	IncidentID string            `json:"incident_id"`
	Kind       TimelineEventKind `json:"kind"`
	Content    string            `json:"content"`
	Author     string            `json:"author"`
	CreatedAt  time.Time         `json:"created_at"`
}
