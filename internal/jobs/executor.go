package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/notifications"
)

// IncidentResolver resolves incident ids to incidents.
type IncidentResolver interface {
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
}

// ChannelSource lists the channels eligible for fan-out.
type ChannelSource interface {
	ListEnabledChannels(ctx context.Context) ([]domain.NotificationChannel, error)
}

// LedgerAppender appends events to the timeline ledger.
type LedgerAppender interface {
	Append(ctx context.Context, event *domain.TimelineEvent) error
}

// Executor runs one claimed job to its terminal status and records the
// outcome in the job record and the timeline ledger.
type Executor struct {
	repo       Repository
	incidents  IncidentResolver
	channels   ChannelSource
	ledger     LedgerAppender
	dispatcher *notifications.Dispatcher
	httpClient *http.Client
}

// NewExecutor creates a new job executor. httpTimeout bounds the direct
// "http" action call so an unresponsive target cannot stall the worker.
func NewExecutor(
	repo Repository,
	incidents IncidentResolver,
	channels ChannelSource,
	ledger LedgerAppender,
	dispatcher *notifications.Dispatcher,
	httpTimeout time.Duration,
) *Executor {
	if httpTimeout == 0 {
		httpTimeout = 10 * time.Second
	}
	return &Executor{
		repo:       repo,
		incidents:  incidents,
		channels:   channels,
		ledger:     ledger,
		dispatcher: dispatcher,
		httpClient: &http.Client{Timeout: httpTimeout},
	}
}

// Execute runs the job and writes its terminal status. A "notify" job is
// COMPLETED regardless of individual channel outcomes; only the fan-out
// summary differs. A failing direct "http" call fails the job.
func (e *Executor) Execute(ctx context.Context, job *domain.Job) {
	start := time.Now()

	content, err := e.run(ctx, job)
	if err != nil {
		e.fail(ctx, job, err)
		recordJobProcessed("failed")
		return
	}

	event := &domain.TimelineEvent{
		IncidentID: job.Payload.IncidentID,
		Kind:       domain.TimelineEventRunbook,
		Content:    content,
		Author:     domain.AuthorAutomationWorker,
	}
	if err := e.ledger.Append(ctx, event); err != nil {
		e.fail(ctx, job, fmt.Errorf("append timeline event: %w", err))
		recordJobProcessed("failed")
		return
	}

	if err := e.repo.MarkCompleted(ctx, job.ID); err != nil {
		slog.Error("failed to mark job completed", "job_id", job.ID, "error", err)
		return
	}

	recordJobProcessed("completed")
	slog.Info("job completed",
		"job_id", job.ID,
		"action_type", job.Payload.ActionType,
		"duration", time.Since(start),
	)
}

func (e *Executor) run(ctx context.Context, job *domain.Job) (string, error) {
	incident, err := e.incidents.GetByID(ctx, job.Payload.IncidentID)
	if err != nil {
		return "", fmt.Errorf("resolve incident: %w", err)
	}

	switch job.Payload.ActionType {
	case domain.StepActionNotify:
		return e.runNotify(ctx, job, incident)
	case domain.StepActionHTTP:
		return e.runHTTP(ctx, job)
	default:
		return "", fmt.Errorf("unknown action type %q", job.Payload.ActionType)
	}
}

// runNotify fans the step message out across all enabled channels and
// aggregates the per-channel outcomes into the ledger content.
func (e *Executor) runNotify(ctx context.Context, job *domain.Job, incident *domain.Incident) (string, error) {
	channels, err := e.channels.ListEnabledChannels(ctx)
	if err != nil {
		return "", fmt.Errorf("list enabled channels: %w", err)
	}

	msg := notifications.Message{
		Incident: incident,
		Subject:  fmt.Sprintf("Runbook Action: %s", incident.Title),
		Body: fmt.Sprintf("[Runbook: %s] Step Action: %s\nIncident: %s (%s)",
			job.Payload.RunbookName, job.Payload.Target, incident.Title, incident.Severity),
		Target: job.Payload.Target,
	}

	results := e.dispatcher.Broadcast(ctx, channels, msg)
	for _, r := range results {
		if r.Err != nil {
			slog.Warn("channel delivery failed",
				"job_id", job.ID,
				"channel", r.ChannelName,
				"error", r.Err,
			)
		}
	}

	return "[Automation] Notification broadcast: " + strings.Join(notifications.Tags(results), ", "), nil
}

// runHTTP performs the direct outbound call of an "http" step.
func (e *Executor) runHTTP(ctx context.Context, job *domain.Job) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"incidentId": job.Payload.IncidentID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.Payload.Target, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", job.Payload.Target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("call %s: status %d: %s", job.Payload.Target, resp.StatusCode, string(body))
	}

	return fmt.Sprintf("[Automation] HTTP Webhook triggered at %s. Response: 200 OK.", job.Payload.Target), nil
}

// fail marks the job FAILED and records an ALERT ledger entry explaining the
// cause. The alert is skipped when the payload carries no incident id.
func (e *Executor) fail(ctx context.Context, job *domain.Job, cause error) {
	slog.Error("job failed", "job_id", job.ID, "error", cause)

	if err := e.repo.MarkFailed(ctx, job.ID); err != nil {
		slog.Error("failed to mark job failed", "job_id", job.ID, "error", err)
	}

	if job.Payload.IncidentID == "" {
		return
	}

	event := &domain.TimelineEvent{
		IncidentID: job.Payload.IncidentID,
		Kind:       domain.TimelineEventAlert,
		Content:    fmt.Sprintf("Automation Failed: %s", cause),
		Author:     domain.AuthorSystem,
	}
	if err := e.ledger.Append(ctx, event); err != nil {
		slog.Error("failed to append alert event", "job_id", job.ID, "error", err)
	}
}
