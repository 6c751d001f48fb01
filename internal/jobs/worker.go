package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// WorkerConfig contains worker configuration.
type WorkerConfig struct {
	// PollInterval is how long the loop sleeps when no PENDING job exists.
	PollInterval time.Duration
	// ErrorBackoff is the longer sleep after a loop-level error.
	ErrorBackoff time.Duration
	// LeaseDuration bounds a claim: PROCESSING jobs claimed longer ago are
	// requeued to PENDING by the reaper pass.
	LeaseDuration time.Duration
}

// DefaultWorkerConfig returns default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:  3 * time.Second,
		ErrorBackoff:  5 * time.Second,
		LeaseDuration: 5 * time.Minute,
	}
}

// Worker runs the poll-claim-execute-record loop. It processes jobs
// sequentially in strict creation order among PENDING jobs and never
// terminates on its own except through Stop or context cancellation.
type Worker struct {
	config   WorkerConfig
	repo     Repository
	executor *Executor

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWorker creates a new automation worker.
func NewWorker(config WorkerConfig, repo Repository, executor *Executor) *Worker {
	return &Worker{
		config:   config,
		repo:     repo,
		executor: executor,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("starting automation worker",
		"poll_interval", w.config.PollInterval,
		"error_backoff", w.config.ErrorBackoff,
		"lease_duration", w.config.LeaseDuration,
	)

	w.wg.Add(1)
	go w.run(ctx)
}

// Stop gracefully stops the worker, waiting for the in-flight job to finish.
func (w *Worker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	slog.Info("automation worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
		}

		err := w.tick(ctx)
		switch {
		case err == nil:
			// A job was processed; claim the next one immediately.
		case errors.Is(err, ErrNoPendingJobs):
			if !w.wait(ctx, w.config.PollInterval) {
				return
			}
		default:
			slog.Error("worker loop error", "error", err)
			if !w.wait(ctx, w.config.ErrorBackoff) {
				return
			}
		}
	}
}

// tick runs one reaper pass and processes at most one job.
func (w *Worker) tick(ctx context.Context) error {
	released, err := w.repo.ReleaseExpired(ctx, time.Now().Add(-w.config.LeaseDuration))
	if err != nil {
		return fmt.Errorf("release expired jobs: %w", err)
	}
	if released > 0 {
		slog.Warn("requeued jobs with expired leases", "count", released)
	}

	job, err := w.repo.ClaimOldestPending(ctx)
	if err != nil {
		return err
	}

	slog.Debug("claimed job", "job_id", job.ID, "action_type", job.Payload.ActionType)
	w.executor.Execute(ctx, job)
	return nil
}

// wait sleeps for d or until shutdown. Returns false when the worker should
// stop.
func (w *Worker) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-w.stopCh:
		return false
	}
}
