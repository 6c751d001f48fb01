// Package jobs provides the persisted automation job queue and its worker.
package jobs

import (
	"context"
	"time"

	"github.com/openduty/console/internal/domain"
)

// Repository defines the interface for job queue data access.
type Repository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, limit, offset int) ([]domain.Job, error)

	// ClaimOldestPending atomically claims the oldest PENDING job, moving it
	// to PROCESSING and stamping claimed_at. The status check and the write
	// are a single conditional operation, so at most one worker wins a job
	// even with multiple worker processes. Returns ErrNoPendingJobs when the
	// queue is empty.
	ClaimOldestPending(ctx context.Context) (*domain.Job, error)

	// MarkCompleted and MarkFailed write a job's terminal status. Terminal
	// states are never left again.
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error

	// ReleaseExpired requeues PROCESSING jobs claimed before the deadline
	// back to PENDING, recovering jobs orphaned by a worker crash. Returns
	// the number of jobs released.
	ReleaseExpired(ctx context.Context, deadline time.Time) (int, error)

	// QueueStats returns job counts by status.
	QueueStats(ctx context.Context) (*QueueStats, error)
}

// QueueStats holds job counts by status.
type QueueStats struct {
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
