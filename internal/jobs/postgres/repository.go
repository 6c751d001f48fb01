// Package postgres provides PostgreSQL implementation of the job queue repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openduty/console/internal/domain"
	"github.com/openduty/console/internal/jobs"
)

// Repository implements jobs.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create enqueues a new job.
func (r *Repository) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (kind, payload, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		job.Kind,
		job.Payload,
		job.Status,
	).Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// GetByID retrieves a job by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	query := `
		SELECT id, kind, payload, status, created_at, claimed_at
		FROM jobs
		WHERE id = $1
	`
	var job domain.Job
	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.Kind,
		&job.Payload,
		&job.Status,
		&job.CreatedAt,
		&job.ClaimedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, jobs.ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// List retrieves jobs, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]domain.Job, error) {
	query := `
		SELECT id, kind, payload, status, created_at, claimed_at
		FROM jobs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Job, 0)
	for rows.Next() {
		var job domain.Job
		err := rows.Scan(
			&job.ID,
			&job.Kind,
			&job.Payload,
			&job.Status,
			&job.CreatedAt,
			&job.ClaimedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		result = append(result, job)
	}

	return result, rows.Err()
}

// ClaimOldestPending claims the oldest PENDING job with a single conditional
// update. FOR UPDATE SKIP LOCKED keeps concurrent workers from blocking on
// the same row; the status predicate guarantees a job is claimed once.
func (r *Repository) ClaimOldestPending(ctx context.Context) (*domain.Job, error) {
	query := `
		UPDATE jobs
		SET status = $1, claimed_at = NOW()
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = $2
			ORDER BY created_at ASC, seq ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, payload, status, created_at, claimed_at
	`
	var job domain.Job
	err := r.db.QueryRow(ctx, query, domain.JobStatusProcessing, domain.JobStatusPending).Scan(
		&job.ID,
		&job.Kind,
		&job.Payload,
		&job.Status,
		&job.CreatedAt,
		&job.ClaimedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, jobs.ErrNoPendingJobs
		}
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return &job, nil
}

// MarkCompleted writes the COMPLETED terminal status.
func (r *Repository) MarkCompleted(ctx context.Context, id string) error {
	return r.markTerminal(ctx, id, domain.JobStatusCompleted)
}

// MarkFailed writes the FAILED terminal status.
func (r *Repository) MarkFailed(ctx context.Context, id string) error {
	return r.markTerminal(ctx, id, domain.JobStatusFailed)
}

// markTerminal transitions a PROCESSING job to a terminal status. The status
// predicate keeps terminal states immutable.
func (r *Repository) markTerminal(ctx context.Context, id string, status domain.JobStatus) error {
	query := `
		UPDATE jobs
		SET status = $2
		WHERE id = $1 AND status = $3
	`
	result, err := r.db.Exec(ctx, query, id, status, domain.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("mark job %s: %w", status, err)
	}
	if result.RowsAffected() == 0 {
		return jobs.ErrJobNotFound
	}
	return nil
}

// ReleaseExpired requeues PROCESSING jobs claimed before the deadline.
func (r *Repository) ReleaseExpired(ctx context.Context, deadline time.Time) (int, error) {
	query := `
		UPDATE jobs
		SET status = $1, claimed_at = NULL
		WHERE status = $2 AND claimed_at < $3
	`
	result, err := r.db.Exec(ctx, query, domain.JobStatusPending, domain.JobStatusProcessing, deadline)
	if err != nil {
		return 0, fmt.Errorf("release expired jobs: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// QueueStats returns job counts by status.
func (r *Repository) QueueStats(ctx context.Context) (*jobs.QueueStats, error) {
	query := `SELECT status, COUNT(*) FROM jobs GROUP BY status`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := &jobs.QueueStats{}
	for rows.Next() {
		var status domain.JobStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan queue stats: %w", err)
		}
		switch status {
		case domain.JobStatusPending:
			stats.Pending = count
		case domain.JobStatusProcessing:
			stats.Processing = count
		case domain.JobStatusCompleted:
			stats.Completed = count
		case domain.JobStatusFailed:
			stats.Failed = count
		}
	}

	return stats, rows.Err()
}
