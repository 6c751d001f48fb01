// Package postgres provides the PostgreSQL connection pool and migration
// runner shared by the repository implementations.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config contains PostgreSQL connection configuration.
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectAttempts int
}

// Connect establishes a connection pool, retrying with exponential backoff
// until the database answers a ping or the attempts are exhausted.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := tryConnect(ctx, poolConfig)
		if err == nil {
			slog.Info("connected to database", "attempts", attempt)
			return pool, nil
		}

		lastErr = err
		if attempt == attempts {
			break
		}

		backoff := retryBackoff(attempt)
		slog.Warn("database not reachable, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"backoff", backoff,
			"error", err,
		)
		if !sleepCtx(ctx, backoff) {
			return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("connect to database after %d attempts: %w", attempts, lastErr)
}

func tryConnect(ctx context.Context, poolConfig *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// retryBackoff returns exponential backoff capped at 16 seconds.
func retryBackoff(attempt int) time.Duration {
	backoff := time.Duration(1<<(attempt-1)) * time.Second
	if backoff > 16*time.Second {
		backoff = 16 * time.Second
	}
	return backoff
}

// sleepCtx waits for d or context cancellation. Returns false if cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
