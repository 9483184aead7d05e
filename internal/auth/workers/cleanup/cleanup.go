// Package cleanup deletes expired token rows on a fixed interval.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"aulagate/internal/auth/service"
)

// TokenCleaner is the maintenance surface of the token service.
type TokenCleaner interface {
	CleanExpiredTokens(ctx context.Context) (*service.CleanupResult, error)
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

type Worker struct {
	cleaner  TokenCleaner
	logger   *slog.Logger
	interval time.Duration
}

func New(cleaner TokenCleaner, opts ...Option) *Worker {
	worker := &Worker{
		cleaner:  cleaner,
		logger:   slog.Default(),
		interval: time.Hour,
	}
	for _, opt := range opts {
		opt(worker)
	}
	return worker
}

// Start runs the cleanup loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			startTime := time.Now()
			result, err := w.cleaner.CleanExpiredTokens(ctx)
			duration := time.Since(startTime)

			if err != nil {
				w.logger.Error("token_cleanup_failed",
					"error", err,
					"duration_ms", duration.Milliseconds(),
				)
				continue
			}

			w.logger.Info("token_cleanup_completed",
				"refresh_deleted", result.RefreshDeleted,
				"access_deleted", result.AccessDeleted,
				"duration_ms", duration.Milliseconds(),
			)

		case <-ctx.Done():
			w.logger.Info("token cleanup worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}
