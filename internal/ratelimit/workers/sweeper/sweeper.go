// Package sweeper evicts elapsed rate limit buckets on a fixed interval.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// SweepResult contains the results of one eviction run.
type SweepResult struct {
	BucketsRemoved int
	Duration       time.Duration
}

// SweepableStore is the store surface the sweeper needs.
type SweepableStore interface {
	Sweep(ctx context.Context) (removed int, err error)
	Len() int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

type Service struct {
	store    SweepableStore
	logger   *slog.Logger
	interval time.Duration
}

func New(store SweepableStore, opts ...Option) *Service {
	service := &Service{
		store:    store,
		logger:   slog.Default(),
		interval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Start runs the eviction loop until the context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			startTime := time.Now()
			res, err := s.RunOnce(ctx)
			duration := time.Since(startTime)

			if err != nil {
				s.logger.Error("rate_limit_sweep_failed",
					"error", err,
					"duration_ms", duration.Milliseconds(),
				)
				continue
			}

			res.Duration = duration
			s.logger.Info("rate_limit_sweep_completed",
				"buckets_removed", res.BucketsRemoved,
				"buckets_live", s.store.Len(),
				"duration_ms", duration.Milliseconds(),
			)

		case <-ctx.Done():
			s.logger.Info("rate limit sweeper stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce executes a single eviction run. Logging is handled by the caller (Start).
func (s *Service) RunOnce(ctx context.Context) (*SweepResult, error) {
	removed, err := s.store.Sweep(ctx)
	if err != nil {
		return nil, err
	}
	return &SweepResult{BucketsRemoved: removed}, nil
}
