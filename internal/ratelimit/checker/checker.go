// Package checker exposes the rate limit decision service consumed by the gate.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"aulagate/internal/platform/metrics"
	"aulagate/internal/ratelimit/config"
	"aulagate/internal/ratelimit/models"
)

// BucketStore is the sliding-window counter storage the checker depends on.
// The in-memory implementation can be swapped for a shared store without
// touching call sites.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
	Reset(ctx context.Context, key string) error
	GetCurrentCount(ctx context.Context, key string) (int, error)
	Fill(ctx context.Context, key string, limit int, window time.Duration) error
}

// Service evaluates requests against the tier table. Check never returns an
// error: a store failure is logged and resolved to an allow so a counter
// outage degrades limiting rather than taking down traffic.
type Service struct {
	store   BucketStore
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store BucketStore, cfg *config.Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("bucket store is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	svc := &Service{
		store:  store,
		config: cfg,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Check evaluates one request against its tier's sliding window.
func (s *Service) Check(ctx context.Context, tier models.Tier, clientIP, userAgent, sessionToken string) *models.Result {
	cfg := s.config.GetTier(tier)
	key := models.NewKey(cfg.Tier, clientIP, userAgent, sessionToken)

	result, err := s.store.Allow(ctx, key.String(), cfg.MaxRequests, cfg.Window)
	if err != nil {
		s.logger.Warn("rate limit store unavailable, allowing request",
			"tier", cfg.Tier,
			"error", err,
		)
		return &models.Result{
			Allowed:   true,
			Limit:     cfg.MaxRequests,
			Remaining: cfg.MaxRequests,
			ResetAt:   time.Now().Add(cfg.Window),
		}
	}

	if !result.Allowed {
		if s.metrics != nil {
			s.metrics.RateLimitBlocks.WithLabelValues(cfg.Tier.String()).Inc()
		}
		s.logger.Info("rate limit exceeded",
			"tier", cfg.Tier,
			"limit", cfg.MaxRequests,
			"retry_after", result.RetryAfter,
		)
	}

	return result
}

// Message returns the client-facing message configured for a tier.
func (s *Service) Message(tier models.Tier) string {
	return s.config.GetTier(tier).Message
}

// Reset clears the counter for one client in one tier. Administrative
// operation, used to unblock a client after a false positive.
func (s *Service) Reset(ctx context.Context, tier models.Tier, clientIP, userAgent, sessionToken string) error {
	cfg := s.config.GetTier(tier)
	key := models.NewKey(cfg.Tier, clientIP, userAgent, sessionToken)
	return s.store.Reset(ctx, key.String())
}

// Block saturates a client's bucket so every request is rejected until the
// window elapses. Administrative operation for abusive clients.
func (s *Service) Block(ctx context.Context, tier models.Tier, clientIP, userAgent, sessionToken string) error {
	cfg := s.config.GetTier(tier)
	key := models.NewKey(cfg.Tier, clientIP, userAgent, sessionToken)
	return s.store.Fill(ctx, key.String(), cfg.MaxRequests, cfg.Window)
}

// Stats reports a client's current in-window usage without consuming from it.
func (s *Service) Stats(ctx context.Context, tier models.Tier, clientIP, userAgent, sessionToken string) (*models.Stats, error) {
	cfg := s.config.GetTier(tier)
	key := models.NewKey(cfg.Tier, clientIP, userAgent, sessionToken)

	count, err := s.store.GetCurrentCount(ctx, key.String())
	if err != nil {
		return nil, err
	}
	return &models.Stats{
		Key:     key.String(),
		Count:   count,
		ResetAt: time.Now().Add(cfg.Window),
	}, nil
}
