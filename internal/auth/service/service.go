// Package service implements token lifecycle management: session
// establishment, silent refresh, revocation, and maintenance.
package service

import (
	"context"
	"log/slog"
	"time"

	"aulagate/internal/audit"
	"aulagate/internal/auth/store/accesstoken"
	"aulagate/internal/auth/store/refreshtoken"
	"aulagate/internal/platform/metrics"
)

const (
	defaultAccessTTL     = 30 * time.Minute
	defaultRefreshTTL    = 7 * 24 * time.Hour
	defaultRememberMeTTL = 30 * 24 * time.Hour

	// defaultInactivityCeiling bounds how long a refresh credential may sit
	// unused before it is revoked on its next presentation.
	defaultInactivityCeiling = 24 * time.Hour

	// revokedGrace keeps revoked rows around after revocation so security
	// review can inspect them before cleanup removes the evidence.
	revokedGrace = 7 * 24 * time.Hour
)

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// TokenService owns the access/refresh credential lifecycle.
type TokenService struct {
	refreshTokens refreshtoken.Store
	accessTokens  accesstoken.Store

	accessTTL         time.Duration
	refreshTTL        time.Duration
	rememberMeTTL     time.Duration
	inactivityCeiling time.Duration

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*TokenService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *TokenService) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *TokenService) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *TokenService) {
		s.metrics = m
	}
}

// WithAccessTTL configures the access token lifetime.
// If not set or set to zero/negative, defaults to 30 minutes.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *TokenService) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithRefreshTTL configures the standard and remember-me refresh lifetimes.
func WithRefreshTTL(standard, rememberMe time.Duration) Option {
	return func(s *TokenService) {
		if standard > 0 {
			s.refreshTTL = standard
		}
		if rememberMe > 0 {
			s.rememberMeTTL = rememberMe
		}
	}
}

// WithInactivityCeiling configures how long a refresh credential may sit
// unused before its next presentation revokes it.
func WithInactivityCeiling(ceiling time.Duration) Option {
	return func(s *TokenService) {
		if ceiling > 0 {
			s.inactivityCeiling = ceiling
		}
	}
}

func NewTokenService(refreshTokens refreshtoken.Store, accessTokens accesstoken.Store, opts ...Option) *TokenService {
	svc := &TokenService{
		refreshTokens:     refreshTokens,
		accessTokens:      accessTokens,
		accessTTL:         defaultAccessTTL,
		refreshTTL:        defaultRefreshTTL,
		rememberMeTTL:     defaultRememberMeTTL,
		inactivityCeiling: defaultInactivityCeiling,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

func (s *TokenService) logAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.Warn("failed to emit audit event", "action", event.Action, "error", err)
	}
}

func (s *TokenService) updateActiveGauge(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	count, err := s.refreshTokens.CountActive(ctx, time.Now())
	if err != nil {
		return
	}
	s.metrics.ActiveRefreshTokens.Set(float64(count))
}
