package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gate service.
type Metrics struct {
	GateDecisions         *prometheus.CounterVec
	RateLimitBlocks       *prometheus.CounterVec
	SilentRefreshes       prometheus.Counter
	SilentRefreshFailures prometheus.Counter
	AuthFailures          *prometheus.CounterVec
	SessionsCreated       prometheus.Counter
	TokensRevoked         *prometheus.CounterVec
	ActiveRefreshTokens   prometheus.Gauge
	OnboardingRedirects   prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		GateDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aulagate_decisions_total",
			Help: "Gate decisions per request, labeled by outcome (forward, redirect, blocked)",
		}, []string{"outcome"}),
		RateLimitBlocks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aulagate_rate_limit_blocks_total",
			Help: "Requests blocked by the rate limiter, labeled by tier",
		}, []string{"tier"}),
		SilentRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aulagate_silent_refreshes_total",
			Help: "Access credentials minted via silent refresh",
		}),
		SilentRefreshFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aulagate_silent_refresh_failures_total",
			Help: "Silent refresh attempts that forced re-authentication",
		}),
		AuthFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aulagate_auth_failures_total",
			Help: "Session resolution failures, labeled by classification",
		}, []string{"classification"}),
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aulagate_sessions_created_total",
			Help: "Total sessions established",
		}),
		TokensRevoked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aulagate_tokens_revoked_total",
			Help: "Refresh credentials revoked, labeled by reason",
		}, []string{"reason"}),
		ActiveRefreshTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "aulagate_active_refresh_tokens",
			Help: "Current number of non-revoked refresh credentials",
		}),
		OnboardingRedirects: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aulagate_onboarding_redirects_total",
			Help: "Authenticated requests redirected to onboarding",
		}),
	}
}
