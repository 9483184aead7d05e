package config

import (
	"os"
	"time"

	dErrors "aulagate/pkg/domain-errors"
)

// Server captures process-level configuration for the gate service.
type Server struct {
	Addr              string
	Environment       string // "development" or "production"
	SessionSigningKey string // HS256 key for the legacy session credential
	UpstreamURL       string // protected application behind the gate; empty enables the echo handler

	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	RememberMeTokenTTL time.Duration
	InactivityCeiling  time.Duration

	CleanupInterval time.Duration
	SweepInterval   time.Duration
}

const (
	defaultAddr            = ":8080"
	defaultAccessTTL       = 30 * time.Minute
	defaultRefreshTTL      = 7 * 24 * time.Hour
	defaultRememberTTL     = 30 * 24 * time.Hour
	defaultInactivity      = 24 * time.Hour
	defaultCleanupInterval = time.Hour
	defaultSweepInterval   = 5 * time.Minute
)

// FromEnv builds a Server config from environment variables so main stays lean.
// A missing signing key is fatal in production: the process must not start
// with guessable session credentials.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:               envOr("GATE_ADDR", defaultAddr),
		Environment:        envOr("GATE_ENV", "development"),
		SessionSigningKey:  os.Getenv("SESSION_SIGNING_KEY"),
		UpstreamURL:        os.Getenv("GATE_UPSTREAM_URL"),
		AccessTokenTTL:     durationOr("ACCESS_TOKEN_TTL", defaultAccessTTL),
		RefreshTokenTTL:    durationOr("REFRESH_TOKEN_TTL", defaultRefreshTTL),
		RememberMeTokenTTL: durationOr("REMEMBER_ME_TOKEN_TTL", defaultRememberTTL),
		InactivityCeiling:  durationOr("INACTIVITY_CEILING", defaultInactivity),
		CleanupInterval:    durationOr("TOKEN_CLEANUP_INTERVAL", defaultCleanupInterval),
		SweepInterval:      durationOr("RATE_LIMIT_SWEEP_INTERVAL", defaultSweepInterval),
	}

	if cfg.SessionSigningKey == "" {
		if cfg.IsProduction() {
			return Server{}, dErrors.New(dErrors.CodeConfiguration, "SESSION_SIGNING_KEY is required in production")
		}
		cfg.SessionSigningKey = "dev-signing-key-change-in-production"
	}

	return cfg, nil
}

// IsProduction reports whether the process runs with production hardening
// (Secure cookies, mandatory secrets).
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
