package models

import (
	"time"

	dErrors "aulagate/pkg/domain-errors"
)

// Tier names a rate limit class applied to a group of routes.
type Tier string

const (
	// TierStrictAuth: login and credential endpoints (5 req / 15 min)
	TierStrictAuth Tier = "strict_auth"
	// TierGeneralAPI: everything without a stricter class (100 req / min)
	TierGeneralAPI Tier = "general_api"
	// TierAdmin: administrative routes (50 req / min)
	TierAdmin Tier = "admin"
	// TierCreate: content creation routes (10 req / hour)
	TierCreate Tier = "create"
	// TierUpload: file upload routes (30 req / hour)
	TierUpload Tier = "upload"
)

func (t Tier) IsValid() bool {
	switch t {
	case TierStrictAuth, TierGeneralAPI, TierAdmin, TierCreate, TierUpload:
		return true
	}
	return false
}

func (t Tier) String() string {
	return string(t)
}

// TierConfig is an explicit (limit, window, message) triple for one tier.
// The message is surfaced to clients in the 429 body.
type TierConfig struct {
	Tier        Tier          `json:"tier"`
	MaxRequests int           `json:"max_requests"`
	Window      time.Duration `json:"window"`
	Message     string        `json:"message"`
}

// NewTierConfig validates and builds a tier configuration.
func NewTierConfig(tier Tier, maxRequests int, window time.Duration, message string) (TierConfig, error) {
	if !tier.IsValid() {
		return TierConfig{}, dErrors.New(dErrors.CodeValidation, "invalid rate limit tier")
	}
	if maxRequests <= 0 {
		return TierConfig{}, dErrors.New(dErrors.CodeValidation, "max_requests must be positive")
	}
	if window <= 0 {
		return TierConfig{}, dErrors.New(dErrors.CodeValidation, "window must be positive")
	}
	return TierConfig{Tier: tier, MaxRequests: maxRequests, Window: window, Message: message}, nil
}

// Result is the outcome of a single rate limit check. Checks never error;
// callers always get a result they can act on.
type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// Stats reports the live state of one bucket without consuming from it.
type Stats struct {
	Key     string    `json:"key"`
	Count   int       `json:"count"`
	ResetAt time.Time `json:"reset_at"`
}
