package config

import (
	"strings"
	"time"

	"aulagate/internal/ratelimit/models"
)

// Config holds rate limiting configuration: one explicit tier per route class.
type Config struct {
	Tiers map[models.Tier]models.TierConfig
}

// DefaultConfig returns the production tier table. The table is static and
// reviewed alongside the route policy as part of the security surface.
func DefaultConfig() *Config {
	return &Config{
		Tiers: map[models.Tier]models.TierConfig{
			models.TierStrictAuth: {
				Tier:        models.TierStrictAuth,
				MaxRequests: 5,
				Window:      15 * time.Minute,
				Message:     "Too many authentication attempts. Please try again later.",
			},
			models.TierGeneralAPI: {
				Tier:        models.TierGeneralAPI,
				MaxRequests: 100,
				Window:      time.Minute,
				Message:     "Too many requests. Please slow down.",
			},
			models.TierAdmin: {
				Tier:        models.TierAdmin,
				MaxRequests: 50,
				Window:      time.Minute,
				Message:     "Too many administrative requests.",
			},
			models.TierCreate: {
				Tier:        models.TierCreate,
				MaxRequests: 10,
				Window:      time.Hour,
				Message:     "Creation limit reached. Please try again later.",
			},
			models.TierUpload: {
				Tier:        models.TierUpload,
				MaxRequests: 30,
				Window:      time.Hour,
				Message:     "Upload limit reached. Please try again later.",
			},
		},
	}
}

// GetTier returns the configuration for a tier, falling back to the general
// API tier for unknown values so a routing mistake never disables limiting.
func (c *Config) GetTier(tier models.Tier) models.TierConfig {
	if cfg, ok := c.Tiers[tier]; ok {
		return cfg
	}
	return c.Tiers[models.TierGeneralAPI]
}

// TierForPath classifies a request path into a rate limit tier. Longer, more
// specific matches are checked before the general fallback.
func TierForPath(path, method string) models.Tier {
	switch {
	case hasAnyPrefix(path, "/auth/login", "/auth/register", "/auth/reset-password", "/api/auth/login", "/api/auth/register"):
		return models.TierStrictAuth
	case hasAnyPrefix(path, "/admin", "/api/admin"):
		return models.TierAdmin
	case hasAnyPrefix(path, "/api/upload", "/upload"):
		return models.TierUpload
	case (method == "POST" || method == "PUT") && hasAnyPrefix(path, "/courses/create", "/api/courses", "/api/posts", "/api/communities"):
		return models.TierCreate
	default:
		return models.TierGeneralAPI
	}
}

func hasAnyPrefix(path string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
