package models

import (
	"time"

	dErrors "aulagate/pkg/domain-errors"
)

// This file contains pure domain models for authentication: entities
// that should not depend on transport or HTTP-specific concerns.

// User represents an end-user in the auth domain.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string // raw stored value, normalize before authorization
	PasswordHash string // bcrypt hash, never the plaintext
	CreatedAt    time.Time
}

// RevocationReason records why a refresh credential was revoked.
type RevocationReason string

const (
	RevocationReasonLogout     RevocationReason = "logout"
	RevocationReasonInactivity RevocationReason = "inactivity"
	RevocationReasonSecurity   RevocationReason = "security"
)

// RefreshCredential is the durable record backing a refresh token. Only a
// one-way hash of the secret is stored; the plaintext exists transiently at
// issuance to hand back to the client.
type RefreshCredential struct {
	ID         string
	UserID     string
	SecretHash string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	LastUsedAt time.Time

	// Issuing context, for session management UI and anomaly review.
	DeviceFingerprint string
	DeviceDisplay     string
	ClientIP          string
	UserAgent         string

	Revoked          bool
	RevokedAt        *time.Time
	RevocationReason RevocationReason
}

func (c *RefreshCredential) IsExpired(at time.Time) bool {
	return at.After(c.ExpiresAt)
}

// IsActive reports whether the credential can still participate in refresh.
func (c *RefreshCredential) IsActive(at time.Time) bool {
	return !c.Revoked && !c.IsExpired(at)
}

// Revoke transitions the credential to revoked state. Returns true if the
// transition occurred, false if already revoked (idempotent).
func (c *RefreshCredential) Revoke(at time.Time, reason RevocationReason) bool {
	if c.Revoked {
		return false
	}
	c.Revoked = true
	c.RevokedAt = &at
	c.RevocationReason = reason
	return true
}

// InactiveFor reports how long the credential has gone unused.
func (c *RefreshCredential) InactiveFor(at time.Time) time.Duration {
	return at.Sub(c.LastUsedAt)
}

// RecordUse slides the activity timestamp forward. Older timestamps never
// overwrite newer ones.
func (c *RefreshCredential) RecordUse(at time.Time) {
	if at.After(c.LastUsedAt) {
		c.LastUsedAt = at
	}
}

// AccessRecord is the ephemeral record backing a short-lived access token.
type AccessRecord struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (a *AccessRecord) IsExpired(at time.Time) bool {
	return at.After(a.ExpiresAt)
}

// DeviceContext carries the client characteristics captured at issuance.
type DeviceContext struct {
	Fingerprint string
	Display     string
	ClientIP    string
	UserAgent   string
}

// TokenPair is handed back to the caller after session establishment. The
// secrets are plaintext here and nowhere else.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// SessionSummary describes one active refresh credential for session
// management responses, without exposing any secret material.
type SessionSummary struct {
	ID            string    `json:"id"`
	DeviceDisplay string    `json:"device"`
	ClientIP      string    `json:"client_ip"`
	CreatedAt     time.Time `json:"created_at"`
	LastUsedAt    time.Time `json:"last_used_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	Current       bool      `json:"current"`
}

// LegacySession backs the signed session cookie from the previous auth
// scheme. Still honored during the migration window; the cookie carries a
// JWT whose jti claim points at one of these records.
type LegacySession struct {
	ID        string
	UserID    string
	JTI       string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

func (s *LegacySession) IsExpired(at time.Time) bool {
	return at.After(s.ExpiresAt)
}

func (s *LegacySession) IsRevoked() bool {
	return s.RevokedAt != nil
}

// Revoke marks the session revoked. Idempotent.
func (s *LegacySession) Revoke(at time.Time) bool {
	if s.RevokedAt != nil {
		return false
	}
	s.RevokedAt = &at
	return true
}

// ErrRoleUnknown is returned by NormalizeRole for values outside the closed set.
var ErrRoleUnknown = dErrors.New(dErrors.CodeInvalidRole, "role is not recognized")
