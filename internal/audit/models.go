package audit

import "time"

// Event is emitted from gate and session logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp      time.Time
	UserID         string
	Action         string
	Classification string
	Path           string
	ClientIP       string
	Outcome        string
	Reason         string
}

type AuditEvent string

const (
	EventSessionCreated     AuditEvent = "session_created"
	EventSessionRefreshed   AuditEvent = "session_refreshed"
	EventSessionDestroyed   AuditEvent = "session_destroyed"
	EventAuthFailed         AuditEvent = "auth_failed"
	EventTokenRevoked       AuditEvent = "token_revoked"
	EventTokensRevokedAll   AuditEvent = "tokens_revoked_all"
	EventAccessDenied       AuditEvent = "access_denied"
	EventOnboardingRedirect AuditEvent = "onboarding_redirect"
)
