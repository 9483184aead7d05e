package models

import dErrors "aulagate/pkg/domain-errors"

// FailureClassification distinguishes why credential resolution failed, so
// audit logs and client messaging can treat an absent cookie differently from
// a revoked session.
type FailureClassification string

const (
	FailureNone              FailureClassification = ""
	FailureNoCredential      FailureClassification = "no_credential"
	FailureInvalidCredential FailureClassification = "invalid_credential"
	FailureRevoked           FailureClassification = "credential_revoked"
	FailureExpired           FailureClassification = "credential_expired"
	FailureInactivity        FailureClassification = "session_inactive"
	FailureUserNotFound      FailureClassification = "user_not_found"
	FailureInvalidRole       FailureClassification = "invalid_role"
)

// Severity ranks classifications for log level selection. Role and revocation
// failures indicate possible misuse; a missing cookie is routine traffic.
func (c FailureClassification) Severity() string {
	switch c {
	case FailureRevoked, FailureInvalidRole:
		return "high"
	case FailureExpired, FailureInactivity, FailureUserNotFound, FailureInvalidCredential:
		return "medium"
	default:
		return "low"
	}
}

// ClassificationOf maps a resolution error's domain code to its classification.
// Unclassified errors collapse to invalid-credential so callers fail closed.
func ClassificationOf(err error) FailureClassification {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNoCredential:
		return FailureNoCredential
	case dErrors.CodeCredentialRevoked:
		return FailureRevoked
	case dErrors.CodeCredentialExpired:
		return FailureExpired
	case dErrors.CodeSessionInactive:
		return FailureInactivity
	case dErrors.CodeUserNotFound:
		return FailureUserNotFound
	case dErrors.CodeInvalidRole:
		return FailureInvalidRole
	default:
		return FailureInvalidCredential
	}
}

// ResolvedIdentity is the per-request outcome of credential resolution. It is
// always re-derived from the durable store, never cached across requests.
type ResolvedIdentity struct {
	UserID         string
	Role           Role
	Valid          bool
	Classification FailureClassification
}
