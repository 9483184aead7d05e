package service

import (
	"context"
	"log/slog"
	"time"

	"aulagate/internal/audit"
	"aulagate/internal/auth/jwtsession"
	"aulagate/internal/auth/models"
	"aulagate/internal/auth/store/accesstoken"
	"aulagate/internal/auth/store/user"
	"aulagate/internal/platform/metrics"
	dErrors "aulagate/pkg/domain-errors"
)

// Credential carries whatever the request presented. Either field may be
// empty; the access token takes precedence when both are present.
type Credential struct {
	AccessToken  string
	LegacyCookie string
}

func (c Credential) Empty() bool {
	return c.AccessToken == "" && c.LegacyCookie == ""
}

// Resolver turns a presented credential into a user identity with a
// normalized role. Every failure carries a distinct classification so audit
// logs can tell an absent cookie from a revoked session. Identity is always
// re-derived from the store; nothing is cached across requests.
type Resolver struct {
	accessTokens accesstoken.Store
	users        user.Store
	legacy       *jwtsession.Service

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type ResolverOption func(*Resolver)

func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithResolverAuditPublisher(publisher AuditPublisher) ResolverOption {
	return func(r *Resolver) {
		r.auditPublisher = publisher
	}
}

func WithResolverMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func NewResolver(accessTokens accesstoken.Store, users user.Store, legacy *jwtsession.Service, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		accessTokens: accessTokens,
		users:        users,
		legacy:       legacy,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Resolve runs the validation chain. It never returns an error: failures come
// back as an invalid identity carrying the classification of the first check
// that failed.
func (r *Resolver) Resolve(ctx context.Context, cred Credential, clientIP string) *models.ResolvedIdentity {
	if cred.Empty() {
		return r.failure(ctx, models.FailureNoCredential, "", clientIP, "no credential presented")
	}

	userID, classification, reason := r.resolveUserID(ctx, cred)
	if classification != models.FailureNone {
		return r.failure(ctx, classification, userID, clientIP, reason)
	}

	account, err := r.users.FindByID(ctx, userID)
	if err != nil {
		return r.failure(ctx, models.FailureUserNotFound, userID, clientIP, "owning user record missing")
	}

	role, err := models.NormalizeRole(account.Role)
	if err != nil {
		return r.failure(ctx, models.FailureInvalidRole, userID, clientIP, "stored role is not in the closed set")
	}

	return &models.ResolvedIdentity{
		UserID: userID,
		Role:   role,
		Valid:  true,
	}
}

// resolveUserID maps the presented credential to its owning user. Expiry is
// compared against the current instant at evaluation time, not a cached
// value.
func (r *Resolver) resolveUserID(ctx context.Context, cred Credential) (userID string, classification models.FailureClassification, reason string) {
	if cred.AccessToken != "" {
		record, err := r.accessTokens.Find(ctx, cred.AccessToken)
		if err != nil {
			return "", models.FailureInvalidCredential, "access token not recognized"
		}
		if record.IsExpired(time.Now()) {
			return record.UserID, models.FailureExpired, "access token expired"
		}
		return record.UserID, models.FailureNone, ""
	}

	session, err := r.legacy.Resolve(ctx, cred.LegacyCookie)
	if err != nil {
		switch dErrors.CodeOf(err) {
		case dErrors.CodeCredentialRevoked:
			return "", models.FailureRevoked, "legacy session revoked"
		case dErrors.CodeCredentialExpired:
			return "", models.FailureExpired, "legacy session expired"
		default:
			return "", models.FailureInvalidCredential, "legacy session invalid"
		}
	}
	return session.UserID, models.FailureNone, ""
}

// failure records a classified security event and returns the invalid
// identity. Severity scales with classification: a missing cookie is routine,
// a revoked credential or unknown role is not.
func (r *Resolver) failure(ctx context.Context, classification models.FailureClassification, userID, clientIP, reason string) *models.ResolvedIdentity {
	attrs := []any{
		"classification", classification,
		"reason", reason,
	}
	if userID != "" {
		attrs = append(attrs, "user_id", userID)
	}
	switch classification.Severity() {
	case "high":
		r.logger.Warn("credential resolution failed", attrs...)
	case "medium":
		r.logger.Info("credential resolution failed", attrs...)
	default:
		r.logger.Debug("credential resolution failed", attrs...)
	}

	if classification != models.FailureNoCredential && r.auditPublisher != nil {
		event := audit.Event{
			UserID:         userID,
			Action:         string(audit.EventAuthFailed),
			Classification: string(classification),
			ClientIP:       clientIP,
			Outcome:        "denied",
			Reason:         reason,
		}
		if err := r.auditPublisher.Emit(ctx, event); err != nil {
			r.logger.Warn("failed to emit audit event", "action", event.Action, "error", err)
		}
	}
	if r.metrics != nil {
		r.metrics.AuthFailures.WithLabelValues(string(classification)).Inc()
	}

	return &models.ResolvedIdentity{
		Valid:          false,
		Classification: classification,
	}
}
