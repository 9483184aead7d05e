package service

import (
	"context"
	"errors"
	"time"

	"aulagate/internal/audit"
	"aulagate/internal/auth/models"
	"aulagate/internal/auth/store/refreshtoken"
	dErrors "aulagate/pkg/domain-errors"
)

// RevokeToken soft-deletes one refresh credential. Re-revoking an already
// revoked credential is a no-op, not an error.
func (s *TokenService) RevokeToken(ctx context.Context, credentialID string, reason models.RevocationReason) error {
	cred, err := s.refreshTokens.FindByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, refreshtoken.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "refresh credential not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load refresh credential")
	}

	if !cred.Revoke(time.Now(), reason) {
		return nil
	}
	if err := s.refreshTokens.Update(ctx, cred); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist revocation")
	}

	s.logger.Info("refresh credential revoked",
		"credential_id", credentialID,
		"user_id", cred.UserID,
		"reason", reason,
	)
	s.logAudit(ctx, audit.Event{
		UserID:  cred.UserID,
		Action:  string(audit.EventTokenRevoked),
		Outcome: "success",
		Reason:  string(reason),
	})
	if s.metrics != nil {
		s.metrics.TokensRevoked.WithLabelValues(string(reason)).Inc()
	}
	s.updateActiveGauge(ctx)
	return nil
}

// RevokeAllUserTokens revokes every refresh credential a user holds and
// drops their live access records. Used for logout-everywhere and security
// incidents.
func (s *TokenService) RevokeAllUserTokens(ctx context.Context, userID string, reason models.RevocationReason) (int, error) {
	creds, err := s.refreshTokens.ListByUser(ctx, userID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list refresh credentials")
	}

	now := time.Now()
	revoked := 0
	for _, cred := range creds {
		if !cred.Revoke(now, reason) {
			continue
		}
		if err := s.refreshTokens.Update(ctx, cred); err != nil {
			return revoked, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist revocation")
		}
		revoked++
		if s.metrics != nil {
			s.metrics.TokensRevoked.WithLabelValues(string(reason)).Inc()
		}
	}

	if _, err := s.accessTokens.DeleteByUser(ctx, userID); err != nil {
		return revoked, dErrors.Wrap(err, dErrors.CodeInternal, "failed to drop access records")
	}

	s.logger.Info("all user tokens revoked",
		"user_id", userID,
		"revoked", revoked,
		"reason", reason,
	)
	s.logAudit(ctx, audit.Event{
		UserID:  userID,
		Action:  string(audit.EventTokensRevokedAll),
		Outcome: "success",
		Reason:  string(reason),
	})
	s.updateActiveGauge(ctx)
	return revoked, nil
}
