package service

import (
	"context"
	"time"

	"aulagate/internal/audit"
	"aulagate/internal/auth/device"
	"aulagate/internal/auth/models"
	dErrors "aulagate/pkg/domain-errors"
	"aulagate/pkg/secrets"
)

// RefreshResult is returned on a successful silent refresh. Only a new access
// secret is minted; the presented refresh credential stays valid and is not
// rotated.
type RefreshResult struct {
	UserID          string
	AccessToken     string
	AccessExpiresAt time.Time
}

// RefreshSession verifies a presented refresh secret and mints a new access
// token. Because only hashes are stored, the secret is verified against every
// active credential until a match is found. A matched credential unused for
// longer than the inactivity ceiling is revoked and the refresh fails with a
// classification distinct from plain invalidity, so the caller can message
// the user differently.
func (s *TokenService) RefreshSession(ctx context.Context, presentedSecret string, deviceCtx models.DeviceContext) (*RefreshResult, error) {
	if presentedSecret == "" {
		return nil, dErrors.New(dErrors.CodeNoCredential, "no refresh token")
	}

	now := time.Now()
	candidates, err := s.refreshTokens.ListActive(ctx, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load refresh credentials")
	}

	var matched *models.RefreshCredential
	for _, cred := range candidates {
		if secrets.Verify(presentedSecret, cred.SecretHash) == nil {
			matched = cred
			break
		}
	}
	if matched == nil {
		s.logAudit(ctx, audit.Event{
			Action:         string(audit.EventAuthFailed),
			Classification: string(models.FailureInvalidCredential),
			ClientIP:       deviceCtx.ClientIP,
			Outcome:        "denied",
			Reason:         "refresh token not recognized",
		})
		return nil, dErrors.New(dErrors.CodeInvalidCredential, "refresh token is invalid or expired")
	}

	if matched.InactiveFor(now) > s.inactivityCeiling {
		matched.Revoke(now, models.RevocationReasonInactivity)
		if err := s.refreshTokens.Update(ctx, matched); err != nil {
			s.logger.Error("failed to persist inactivity revocation",
				"credential_id", matched.ID,
				"error", err,
			)
		}
		s.logAudit(ctx, audit.Event{
			UserID:         matched.UserID,
			Action:         string(audit.EventTokenRevoked),
			Classification: string(models.FailureInactivity),
			ClientIP:       deviceCtx.ClientIP,
			Outcome:        "denied",
			Reason:         string(models.RevocationReasonInactivity),
		})
		if s.metrics != nil {
			s.metrics.TokensRevoked.WithLabelValues(string(models.RevocationReasonInactivity)).Inc()
		}
		return nil, dErrors.New(dErrors.CodeSessionInactive, "session expired due to inactivity")
	}

	// A refresh presented from a different device shape than the one that
	// received the credential is a theft signal. Browser upgrades shift the
	// fingerprint too, so the mismatch is recorded for review rather than
	// ending the session.
	if matched.DeviceFingerprint != "" && deviceCtx.Fingerprint != "" &&
		!device.CompareFingerprints(matched.DeviceFingerprint, deviceCtx.Fingerprint) {
		s.logger.Warn("refresh presented from a different device",
			"user_id", matched.UserID,
			"credential_id", matched.ID,
		)
		s.logAudit(ctx, audit.Event{
			UserID:   matched.UserID,
			Action:   string(audit.EventSessionRefreshed),
			ClientIP: deviceCtx.ClientIP,
			Outcome:  "flagged",
			Reason:   "device_fingerprint_mismatch",
		})
	}

	// Sliding activity extension. The refresh secret itself is deliberately
	// not rotated here; only the access secret is reissued.
	matched.RecordUse(now)
	if err := s.refreshTokens.Update(ctx, matched); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record refresh activity")
	}

	accessSecret, err := secrets.Generate()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate access token")
	}
	access := &models.AccessRecord{
		Token:     accessSecret,
		UserID:    matched.UserID,
		ExpiresAt: now.Add(s.accessTTL),
		CreatedAt: now,
	}
	if err := s.accessTokens.Create(ctx, access); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist access record")
	}

	s.logger.Info("session refreshed", "user_id", matched.UserID)
	s.logAudit(ctx, audit.Event{
		UserID:   matched.UserID,
		Action:   string(audit.EventSessionRefreshed),
		ClientIP: deviceCtx.ClientIP,
		Outcome:  "success",
	})

	return &RefreshResult{
		UserID:          matched.UserID,
		AccessToken:     accessSecret,
		AccessExpiresAt: access.ExpiresAt,
	}, nil
}
