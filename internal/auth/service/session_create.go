package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"aulagate/internal/audit"
	"aulagate/internal/auth/models"
	dErrors "aulagate/pkg/domain-errors"
	"aulagate/pkg/secrets"
)

// CreateSession establishes a new session for a user: two independent random
// opaque secrets, one short-lived access record and one durable refresh
// credential. Only the refresh secret's hash is persisted; the plaintext pair
// is returned once for cookie transport and never again.
func (s *TokenService) CreateSession(ctx context.Context, userID string, rememberMe bool, device models.DeviceContext) (*models.TokenPair, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "user id is required")
	}

	accessSecret, err := secrets.Generate()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate access token")
	}
	refreshSecret, err := secrets.Generate()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate refresh token")
	}
	refreshHash, err := secrets.Hash(refreshSecret)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash refresh token")
	}

	now := time.Now()
	refreshTTL := s.refreshTTL
	if rememberMe {
		refreshTTL = s.rememberMeTTL
	}

	cred := &models.RefreshCredential{
		ID:                uuid.NewString(),
		UserID:            userID,
		SecretHash:        refreshHash,
		ExpiresAt:         now.Add(refreshTTL),
		CreatedAt:         now,
		LastUsedAt:        now,
		DeviceFingerprint: device.Fingerprint,
		DeviceDisplay:     device.Display,
		ClientIP:          device.ClientIP,
		UserAgent:         device.UserAgent,
	}
	if err := s.refreshTokens.Create(ctx, cred); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist refresh credential")
	}

	access := &models.AccessRecord{
		Token:     accessSecret,
		UserID:    userID,
		ExpiresAt: now.Add(s.accessTTL),
		CreatedAt: now,
	}
	if err := s.accessTokens.Create(ctx, access); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist access record")
	}

	s.logger.Info("session created",
		"user_id", userID,
		"remember_me", rememberMe,
		"device", device.Display,
	)
	s.logAudit(ctx, audit.Event{
		UserID:   userID,
		Action:   string(audit.EventSessionCreated),
		ClientIP: device.ClientIP,
		Outcome:  "success",
	})
	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
	}
	s.updateActiveGauge(ctx)

	return &models.TokenPair{
		AccessToken:      accessSecret,
		RefreshToken:     refreshSecret,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: cred.ExpiresAt,
	}, nil
}
