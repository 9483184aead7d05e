package service

import (
	"context"
	"sort"
	"time"

	"aulagate/internal/audit"
	"aulagate/internal/auth/models"
	dErrors "aulagate/pkg/domain-errors"
)

// ActiveSessions lists a user's live refresh credentials for session
// management UI, newest first. currentCredentialID marks which entry belongs
// to the requesting client.
func (s *TokenService) ActiveSessions(ctx context.Context, userID, currentCredentialID string) ([]models.SessionSummary, error) {
	creds, err := s.refreshTokens.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list refresh credentials")
	}

	now := time.Now()
	summaries := make([]models.SessionSummary, 0, len(creds))
	for _, cred := range creds {
		if !cred.IsActive(now) {
			continue
		}
		summaries = append(summaries, models.SessionSummary{
			ID:            cred.ID,
			DeviceDisplay: cred.DeviceDisplay,
			ClientIP:      cred.ClientIP,
			CreatedAt:     cred.CreatedAt,
			LastUsedAt:    cred.LastUsedAt,
			ExpiresAt:     cred.ExpiresAt,
			Current:       cred.ID == currentCredentialID,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastUsedAt.After(summaries[j].LastUsedAt)
	})
	return summaries, nil
}

// DestroySession revokes one of the user's own sessions. Ownership is
// checked so a user cannot destroy another user's session by guessing IDs.
func (s *TokenService) DestroySession(ctx context.Context, userID, credentialID string) error {
	cred, err := s.refreshTokens.FindByID(ctx, credentialID)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	if cred.UserID != userID {
		return dErrors.New(dErrors.CodeForbidden, "session does not belong to user")
	}
	if err := s.RevokeToken(ctx, credentialID, models.RevocationReasonLogout); err != nil {
		return err
	}

	s.logAudit(ctx, audit.Event{
		UserID:  userID,
		Action:  string(audit.EventSessionDestroyed),
		Outcome: "success",
		Reason:  "user_requested",
	})
	return nil
}
