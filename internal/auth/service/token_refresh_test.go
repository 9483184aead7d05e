package service

import (
	"time"

	"aulagate/internal/audit"
	"aulagate/internal/auth/models"
	dErrors "aulagate/pkg/domain-errors"
)

func (s *TokenServiceSuite) TestRefreshSession_MintsNewAccessOnly() {
	pair, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	s.ageCredential(s.onlyCredential("u-1").ID, 10*time.Minute)

	result, err := s.service.RefreshSession(s.ctx, pair.RefreshToken, s.device())
	s.Require().NoError(err)
	s.Equal("u-1", result.UserID)
	s.NotEmpty(result.AccessToken)
	s.NotEqual(pair.AccessToken, result.AccessToken)

	// The refresh credential remains valid and unrotated.
	cred := s.onlyCredential("u-1")
	s.False(cred.Revoked)
	again, err := s.service.RefreshSession(s.ctx, pair.RefreshToken, s.device())
	s.Require().NoError(err)
	s.Equal("u-1", again.UserID)
}

func (s *TokenServiceSuite) TestRefreshSession_SlidesActivity() {
	pair, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	credID := s.onlyCredential("u-1").ID
	s.ageCredential(credID, 10*time.Minute)

	_, err = s.service.RefreshSession(s.ctx, pair.RefreshToken, s.device())
	s.Require().NoError(err)

	cred, err := s.refreshStore.FindByID(s.ctx, credID)
	s.Require().NoError(err)
	s.WithinDuration(time.Now(), cred.LastUsedAt, 5*time.Second)
}

func (s *TokenServiceSuite) TestRefreshSession_InactivityRevokes() {
	pair, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	credID := s.onlyCredential("u-1").ID
	s.ageCredential(credID, 25*time.Hour)

	_, err = s.service.RefreshSession(s.ctx, pair.RefreshToken, s.device())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSessionInactive),
		"inactivity must be classified distinctly from plain invalidity")

	cred, err := s.refreshStore.FindByID(s.ctx, credID)
	s.Require().NoError(err)
	s.True(cred.Revoked)
	s.Equal(models.RevocationReasonInactivity, cred.RevocationReason)

	// Any subsequent use of the same secret fails; the record is no longer
	// in the active candidate set.
	_, err = s.service.RefreshSession(s.ctx, pair.RefreshToken, s.device())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredential))
}

func (s *TokenServiceSuite) TestRefreshSession_MatchesPlaintextAgainstStoredHash() {
	pair, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	// Only the hash is persisted. Presenting the hash itself must fail;
	// presenting the issued secret must succeed.
	cred := s.onlyCredential("u-1")
	s.NotEqual(pair.RefreshToken, cred.SecretHash)

	_, err = s.service.RefreshSession(s.ctx, cred.SecretHash, s.device())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredential))

	result, err := s.service.RefreshSession(s.ctx, pair.RefreshToken, s.device())
	s.Require().NoError(err)
	s.Equal("u-1", result.UserID)
}

func (s *TokenServiceSuite) TestRefreshSession_ConfiguredInactivityCeiling() {
	svc := NewTokenService(s.refreshStore, s.accessStore,
		WithInactivityCeiling(time.Hour),
	)

	pair, err := svc.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	s.ageCredential(s.onlyCredential("u-1").ID, 2*time.Hour)

	_, err = svc.RefreshSession(s.ctx, pair.RefreshToken, s.device())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSessionInactive))
}

func (s *TokenServiceSuite) TestRefreshSession_FlagsDeviceMismatch() {
	auditStore := audit.NewInMemoryStore()
	svc := NewTokenService(s.refreshStore, s.accessStore,
		WithAuditPublisher(audit.NewPublisher(auditStore)),
	)

	pair, err := svc.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	changed := s.device()
	changed.Fingerprint = "fp-other"

	// A changed device shape is recorded for review, not rejected.
	result, err := svc.RefreshSession(s.ctx, pair.RefreshToken, changed)
	s.Require().NoError(err)
	s.Equal("u-1", result.UserID)

	events, err := auditStore.ListByUser(s.ctx, "u-1")
	s.Require().NoError(err)
	var flagged bool
	for _, event := range events {
		if event.Outcome == "flagged" && event.Reason == "device_fingerprint_mismatch" {
			flagged = true
		}
	}
	s.True(flagged, "mismatched fingerprint must leave an audit trail")
}

func (s *TokenServiceSuite) TestRefreshSession_UnknownSecret() {
	_, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	_, err = s.service.RefreshSession(s.ctx, "not-a-real-secret", s.device())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredential))
}

func (s *TokenServiceSuite) TestRefreshSession_EmptySecret() {
	_, err := s.service.RefreshSession(s.ctx, "", s.device())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNoCredential))
}

func (s *TokenServiceSuite) TestRefreshSession_RevokedCredentialNotMatched() {
	pair, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	s.Require().NoError(s.service.RevokeToken(s.ctx, s.onlyCredential("u-1").ID, models.RevocationReasonLogout))

	_, err = s.service.RefreshSession(s.ctx, pair.RefreshToken, s.device())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredential))
}
