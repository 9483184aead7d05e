package service

import (
	"time"

	"aulagate/internal/auth/models"
	dErrors "aulagate/pkg/domain-errors"
)

func (s *TokenServiceSuite) TestRevokeToken_Idempotent() {
	_, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)
	credID := s.onlyCredential("u-1").ID

	s.Require().NoError(s.service.RevokeToken(s.ctx, credID, models.RevocationReasonLogout))

	cred, err := s.refreshStore.FindByID(s.ctx, credID)
	s.Require().NoError(err)
	s.True(cred.Revoked)
	revokedAt := *cred.RevokedAt

	// Re-revoking is a no-op and preserves the original stamp.
	s.Require().NoError(s.service.RevokeToken(s.ctx, credID, models.RevocationReasonSecurity))
	cred, err = s.refreshStore.FindByID(s.ctx, credID)
	s.Require().NoError(err)
	s.Equal(models.RevocationReasonLogout, cred.RevocationReason)
	s.Equal(revokedAt, *cred.RevokedAt)
}

func (s *TokenServiceSuite) TestRevokeToken_NotFound() {
	err := s.service.RevokeToken(s.ctx, "ghost", models.RevocationReasonLogout)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *TokenServiceSuite) TestRevokeAllUserTokens() {
	_, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)
	_, err = s.service.CreateSession(s.ctx, "u-1", true, s.device())
	s.Require().NoError(err)
	otherPair, err := s.service.CreateSession(s.ctx, "u-2", false, s.device())
	s.Require().NoError(err)

	revoked, err := s.service.RevokeAllUserTokens(s.ctx, "u-1", models.RevocationReasonSecurity)
	s.Require().NoError(err)
	s.Equal(2, revoked)

	creds, err := s.refreshStore.ListByUser(s.ctx, "u-1")
	s.Require().NoError(err)
	for _, cred := range creds {
		s.True(cred.Revoked)
		s.Equal(models.RevocationReasonSecurity, cred.RevocationReason)
	}

	// Access records for the user are dropped too.
	active, err := s.refreshStore.ListActive(s.ctx, time.Now())
	s.Require().NoError(err)
	s.Len(active, 1, "other user's credential stays live")

	// The other user is untouched.
	result, err := s.service.RefreshSession(s.ctx, otherPair.RefreshToken, s.device())
	s.Require().NoError(err)
	s.Equal("u-2", result.UserID)
}

func (s *TokenServiceSuite) TestRevokeAllUserTokens_DropsAccessRecords() {
	pair, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	_, err = s.service.RevokeAllUserTokens(s.ctx, "u-1", models.RevocationReasonSecurity)
	s.Require().NoError(err)

	_, err = s.accessStore.Find(s.ctx, pair.AccessToken)
	s.Require().Error(err)
}
