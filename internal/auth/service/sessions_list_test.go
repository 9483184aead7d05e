package service

import (
	"time"

	"aulagate/internal/auth/models"
	dErrors "aulagate/pkg/domain-errors"
)

func (s *TokenServiceSuite) TestActiveSessions() {
	_, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)
	_, err = s.service.CreateSession(s.ctx, "u-1", false, models.DeviceContext{
		Display:  "Firefox on Linux",
		ClientIP: "203.0.113.9",
	})
	s.Require().NoError(err)

	creds, err := s.refreshStore.ListByUser(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Require().Len(creds, 2)
	current := creds[0].ID

	sessions, err := s.service.ActiveSessions(s.ctx, "u-1", current)
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)

	foundCurrent := false
	for _, sess := range sessions {
		if sess.ID == current {
			s.True(sess.Current)
			foundCurrent = true
		} else {
			s.False(sess.Current)
		}
	}
	s.True(foundCurrent)
}

func (s *TokenServiceSuite) TestActiveSessions_ExcludesRevoked() {
	_, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)
	credID := s.onlyCredential("u-1").ID

	s.Require().NoError(s.service.RevokeToken(s.ctx, credID, models.RevocationReasonLogout))

	sessions, err := s.service.ActiveSessions(s.ctx, "u-1", "")
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *TokenServiceSuite) TestActiveSessions_NewestFirst() {
	_, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)
	_, err = s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	creds, err := s.refreshStore.ListByUser(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Require().Len(creds, 2)
	s.ageCredential(creds[0].ID, time.Hour)

	sessions, err := s.service.ActiveSessions(s.ctx, "u-1", "")
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.True(sessions[0].LastUsedAt.After(sessions[1].LastUsedAt))
}

func (s *TokenServiceSuite) TestDestroySession_OwnershipEnforced() {
	_, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)
	credID := s.onlyCredential("u-1").ID

	err = s.service.DestroySession(s.ctx, "u-2", credID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	s.Require().NoError(s.service.DestroySession(s.ctx, "u-1", credID))
	cred, err := s.refreshStore.FindByID(s.ctx, credID)
	s.Require().NoError(err)
	s.True(cred.Revoked)
}

func (s *TokenServiceSuite) TestCleanExpiredTokens() {
	pair, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	// Force the refresh credential and access record past expiry.
	cred := s.onlyCredential("u-1")
	cred.ExpiresAt = time.Now().Add(-time.Minute)
	s.Require().NoError(s.refreshStore.Update(s.ctx, cred))

	record, err := s.accessStore.Find(s.ctx, pair.AccessToken)
	s.Require().NoError(err)
	record.ExpiresAt = time.Now().Add(-time.Minute)
	s.Require().NoError(s.accessStore.Create(s.ctx, record))

	result, err := s.service.CleanExpiredTokens(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, result.RefreshDeleted)
	s.Equal(1, result.AccessDeleted)
}
