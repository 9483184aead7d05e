package service

import (
	"time"

	dErrors "aulagate/pkg/domain-errors"
)

func (s *TokenServiceSuite) TestCreateSession_IssuesIndependentSecrets() {
	pair, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	s.NotEmpty(pair.AccessToken)
	s.NotEmpty(pair.RefreshToken)
	s.NotEqual(pair.AccessToken, pair.RefreshToken)
	s.WithinDuration(time.Now().Add(30*time.Minute), pair.AccessExpiresAt, 5*time.Second)
	s.WithinDuration(time.Now().Add(7*24*time.Hour), pair.RefreshExpiresAt, 5*time.Second)
}

func (s *TokenServiceSuite) TestCreateSession_RememberMeExtendsRefresh() {
	pair, err := s.service.CreateSession(s.ctx, "u-1", true, s.device())
	s.Require().NoError(err)
	s.WithinDuration(time.Now().Add(30*24*time.Hour), pair.RefreshExpiresAt, 5*time.Second)
}

func (s *TokenServiceSuite) TestCreateSession_StoresOnlyHash() {
	pair, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	cred := s.onlyCredential("u-1")
	s.NotEqual(pair.RefreshToken, cred.SecretHash, "plaintext secret must never be persisted")
	s.NotEmpty(cred.SecretHash)
	s.Equal("fp-test", cred.DeviceFingerprint)
	s.Equal("203.0.113.7", cred.ClientIP)
}

func (s *TokenServiceSuite) TestCreateSession_RequiresUserID() {
	_, err := s.service.CreateSession(s.ctx, "", false, s.device())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *TokenServiceSuite) TestCreateSession_AccessRecordResolvable() {
	pair, err := s.service.CreateSession(s.ctx, "u-1", false, s.device())
	s.Require().NoError(err)

	record, err := s.accessStore.Find(s.ctx, pair.AccessToken)
	s.Require().NoError(err)
	s.Equal("u-1", record.UserID)
}
