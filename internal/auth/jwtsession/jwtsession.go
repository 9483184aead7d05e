// Package jwtsession validates the signed session cookie issued by the
// previous auth scheme. The cookie carries an HS256 JWT whose jti claim
// points at a server-side session record; the JWT itself grants nothing
// without that record.
package jwtsession

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"aulagate/internal/auth/models"
	"aulagate/internal/auth/store/session"
	dErrors "aulagate/pkg/domain-errors"
)

// SessionClaims are the claims carried by the legacy session cookie.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Service handles legacy session cookie creation and validation.
type Service struct {
	signingKey []byte
	sessions   session.Store
	ttl        time.Duration
}

func New(signingKey string, sessions session.Store, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		sessions:   sessions,
		ttl:        ttl,
	}
}

// Issue creates a session record and the signed cookie value referencing it.
func (s *Service) Issue(ctx context.Context, userID string) (string, *models.LegacySession, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate session id")
	}
	jti := hex.EncodeToString(b)
	now := time.Now()

	record := &models.LegacySession{
		ID:        jti,
		UserID:    userID,
		JTI:       jti,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, record); err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist session")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	return signed, record, nil
}

// Resolve validates the cookie signature and claims, then looks up the
// referenced session record. The record is authoritative: a validly signed
// token whose record is revoked or missing is still rejected.
func (s *Service) Resolve(ctx context.Context, tokenString string) (*models.LegacySession, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeNoCredential, "no session cookie")
	}

	claims := new(SessionClaims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, dErrors.New(dErrors.CodeInvalidCredential, "unexpected signing algorithm")
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeCredentialExpired, "session token expired")
		}
		return nil, dErrors.New(dErrors.CodeInvalidCredential, "invalid session token")
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidCredential, "invalid session token")
	}

	record, err := s.sessions.FindByJTI(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidCredential, "session not found")
	}
	if record.IsRevoked() {
		return nil, dErrors.New(dErrors.CodeCredentialRevoked, "session revoked")
	}
	if record.IsExpired(time.Now()) {
		return nil, dErrors.New(dErrors.CodeCredentialExpired, "session expired")
	}
	return record, nil
}

// Revoke marks the session behind a cookie value revoked. Unparseable or
// unknown cookies are ignored; revocation is best effort on logout.
func (s *Service) Revoke(ctx context.Context, tokenString string) error {
	record, err := s.Resolve(ctx, tokenString)
	if err != nil {
		return nil
	}
	record.Revoke(time.Now())
	return s.sessions.Update(ctx, record)
}
