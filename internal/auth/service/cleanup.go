package service

import (
	"context"
	"time"

	dErrors "aulagate/pkg/domain-errors"
)

// CleanupResult reports what one maintenance run removed.
type CleanupResult struct {
	RefreshDeleted int
	AccessDeleted  int
}

// CleanExpiredTokens deletes refresh rows past expiry or past revocation plus
// the grace period, and access records past expiry. Maintenance operation,
// never on the request path.
func (s *TokenService) CleanExpiredTokens(ctx context.Context) (*CleanupResult, error) {
	now := time.Now()

	refreshDeleted, err := s.refreshTokens.DeleteExpired(ctx, now, revokedGrace)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete expired refresh credentials")
	}
	accessDeleted, err := s.accessTokens.DeleteExpired(ctx, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete expired access records")
	}

	s.updateActiveGauge(ctx)
	return &CleanupResult{
		RefreshDeleted: refreshDeleted,
		AccessDeleted:  accessDeleted,
	}, nil
}
