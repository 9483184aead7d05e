package session

import (
	"context"
	"time"

	"aulagate/internal/auth/models"
	dErrors "aulagate/pkg/domain-errors"
)

// ErrNotFound is returned when a requested record is not found in the store.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

// Store persists legacy sessions, looked up by the jti claim carried in the
// signed session cookie.
type Store interface {
	Create(ctx context.Context, session *models.LegacySession) error
	FindByJTI(ctx context.Context, jti string) (*models.LegacySession, error)
	Update(ctx context.Context, session *models.LegacySession) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
