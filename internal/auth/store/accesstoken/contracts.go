package accesstoken

import (
	"context"
	"time"

	"aulagate/internal/auth/models"
	dErrors "aulagate/pkg/domain-errors"
)

// ErrNotFound is returned when a requested record is not found in the store.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

// Store persists short-lived access records keyed by the opaque token value.
// Access tokens are high-churn and carry no secret material beyond the token
// itself; lookups are indexed, unlike refresh credentials.
type Store interface {
	Create(ctx context.Context, record *models.AccessRecord) error
	Find(ctx context.Context, token string) (*models.AccessRecord, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
