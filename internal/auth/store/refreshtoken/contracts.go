package refreshtoken

import (
	"context"
	"time"

	"aulagate/internal/auth/models"
	dErrors "aulagate/pkg/domain-errors"
)

// ErrNotFound is returned when a requested record is not found in the store.
// Services should check for this error using errors.Is(err, refreshtoken.ErrNotFound).
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

// Store persists refresh credentials. Secrets are stored only as one-way
// hashes; matching a presented secret requires scanning active records.
//
// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested entity does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures
type Store interface {
	Create(ctx context.Context, cred *models.RefreshCredential) error
	FindByID(ctx context.Context, id string) (*models.RefreshCredential, error)
	// ListActive returns every non-revoked, non-expired credential as of now.
	// This is the candidate set for hash verification during refresh.
	ListActive(ctx context.Context, now time.Time) ([]*models.RefreshCredential, error)
	ListByUser(ctx context.Context, userID string) ([]*models.RefreshCredential, error)
	Update(ctx context.Context, cred *models.RefreshCredential) error
	// DeleteExpired removes rows past expiry, or revoked longer ago than the
	// grace period. Returns the number of rows removed.
	DeleteExpired(ctx context.Context, now time.Time, revokedGrace time.Duration) (int, error)
	// CountActive reports live credentials for gauge metrics.
	CountActive(ctx context.Context, now time.Time) (int, error)
}
