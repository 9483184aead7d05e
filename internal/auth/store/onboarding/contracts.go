package onboarding

import (
	"context"

	dErrors "aulagate/pkg/domain-errors"
)

// ErrNotFound is returned when no onboarding state exists for a user.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

// Store exposes the onboarding-completion lookup consumed by the gate. The
// gate treats any error from Completed as incomplete, so implementations
// should not mask failures.
type Store interface {
	Completed(ctx context.Context, userID string) (bool, error)
	SetCompleted(ctx context.Context, userID string, completed bool) error
}
