package user

import (
	"context"

	"aulagate/internal/auth/models"
	dErrors "aulagate/pkg/domain-errors"
)

// ErrNotFound is returned when a requested record is not found in the store.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

// Store exposes the user lookups the gate depends on. The role field is
// returned raw; normalization happens in the resolver.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
