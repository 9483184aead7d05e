package gate

import (
	"context"

	"aulagate/internal/auth/models"
)

type contextKey string

const identityKey contextKey = "gate_identity"

// WithIdentity stores the resolved identity on the request context for
// downstream handlers.
func WithIdentity(ctx context.Context, identity *models.ResolvedIdentity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the identity the gate resolved for this request, or
// nil when the request never passed through the gate (exempt paths).
func IdentityFrom(ctx context.Context) *models.ResolvedIdentity {
	identity, _ := ctx.Value(identityKey).(*models.ResolvedIdentity)
	return identity
}
