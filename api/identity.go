package api

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pranaou2005/Wheelhub-backend/models"
)

type identityKey struct{}

// Identity is the authenticated caller attached to a request by AuthGate
type Identity struct {
	ID   string
	Role models.Role
}

// ObjectID returns the caller id as a mongo ObjectID
func (i Identity) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(i.ID)
}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by AuthGate, if any
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
