package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authenticated caller, resolved once by the middleware and
// passed explicitly into every workflow and query operation. Nothing below the
// handler layer reads ambient request state.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// Anonymous is the zero identity used for unauthenticated requests.
var Anonymous = Identity{}

// IsAnonymous reports whether the identity carries no authenticated user.
func (id Identity) IsAnonymous() bool { return id.UserID == uuid.Nil }

type ctxKey struct{}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the identity stored by the middleware, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
