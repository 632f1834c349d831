// Package identity verifies bearer tokens with an external provider and
// attaches the caller's identity to the request context.
package identity

import (
	"context"

	"github.com/evcraddock/fsbo/internal/user"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   user.Role
	Email  string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

// Authenticated reports whether the actor carries a user id.
func (a Actor) Authenticated() bool {
	return a.UserID != ""
}

type contextKey struct{}

// WithActor returns a context carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// ActorFrom returns the actor attached to ctx, if any.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok && a.Authenticated()
}
