package authx

import (
	"context"

	"github.com/krancour/bizdesk/sdk/session"
)

type userContextKey struct{}

// ContextWithUser returns a copy of ctx carrying the authenticated User.
func ContextWithUser(ctx context.Context, user session.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated User carried by ctx, if any.
func UserFromContext(ctx context.Context) (session.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(session.User)
	return user, ok
}
