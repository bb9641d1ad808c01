package auth

import (
	"context"

	"github.com/hollis/gaffer/internal/model"
)

type userContextKey struct{}

// WithUser returns a new context with the authenticated user attached.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext retrieves the authenticated user, or nil if the request
// never passed RequireAuth.
func UserFromContext(ctx context.Context) *model.User {
	u, _ := ctx.Value(userContextKey{}).(*model.User)
	return u
}
