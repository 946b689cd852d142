package identity

import "context"

type contextKey struct{}

// WithUser returns a context carrying the user confirmed by an
// authoritative session check
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext returns the user stored by WithUser, or NoUser
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(contextKey{}).(*User)
	return u
}
