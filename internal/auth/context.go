// Package auth carries the authenticated relay caller through a request context.
package auth

import "context"

type contextKey struct{}

// Claims is what the relay knows about a caller after token validation.
type Claims struct {
	UserID   string
	DeviceID string
	TokenID  string
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

func FromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(Claims)
	return c, ok
}

// UserID returns the caller's user id, or "" when unauthenticated.
func UserID(ctx context.Context) string {
	c, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return c.UserID
}
