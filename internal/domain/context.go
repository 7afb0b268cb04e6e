package domain

import "context"

type identityKey struct{}

// ContextIdentity carries the authenticated identity through request context.
type ContextIdentity struct {
	Username string
	IsAdmin  bool
}

// WithIdentity stores a ContextIdentity in the context.
func WithIdentity(ctx context.Context, id ContextIdentity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext extracts the ContextIdentity from the context.
func IdentityFromContext(ctx context.Context) (ContextIdentity, bool) {
	id, ok := ctx.Value(identityKey{}).(ContextIdentity)
	return id, ok
}
