package auth

import "context"

// Identity is the resolved caller attached to a request context by the auth
// guard after token verification.
type Identity struct {
	UserID   string
	Username string
}

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity stores the resolved identity on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the identity attached by the auth guard. The
// second return value reports whether an identity was present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != ""
}
