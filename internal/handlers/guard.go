package handlers

import (
	"context"
	"net/http"

	"github.com/cliptube/backend/internal/auth"
)

// requireOwner enforces the ownership guard: the acting identity must equal
// the resource's owner. It is a pure check invoked before every mutation on
// owned resources; on failure it writes a 403 envelope and reports false.
func requireOwner(ctx context.Context, w http.ResponseWriter, ownerID string) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "missing credentials")
		return auth.Identity{}, false
	}

	if identity.UserID != ownerID {
		respondError(ctx, w, http.StatusForbidden, "you are not authorized to modify this resource")
		return auth.Identity{}, false
	}

	return identity, true
}

// requireIdentity resolves the authenticated caller or writes a 401 envelope.
func requireIdentity(ctx context.Context, w http.ResponseWriter) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "missing credentials")
		return auth.Identity{}, false
	}
	return identity, true
}
