package handlers

import (
	"net/http"
	"strings"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
)

// RequireAuth guards an endpoint behind access-token verification. The token
// is read from the accessToken cookie or the Authorization header; on any
// failure the request short-circuits with a 401 envelope and the wrapped
// handler never runs. On success the resolved identity is attached to the
// request context.
func RequireAuth(verifier TokenVerifier, users UserStore, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := bearerToken(r)
		if token == "" {
			respondError(ctx, w, http.StatusUnauthorized, "missing credentials")
			return
		}

		claims, err := verifier.VerifyAccess(token)
		if err != nil {
			logging.FromContext(ctx).Warn("access token rejected", "error", err)
			respondError(ctx, w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user, err := users.FindByID(ctx, claims.Subject)
		if err != nil {
			logging.FromContext(ctx).Warn("token subject unknown", "userId", claims.Subject)
			respondError(ctx, w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx = auth.WithIdentity(ctx, auth.Identity{UserID: user.ID, Username: user.Username})
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	return ""
}
