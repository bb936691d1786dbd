package handlers

import (
	"net/http"
	"time"

	"github.com/cliptube/backend/internal/models"
)

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

// setSessionCookies mirrors the issued token pair into HTTP-only, secure
// cookies alongside the JSON body.
func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, sessionCookie(accessCookieName, tokens.AccessToken, tokens.AccessExpiresAt))
	http.SetCookie(w, sessionCookie(refreshCookieName, tokens.RefreshToken, tokens.RefreshExpiresAt))
}

// clearSessionCookies instructs the client to drop both credential cookies.
func clearSessionCookies(w http.ResponseWriter) {
	expired := time.Unix(0, 0)
	http.SetCookie(w, sessionCookie(accessCookieName, "", expired))
	http.SetCookie(w, sessionCookie(refreshCookieName, "", expired))
}

func sessionCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
