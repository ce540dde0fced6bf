package auth

import (
	"net/http"
	"time"
)

// TokenCookieName is the httpOnly cookie carrying the bearer token for
// browser clients. API clients may send the same token in the
// Authorization header instead.
const TokenCookieName = "jwt"

func SetTokenCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	})
}

// ClearTokenCookie overwrites the cookie with a short-lived dummy value so
// stale clients drop it quickly.
func ClearTokenCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "loggedout",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   10,
		Expires:  time.Now().Add(10 * time.Second),
	})
}

// BearerToken extracts the credential from the Authorization header or,
// failing that, the jwt cookie.
func BearerToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		if tok := h[7:]; tok != "" {
			return tok, true
		}
	}
	c, err := r.Cookie(TokenCookieName)
	if err != nil || c.Value == "" || c.Value == "loggedout" {
		return "", false
	}
	return c.Value, true
}
