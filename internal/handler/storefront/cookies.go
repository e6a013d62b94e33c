package storefront

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// sessionCookie identifies a guest session; carts and wishlists key off
// its value.
const sessionCookie = "insany_session"

const sessionTTL = 30 * 24 * time.Hour

// SessionID returns the session id from the request cookie, or "".
func SessionID(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// EnsureSession returns the request's session id, minting and setting a
// new one when absent.
func EnsureSession(w http.ResponseWriter, r *http.Request, secure bool) string {
	if id := SessionID(r); id != "" {
		return id
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
