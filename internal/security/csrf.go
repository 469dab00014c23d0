package security

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-kedai/internal/common"
)

const defaultCSRFName = "X-CSRF-Token"

// CSRF protects the cookie-authenticated admin session with the double-submit
// technique. Requests that authenticate with a bearer token, or that carry no
// session cookie at all, are not subject to the check.
type CSRF struct {
	Header        string
	Cookie        string
	SessionCookie string
	Secure        bool
}

func (c CSRF) headerName() string {
	if name := strings.TrimSpace(c.Header); name != "" {
		return name
	}
	return defaultCSRFName
}

func (c CSRF) cookieName() string {
	if name := strings.TrimSpace(c.Cookie); name != "" {
		return name
	}
	return c.headerName()
}

// Issue sets a fresh CSRF cookie readable by the dashboard script and returns
// the token.
func (c CSRF) Issue(w http.ResponseWriter, expires time.Time) string {
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName(),
		Value:    token,
		Path:     "/",
		Expires:  expires,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	return token
}

// Middleware enforces that state-changing requests include a CSRF header
// matching the cookie.
func (c CSRF) Middleware(next http.Handler) http.Handler {
	headerName := c.headerName()
	cookieName := c.cookieName()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}

		auth := strings.TrimSpace(r.Header.Get("Authorization"))
		if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			next.ServeHTTP(w, r)
			return
		}
		if c.SessionCookie != "" {
			if _, err := r.Cookie(c.SessionCookie); err != nil {
				next.ServeHTTP(w, r)
				return
			}
		}

		token := strings.TrimSpace(r.Header.Get(headerName))
		if token == "" {
			common.JSONError(w, http.StatusForbidden, "CSRF_REJECTED", "missing csrf token", nil)
			return
		}
		cookie, err := r.Cookie(cookieName)
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			common.JSONError(w, http.StatusForbidden, "CSRF_REJECTED", "missing csrf cookie", nil)
			return
		}
		if len(token) != len(cookie.Value) || subtle.ConstantTimeCompare([]byte(token), []byte(cookie.Value)) != 1 {
			common.JSONError(w, http.StatusForbidden, "CSRF_REJECTED", "invalid csrf token", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
