package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/noah-isme/backend-kedai/internal/common"
)

type ctxKey struct{}

// WithSession attaches s to ctx and records its subject for request logging.
func WithSession(ctx context.Context, s Session) context.Context {
	ctx = common.WithSessionSubject(ctx, s.Subject)
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the admin session attached by RequireAdmin.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// Middleware authenticates admin requests with a bearer token or cookie.
type Middleware struct {
	Service *Service
	Cookie  string
}

// RequireAdmin rejects requests without a valid admin session.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Service == nil {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "session service not configured", nil)
			return
		}
		token := m.extractToken(r)
		if token == "" {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}
		s, err := m.Service.Parse(token)
		if err != nil {
			var appErr *common.AppError
			if errors.As(err, &appErr) {
				common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
				return
			}
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (m Middleware) extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if m.Cookie != "" {
		if cookie, err := r.Cookie(m.Cookie); err == nil {
			return strings.TrimSpace(cookie.Value)
		}
	}
	return ""
}
