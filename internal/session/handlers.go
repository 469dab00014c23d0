package session

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-kedai/internal/common"
)

// CSRFIssuer sets a double-submit token cookie alongside the session cookie.
type CSRFIssuer interface {
	Issue(w http.ResponseWriter, expires time.Time) string
}

// Handler exposes admin login endpoints.
type Handler struct {
	Service        *Service
	Middleware     Middleware
	CSRF           CSRFIssuer
	CookieSecure   bool
	CookieSameSite http.SameSite
}

type loginResponse struct {
	Token
	CSRFToken string `json:"csrf_token,omitempty"`
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login handles POST /api/v1/admin/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "session service not configured", nil)
		return
	}
	var req loginRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	tok, err := h.Service.Login(r.Context(), req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := loginResponse{Token: tok}
	if name := h.Middleware.Cookie; name != "" {
		if h.CSRF != nil {
			resp.CSRFToken = h.CSRF.Issue(w, tok.ExpiresAt)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    tok.Token,
			Path:     "/",
			Expires:  tok.ExpiresAt,
			HttpOnly: true,
			Secure:   h.CookieSecure,
			SameSite: h.CookieSameSite,
		})
	}
	common.Data(w, http.StatusOK, resp)
}

// Logout clears the session cookie. Tokens are stateless and simply expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if name := h.Middleware.Cookie; name != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.CookieSecure,
			SameSite: h.CookieSameSite,
		})
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the current session.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := FromContext(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	common.Data(w, http.StatusOK, s)
}

// Routes mounts login under limit and the session endpoints behind RequireAdmin.
func (h *Handler) Routes(r chi.Router, limit func(http.Handler) http.Handler) {
	login := http.Handler(http.HandlerFunc(h.Login))
	if limit != nil {
		login = limit(login)
	}
	r.Method(http.MethodPost, "/login", login)
	r.Post("/logout", h.Logout)
	r.With(h.Middleware.RequireAdmin).Get("/session", h.Me)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if common.WriteAppError(w, err) {
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to sign in", nil)
}
