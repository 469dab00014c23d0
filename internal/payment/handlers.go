package payment

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-kedai/internal/common"
)

// Handler exposes payment methods over HTTP.
type Handler struct {
	Svc *Service
}

// Active handles GET /api/v1/payment-methods.
func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	methods, err := h.Svc.Active(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, methods)
}

// All handles GET /api/v1/admin/payment-methods.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	methods, err := h.Svc.All(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, methods)
}

// Save handles POST and PUT /api/v1/admin/payment-methods[/{id}].
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var m Method
	if err := common.DecodeJSON(r, &m); err != nil {
		h.writeError(w, err)
		return
	}
	status := http.StatusCreated
	if id := chi.URLParam(r, "id"); id != "" {
		m.ID = id
		status = http.StatusOK
	}
	saved, err := h.Svc.Save(r.Context(), m)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, status, saved)
}

// Delete handles DELETE /api/v1/admin/payment-methods/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminRoutes mounts method management; the caller applies authentication.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/", h.All)
	r.Post("/", h.Save)
	r.Put("/{id}", h.Save)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if common.WriteAppError(w, err) {
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to process payment methods", nil)
	}
}
