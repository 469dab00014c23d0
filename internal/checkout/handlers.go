package checkout

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-kedai/internal/cart"
	"github.com/noah-isme/backend-kedai/internal/common"
)

// Handler exposes checkout over HTTP.
type Handler struct {
	Svc *Service
}

// Details validates the details step and reports the next step.
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var payload CustomerInfo
	if err := common.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	wiz, err := h.Svc.Details(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, map[string]any{"step": wiz.Step, "customer": wiz.Info})
}

// Checkout renders the order summary for the cart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var payload CustomerInfo
	if err := common.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	out, err := h.Svc.Checkout(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, out)
}

// Mount returns a per-cart route mount for cart.Handler.Routes. Requests pass
// through limit, which may be nil.
func (h *Handler) Mount(limit func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Group(func(g chi.Router) {
			if limit != nil {
				g.Use(limit)
			}
			g.Post("/checkout/details", h.Details)
			g.Post("/checkout", h.Checkout)
		})
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if err == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
		return
	}
	if common.WriteAppError(w, err) {
		return
	}
	switch {
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_CART", "add items to your cart before checking out", nil)
	case errors.Is(err, cart.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to complete checkout", nil)
	}
}
