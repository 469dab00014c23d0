package cart

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-kedai/internal/common"
	"github.com/noah-isme/backend-kedai/internal/pricing"
)

// Handler wires cart services to HTTP.
type Handler struct {
	Svc *Service
}

type cartView struct {
	ID        string        `json:"id"`
	Lines     []Line        `json:"lines"`
	ItemCount int           `json:"itemCount"`
	Subtotal  pricing.Money `json:"subtotal"`
	Total     pricing.Money `json:"total"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func viewOf(id string, c *Cart) cartView {
	summary := c.Summary()
	return cartView{
		ID:        id,
		Lines:     c.Lines,
		ItemCount: summary.Items,
		Subtotal:  summary.Subtotal,
		Total:     c.Total(),
		UpdatedAt: c.UpdatedAt,
	}
}

// Create starts a new guest cart.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	id, c, err := h.Svc.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, viewOf(id, c))
}

// Get returns cart contents and totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")
	c, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, viewOf(id, c))
}

// AddLine adds a customised menu item to the cart.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")
	var payload AddLineRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	if strings.TrimSpace(payload.ItemID) == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "itemId is required", nil)
		return
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}
	c, line, err := h.Svc.AddLine(r.Context(), id, payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": viewOf(id, c), "line": line})
}

// UpdateLine sets the quantity of a line.
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")
	var payload struct {
		Quantity *int `json:"quantity"`
	}
	if err := common.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	if payload.Quantity == nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "quantity is required", nil)
		return
	}
	c, err := h.Svc.UpdateQuantity(r.Context(), id, chi.URLParam(r, "lineId"), *payload.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, viewOf(id, c))
}

// RemoveLine deletes a line.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")
	c, err := h.Svc.RemoveLine(r.Context(), id, chi.URLParam(r, "lineId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, viewOf(id, c))
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")
	c, err := h.Svc.Clear(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, viewOf(id, c))
}

// Routes mounts the cart endpoints. Mutations pass through write; nested
// mounts additional per-cart routes such as checkout.
func (h *Handler) Routes(r chi.Router, write func(http.Handler) http.Handler, nested ...func(chi.Router)) {
	r.Post("/", write(http.HandlerFunc(h.Create)).ServeHTTP)
	r.Route("/{id}", func(c chi.Router) {
		c.Get("/", h.Get)
		c.Group(func(g chi.Router) {
			g.Use(write)
			g.Post("/lines", h.AddLine)
			g.Delete("/lines", h.Clear)
			g.Patch("/lines/{lineId}", h.UpdateLine)
			g.Delete("/lines/{lineId}", h.RemoveLine)
		})
		for _, mount := range nested {
			mount(c)
		}
	})
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
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, pricing.ErrInvalidSelection):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, ErrItemUnavailable):
		common.JSONError(w, http.StatusConflict, "ITEM_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrLineNotFound), errors.Is(err, ErrItemNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to process cart request", nil)
	}
}
