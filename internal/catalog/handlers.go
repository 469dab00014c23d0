package catalog

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-kedai/internal/common"
	"github.com/noah-isme/backend-kedai/internal/menu"
)

const adminPageSize = 100

// Handler exposes public and admin catalog endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Categories handles GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	rows, err := h.service.ActiveCategories(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows)
}

// Menu handles GET /api/v1/menu with optional q and category filters.
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	q := r.URL.Query()
	sections, err := h.service.Menu(r.Context(), q.Get("q"), q.Get("category"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, sections)
}

// Popular handles GET /api/v1/menu/popular.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	entries, err := h.service.Popular(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, entries)
}

// Item handles GET /api/v1/menu/{id}.
func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	entry, err := h.service.Entry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, entry)
}

// AdminItems handles GET /api/v1/admin/items, including unavailable items.
func (h *Handler) AdminItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	filtered := make([]menu.Item, 0, len(items))
	for _, it := range items {
		if category != "" && it.Category != category {
			continue
		}
		if !Matches(it, query) {
			continue
		}
		filtered = append(filtered, it)
	}
	page, perPage := common.ParsePagination(r, adminPageSize)
	paged, meta := common.Paginate(filtered, page, perPage)
	common.JSON(w, http.StatusOK, map[string]any{"data": paged, "pagination": meta})
}

// CreateItem handles POST /api/v1/admin/items.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var item menu.Item
	if err := common.DecodeJSON(r, &item); err != nil {
		h.writeError(w, err)
		return
	}
	created, err := h.service.CreateItem(r.Context(), item)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, created)
}

// UpdateItem handles PUT /api/v1/admin/items/{id}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var item menu.Item
	if err := common.DecodeJSON(r, &item); err != nil {
		h.writeError(w, err)
		return
	}
	updated, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), item)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, updated)
}

// DeleteItem handles DELETE /api/v1/admin/items/{id}.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete handles POST /api/v1/admin/items/bulk-delete.
func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs []string `json:"ids"`
	}
	if err := common.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	n, err := h.service.BulkDelete(r.Context(), payload.IDs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, map[string]any{"deleted": n})
}

// BulkMove handles POST /api/v1/admin/items/bulk-category.
func (h *Handler) BulkMove(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs        []string `json:"ids"`
		CategoryID string   `json:"categoryId"`
	}
	if err := common.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	n, err := h.service.BulkMove(r.Context(), payload.IDs, payload.CategoryID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, map[string]any{"updated": n})
}

// AdminCategories handles GET /api/v1/admin/categories, including inactive ones.
func (h *Handler) AdminCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, cats)
}

// CreateCategory handles POST /api/v1/admin/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var cat menu.Category
	if err := common.DecodeJSON(r, &cat); err != nil {
		h.writeError(w, err)
		return
	}
	created, err := h.service.CreateCategory(r.Context(), cat)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, created)
}

// UpdateCategory handles PUT /api/v1/admin/categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var cat menu.Category
	if err := common.DecodeJSON(r, &cat); err != nil {
		h.writeError(w, err)
		return
	}
	updated, err := h.service.UpdateCategory(r.Context(), chi.URLParam(r, "id"), cat)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, updated)
}

// DeleteCategory handles DELETE /api/v1/admin/categories/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublicRoutes mounts storefront reads.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Get("/categories", h.Categories)
	r.Get("/menu", h.Menu)
	r.Get("/menu/popular", h.Popular)
	r.Get("/menu/{id}", h.Item)
}

// AdminRoutes mounts catalog management; the caller applies authentication.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Route("/items", func(items chi.Router) {
		items.Get("/", h.AdminItems)
		items.Post("/", h.CreateItem)
		items.Post("/bulk-delete", h.BulkDelete)
		items.Post("/bulk-category", h.BulkMove)
		items.Put("/{id}", h.UpdateItem)
		items.Delete("/{id}", h.DeleteItem)
	})
	r.Route("/categories", func(cats chi.Router) {
		cats.Get("/", h.AdminCategories)
		cats.Post("/", h.CreateCategory)
		cats.Put("/{id}", h.UpdateCategory)
		cats.Delete("/{id}", h.DeleteCategory)
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if common.WriteAppError(w, err) {
		return
	}
	var invalid *menu.ValidationError
	switch {
	case errors.As(err, &invalid):
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid menu item", invalid.Fields)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrCategoryInUse), errors.Is(err, ErrDuplicateCategory):
		common.JSONError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, ErrUnknownCategory):
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), map[string]string{"category": "exists"})
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
