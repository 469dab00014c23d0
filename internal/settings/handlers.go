package settings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noah-isme/backend-kedai/internal/common"
)

// Handler exposes site settings over HTTP.
type Handler struct {
	Svc *Service
}

// Get handles GET /api/v1/settings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Svc.Get(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load settings", nil)
		return
	}
	common.Data(w, http.StatusOK, s)
}

// Update handles PUT /api/v1/admin/settings.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var payload map[string]json.RawMessage
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteAppError(w, err)
		return
	}
	if len(payload) == 0 {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "no settings to update", nil)
		return
	}
	s, err := h.Svc.Update(r.Context(), payload)
	if err != nil {
		if errors.Is(err, ErrUnknownKey) {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), map[string]any{"allowed": Keys()})
			return
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to update settings", nil)
		return
	}
	common.Data(w, http.StatusOK, s)
}
