package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrorBody represents a consistent error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Data writes v inside the {"data": ...} success envelope.
func Data(w http.ResponseWriter, status int, v any) {
	JSON(w, status, map[string]any{"data": v})
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteAppError renders err when it carries an AppError and reports whether
// it did. Handlers map their own sentinel errors when it returns false.
func WriteAppError(w http.ResponseWriter, err error) bool {
	appErr, ok := AsAppError(err)
	if !ok {
		return false
	}
	JSONError(w, appErr.status(), appErr.code(), appErr.message(), appErr.Details)
	return true
}

// DecodeJSON decodes the request body into dst. Malformed bodies come back as
// a 400 AppError whose details point at the offending offset or field.
func DecodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	appErr := BadRequest("invalid payload", err)
	switch {
	case errors.Is(err, io.EOF):
		appErr.Message = "request body is empty"
	case errors.As(err, &syntaxErr):
		appErr.Details = map[string]any{"offset": syntaxErr.Offset}
	case errors.As(err, &typeErr):
		appErr.Details = map[string]string{typeErr.Field: fmt.Sprintf("expected %s", typeErr.Type)}
	}
	return appErr
}
