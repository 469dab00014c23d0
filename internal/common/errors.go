package common

import (
	"errors"
	"net/http"
)

// Error codes shared by every handler in the storefront and admin API.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL"
)

// AppError is an error that already knows how it is rendered to the client.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// status falls back to 500 when the error was built without one.
func (e *AppError) status() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

func (e *AppError) code() string {
	if e.Code == "" {
		return CodeInternal
	}
	return e.Code
}

func (e *AppError) message() string {
	if e.Message == "" {
		return http.StatusText(e.status())
	}
	return e.Message
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// Invalid reports a payload that decoded but broke a business rule, such as
// a menu item without a category or a delivery order without an address.
func Invalid(message string, details any, err error) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusUnprocessableEntity, Err: err, Details: details}
}

// BadRequest reports a payload that could not be decoded at all.
func BadRequest(message string, err error) *AppError {
	return NewAppError(CodeBadRequest, message, http.StatusBadRequest, err)
}

// NotFound reports a missing cart, menu item, category or payment method.
func NotFound(err error) *AppError {
	return NewAppError(CodeNotFound, err.Error(), http.StatusNotFound, err)
}

// Conflict reports a write that collides with existing state.
func Conflict(err error) *AppError {
	return NewAppError(CodeConflict, err.Error(), http.StatusConflict, err)
}

// AsAppError returns the AppError in err's chain, if any.
func AsAppError(err error) (*AppError, bool) {
	var target *AppError
	if errors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}
