package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure taxonomy. Every service-layer failure
// wraps exactly one of these.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// APIError represents a structured API error
type APIError struct {
	Code       string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`

	sentinel error
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap exposes the taxonomy sentinel for errors.Is checks
func (e *APIError) Unwrap() error {
	return e.sentinel
}

func newAPIError(sentinel error, code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		sentinel:   sentinel,
	}
}

// NotFound means a referenced request/worker/customer/offer/review does not exist
func NotFound(resource string) *APIError {
	return newAPIError(ErrNotFound, "not_found", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// PreconditionFailed means a status or actor-relationship check failed
func PreconditionFailed(message string) *APIError {
	return newAPIError(ErrPreconditionFailed, "precondition_failed", message, http.StatusConflict)
}

// InvalidInput means a malformed numeric or enum field was rejected before any mutation
func InvalidInput(message string) *APIError {
	return newAPIError(ErrInvalidInput, "invalid_input", message, http.StatusBadRequest)
}

// Forbidden means the actor lacks the role or ownership for a privileged operation
func Forbidden(message string) *APIError {
	return newAPIError(ErrForbidden, "forbidden", message, http.StatusForbidden)
}

// Conflict means a concurrent-write race was detected
func Conflict(message string) *APIError {
	return newAPIError(ErrConflict, "conflict", message, http.StatusConflict)
}

// Unauthenticated means no valid actor identity was presented
func Unauthenticated(message string) *APIError {
	return newAPIError(ErrUnauthenticated, "unauthenticated", message, http.StatusUnauthorized)
}

// HTTPStatus maps any error to a response status, defaulting to 500
func HTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}
