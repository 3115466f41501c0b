package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("service request"), http.StatusNotFound},
		{"precondition failed", PreconditionFailed("request is completed"), http.StatusConflict},
		{"invalid input", InvalidInput("rating must be between 1 and 5"), http.StatusBadRequest},
		{"forbidden", Forbidden("admins only"), http.StatusForbidden},
		{"conflict", Conflict("request was modified concurrently"), http.StatusConflict},
		{"unauthenticated", Unauthenticated("token expired"), http.StatusUnauthorized},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped api error", fmt.Errorf("loading request: %w", NotFound("service request")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestSentinelUnwrap(t *testing.T) {
	err := NotFound("worker")
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound must unwrap to ErrNotFound")
	}
	if errors.Is(err, ErrConflict) {
		t.Error("NotFound must not match ErrConflict")
	}

	wrapped := fmt.Errorf("outer: %w", Conflict("raced"))
	if !errors.Is(wrapped, ErrConflict) {
		t.Error("wrapped Conflict must still match ErrConflict")
	}
}

func TestErrorMessage(t *testing.T) {
	err := NotFound("quote offer")
	if err.Error() == "" {
		t.Fatal("error message empty")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("constructor must return an *APIError")
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apiErr.StatusCode)
	}
}
