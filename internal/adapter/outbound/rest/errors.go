package rest

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrUnauthorized is returned when a request fails with HTTP 401 and the
	// single-flight refresh could not recover it.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServerUnreachable is returned when the backend cannot be contacted.
	ErrServerUnreachable = errors.New("server unreachable")

	// ErrInvalidInput is returned when client-side validation rejects a
	// request payload before any network call.
	ErrInvalidInput = errors.New("invalid input")
)

// APIError is returned for any non-2xx response from the backend. The
// backend owns the business rules; the client surfaces its detail message
// unchanged.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Detail is the backend's human-readable error message.
	Detail string
	// Method and Path identify the failing call.
	Method string
	Path   string
}

// Error returns a human-readable description of the API failure.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.Status)
}

// Is reports whether this error matches the target error.
// A 401 APIError matches ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}

// ServerUnreachableError is returned when the backend cannot be contacted
// (DNS failure, connection refused, timeout).
type ServerUnreachableError struct {
	// Cause is the underlying transport error.
	Cause error
}

// Error returns a human-readable description.
func (e *ServerUnreachableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("server unreachable: %v", e.Cause)
	}
	return "server unreachable"
}

// Unwrap returns the underlying error cause.
func (e *ServerUnreachableError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
func (e *ServerUnreachableError) Is(target error) bool {
	return target == ErrServerUnreachable
}

// ValidationError is returned when a request payload fails client-side
// validation. The request never reaches the network.
type ValidationError struct {
	// Cause is the underlying validator error with per-field details.
	Cause error
}

// Error returns the field-level validation messages.
func (e *ValidationError) Error() string {
	var verrs validator.ValidationErrors
	if errors.As(e.Cause, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("invalid input: %v", verrs)
	}
	return fmt.Sprintf("invalid input: %v", e.Cause)
}

// Unwrap returns the underlying validator error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
