package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	// ErrNetwork covers transport failures and timeouts seen by the API client.
	ErrNetwork = errors.New("network error")
)

type AppError struct {
	Err     error  // sentinel the error is classified under
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized means the caller is not (or no longer) authenticated.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func RateLimited(message string) *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: message,
	}
}

// Network wraps a transport failure. The cause is kept in the message only,
// so errors.Is matches ErrNetwork and nothing from the transport layer.
func Network(cause error) *AppError {
	msg := "network error"
	if cause != nil {
		msg = fmt.Sprintf("network error: %v", cause)
	}
	return &AppError{
		Err:     ErrNetwork,
		Message: msg,
	}
}

// Kind returns the wire name of err's classification, as used in the
// "error" field of API error bodies. Unclassified errors are "internal_error".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	default:
		return "internal_error"
	}
}

// FromKind is the inverse of Kind, used by clients decoding error bodies.
// Unknown kinds map to nil.
func FromKind(kind string) error {
	switch kind {
	case "validation_error":
		return ErrValidation
	case "not_found":
		return ErrNotFound
	case "forbidden":
		return ErrForbidden
	case "conflict":
		return ErrConflict
	case "unauthorized":
		return ErrUnauthorized
	case "rate_limited":
		return ErrRateLimited
	case "network_error":
		return ErrNetwork
	default:
		return nil
	}
}
