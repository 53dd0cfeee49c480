package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures returned by the remote service.
type ErrorKind int

const (
	// KindValidation is a 4xx rejection carrying a detail message for the originating form.
	KindValidation ErrorKind = iota + 1
	// KindAuth is a 401; the session has been (or must be) torn down.
	KindAuth
	// KindNotFound means the requested event or participant does not exist.
	KindNotFound
	// KindNetwork means no response was received.
	KindNetwork
	// KindServer is a 5xx or a response body the client could not decode.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is matching against an *APIError's kind.
var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("not authenticated")
	ErrNotFound   = errors.New("not found")
	ErrNetwork    = errors.New("network error")
	ErrServer     = errors.New("server error")
)

// APIError is the structured error every client operation fails with.
// Detail is always a non-empty, human-readable message.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Detail     string
	Err        error
}

func (e *APIError) Error() string {
	return e.Detail
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrAuth:
		return e.Kind == KindAuth
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrServer:
		return e.Kind == KindServer
	}
	return false
}

// NewValidationError returns a validation error raised on the client before any request is sent.
func NewValidationError(format string, args ...any) *APIError {
	return &APIError{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

// DetailOf returns the message to show inline for err, or fallback when err carries none.
func DetailOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
