package auth

import (
	"errors"
	"net/http"
)

// Kind classifies why a request could not be authorized
type Kind int

const (
	KindUnauthenticated Kind = iota + 1
	KindProfileNotFound
	KindForbidden
	// KindUnavailable reports a failed profile read. It is kept apart from
	// KindProfileNotFound so callers can tell a missing row from a backend fault.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindProfileNotFound:
		return "profile_not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Status maps a kind to its HTTP status code
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindProfileNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

var (
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	ErrProfileNotFound = errors.New("auth: profile not found")
	ErrForbidden       = errors.New("auth: forbidden")
	ErrUnavailable     = errors.New("auth: unavailable")
)

func (k Kind) sentinel() error {
	switch k {
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindProfileNotFound:
		return ErrProfileNotFound
	case KindForbidden:
		return ErrForbidden
	case KindUnavailable:
		return ErrUnavailable
	}
	return nil
}

// Error is the failure result of a resolution. Message is safe to show to
// the caller; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the same kind
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Status returns the HTTP status code for the error
func (e *Error) Status() int {
	return e.Kind.Status()
}

// KindOf extracts the failure kind from err, or 0 when err is not an *Error
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return 0
}
