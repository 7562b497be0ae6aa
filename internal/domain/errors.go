package domain

import (
	"errors" // Sentinel errors
	"fmt"    // Formatted reasons
)

// Error kinds. Every failure returned by the core wraps exactly one of them.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrRateLimited        = errors.New("rate limited")
)

// Error is a failure of a given kind with a human readable reason.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Unauthenticated reports missing or invalid credentials
func Unauthenticated(format string, args ...any) error {
	return newError(ErrUnauthenticated, format, args...)
}

// Forbidden reports an authenticated actor lacking permission
func Forbidden(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

// NotFound reports an absent entity
func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

// Conflict reports a uniqueness violation
func Conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

// InvalidInput reports a value outside its declared constraints
func InvalidInput(format string, args ...any) error {
	return newError(ErrInvalidInput, format, args...)
}

// RateLimited reports a caller exceeding an attempt budget
func RateLimited(format string, args ...any) error {
	return newError(ErrRateLimited, format, args...)
}

// StorageUnavailable wraps a storage failure that is not one of the other kinds
func StorageUnavailable(err error) error {
	return &Error{Kind: ErrStorageUnavailable, Reason: "storage unavailable: " + err.Error()}
}

// Reason returns the human readable reason of err.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return err.Error()
}
