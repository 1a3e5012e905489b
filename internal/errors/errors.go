// Package errors defines the sentinel errors shared by the SunMind agent.
// Callers wrap them with the constructors below and test with the Is
// helpers; the HTTP layer maps each sentinel to a status code.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a device, review or telemetry entry that doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput marks a request rejected before reaching the backend.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConnected marks a command sent while the telemetry socket is down.
	ErrNotConnected = errors.New("not connected")

	// ErrNoCredential marks an operation that needs a session token and has none.
	ErrNoCredential = errors.New("no session credential")

	// ErrUnauthorized marks a session token the backend rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

func wrap(sentinel error, format string, args []any) error {
	return fmt.Errorf(format+": %w", append(args, sentinel)...)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err wraps ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsNotConnected reports whether err wraps ErrNotConnected.
func IsNotConnected(err error) bool { return errors.Is(err, ErrNotConnected) }

// IsUnauthorized reports whether err wraps ErrUnauthorized.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// NotFoundf returns a formatted error wrapping ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return wrap(ErrNotFound, format, args)
}

// InvalidInputf returns a formatted error wrapping ErrInvalidInput.
func InvalidInputf(format string, args ...any) error {
	return wrap(ErrInvalidInput, format, args)
}

// NotConnectedf returns a formatted error wrapping ErrNotConnected.
func NotConnectedf(format string, args ...any) error {
	return wrap(ErrNotConnected, format, args)
}

// Unauthorizedf returns a formatted error wrapping ErrUnauthorized.
func Unauthorizedf(format string, args ...any) error {
	return wrap(ErrUnauthorized, format, args)
}
