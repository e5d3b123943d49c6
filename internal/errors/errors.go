package errors

import (
	"errors"
	"fmt"
)

// Common error types for the gateway core
var (
	// OAuth state errors
	ErrInvalidState = errors.New("invalid state")
	ErrStateExpired = errors.New("state expired")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrUnauthorized    = errors.New("unauthorized")

	// Billing errors
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnknownEvent     = errors.New("unknown event type")
	ErrNoSubscription   = errors.New("no active subscription")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
