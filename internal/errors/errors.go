package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal broker
var (
	// Lookup errors
	ErrNotFound        = errors.New("not found")
	ErrFriendNotFound  = errors.New("friend not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrSessionNotFound = errors.New("session not found")

	// Authentication errors
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrInvalidTOTP      = errors.New("invalid 2fa code")
	ErrPasswordRequired = errors.New("password required")
	ErrTOTPRequired     = errors.New("2fa code required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrTOTPNotEnrolled  = errors.New("no 2fa secret configured")

	// Authorization errors
	ErrForbidden     = errors.New("forbidden")
	ErrAccessExpired = errors.New("access expired")
	ErrNoGrant       = errors.New("no grant for service")

	// Configuration errors (admin-facing only, never leaked to a friend)
	ErrNotConfigured = errors.New("not configured")

	// General errors
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
