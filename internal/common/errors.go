// Package common defines shared constants and sentinel errors used across
// the flashdeck server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorUnavailable  = errors.New("unavailable")

	// Authorization outcomes. ErrorForbidden never says why access was denied.
	ErrorForbidden        = errors.New("not authorized")
	ErrorImmutableDefault = errors.New("default content is read-only")

	// Validation errors are reported through *ValidationError, which matches
	// ErrorValidation.
	ErrorValidation = errors.New("validation error")

	// Seeding refuses to run twice.
	ErrorAlreadySeeded = errors.New("default decks already seeded")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
