// Package common defines shared constants and sentinel errors used across
// client and server layers of wellkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Store-level errors. Backends wrap the driver error with one of these
	// so that callers never need to know which database is underneath.
	ErrorNotFound            = errors.New("not found")
	ErrorUniqueViolation     = errors.New("unique constraint violation")
	ErrorForeignKeyViolation = errors.New("foreign key violation")
	ErrorInvalidArgument     = errors.New("invalid argument")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
