// Package common defines shared constants and sentinel errors used across
// client and server layers of medsupply. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Write pre-checks: a record with the same product code already exists.
	ErrConflict = errors.New("product code already exists")

	// Record-level validation failures (bad key, malformed document).
	ErrValidation = errors.New("validation error")

	// A batch carried more writes than a single atomic commit accepts.
	ErrBatchTooLarge = errors.New("batch too large")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
