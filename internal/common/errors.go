// Package common defines shared constants and sentinel errors used across
// client and server layers of RecipeBox. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Service-level errors.
	ErrInternal        = errors.New("internal error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// Input errors (missing or malformed fields).
	ErrValidation = errors.New("validation error")

	// Token errors. Both unwrap to ErrUnauthenticated at the service boundary.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
