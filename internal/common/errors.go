// Package common defines shared sentinel errors and small helpers used across
// the store, the services and the HTTP boundary. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrorConflict     = errors.New("already exists")
	ErrorInvalidInput = errors.New("invalid input")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Store-level errors. ErrorStorageUnavailable is fatal to the operation
	// that hit it; the whole operation may be retried by the caller.
	ErrorStorageUnavailable = errors.New("storage unavailable")
	ErrorOverloaded         = errors.New("overloaded")

	// Bearer token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
