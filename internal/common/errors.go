// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrStoreUnavailable marks a failing document store (accounts, sessions,
	// notes). It is distinct from ErrNotFound so that callers can answer with
	// a retryable server error instead of "unauthenticated".
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrStorage marks a failing object store.
	ErrStorage = errors.New("storage error")

	// Input errors, detected before any side effect.
	ErrValidation = errors.New("validation error")
	ErrTooLarge   = fmt.Errorf("%w: payload too large", ErrValidation)

	// Auth errors.
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCredential means a stored password hash record could not be parsed.
	// A wrong password is never reported with this error.
	ErrCredential = errors.New("corrupt credential record")

	// ErrImageDecode is returned when an uploaded image cannot be decoded.
	ErrImageDecode = errors.New("image decode failed")
)
