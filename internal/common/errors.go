// Package common defines shared constants and sentinel errors used across
// CoinKeeper layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors. The specific not-found values wrap
	// ErrNotFound, so errors.Is(err, ErrNotFound) matches either.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("account with this email already exists")
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrRecordNotFound = fmt.Errorf("record %w", ErrNotFound)

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidToken       = errors.New("invalid token")

	// Password reset lifecycle errors.
	ErrNoResetCode = errors.New("no reset code found")
	ErrCodeExpired = errors.New("reset code expired")
	ErrInvalidCode = errors.New("invalid reset code")

	// Storage errors. ErrStorageCorrupted covers malformed persisted JSON
	// and missing keys that an invariant says must exist.
	ErrStorageCorrupted = errors.New("storage corrupted")

	// Validation errors (wrapped with field details by the services).
	ErrValidation = errors.New("validation error")
)
