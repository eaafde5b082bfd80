package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrActiveSessionConflict = errors.New("player already has an active session")
	ErrSessionNotFound       = errors.New("session not found")
	ErrGameAlreadyResolved   = errors.New("game already resolved")
	ErrRateLimited           = errors.New("rate limit exceeded")
	ErrPersistenceFailure    = errors.New("persistence failure")
)

// Validationf wraps ErrValidation with a caller-facing detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
