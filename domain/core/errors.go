package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors are the only fatal class: they invalidate every later computation.
	ErrInvalidConfig = errors.New("invalid transform configuration")

	// Input errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrLengthMismatch   = fmt.Errorf("%w: length mismatch", ErrInvalidInput)
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Generation errors
	ErrGenerationFailed = errors.New("dataset generation failed")
	ErrUnknownPattern   = fmt.Errorf("%w: unknown pattern", ErrGenerationFailed)
	ErrNonFiniteValue   = fmt.Errorf("%w: non-finite value", ErrGenerationFailed)

	// Lookup errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)
)

// Error constructors with context
func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, reason)
}

func NewLengthMismatchError(original, transformed int) error {
	return fmt.Errorf("%w: original has %d values, transformed has %d", ErrLengthMismatch, original, transformed)
}

func NewInsufficientDataError(operation string, have, need int) error {
	return fmt.Errorf("%w: %s needs at least %d points, got %d", ErrInsufficientData, operation, need, have)
}

func NewGenerationError(pattern string, size int, err error) error {
	return fmt.Errorf("%w for pattern %q (size %d): %w", ErrGenerationFailed, pattern, size, err)
}

// Error checking helpers
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInsufficientData)
}

func IsGenerationError(err error) bool {
	return errors.Is(err, ErrGenerationFailed)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
