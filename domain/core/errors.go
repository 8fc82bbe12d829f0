package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Caller-correctable argument errors (empty, mismatched, non-positive)
	ErrInvalidInput = errors.New("invalid input")

	// First-sample zero reference requires non-decreasing time
	ErrUnsortedInput = fmt.Errorf("%w: time is not non-decreasing", ErrInvalidInput)

	// Ill-conditioned computations: singular fits, zero variance, zero denominators
	ErrNumerical = errors.New("numerical error")
)

// NewInvalidInputError names the computation that rejected its arguments.
func NewInvalidInputError(op string, reason string) error {
	return fmt.Errorf("%w in %s: %s", ErrInvalidInput, op, reason)
}

// NewNumericalError names the computation that could not produce a finite result.
func NewNumericalError(op string, reason string) error {
	return fmt.Errorf("%w in %s: %s", ErrNumerical, op, reason)
}

// NewUnsortedError reports the first index at which time decreased.
func NewUnsortedError(op string, index int) error {
	return fmt.Errorf("%w in %s: sample %d precedes sample %d", ErrUnsortedInput, op, index, index-1)
}

// Error checking helpers
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsNumericalError(err error) bool {
	return errors.Is(err, ErrNumerical)
}
