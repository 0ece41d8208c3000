package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for structural validation failures. A structural error
// means the caller must not proceed; degenerate-but-valid input (zero mods,
// all-default build) is never an error.
var (
	ErrInvalidBaseline      = errors.New("invalid baseline")
	ErrNonPositiveHP        = errors.New("stock hp must be positive")
	ErrNonPositiveTorque    = errors.New("stock torque must be positive")
	ErrNonPositiveWeight    = errors.New("curb weight must be positive")
	ErrInvalidRPMRange      = errors.New("rpm figures out of order")
	ErrUnknownDrivetrain    = errors.New("unknown drivetrain")
	ErrUnknownAspiration    = errors.New("unknown aspiration")
	ErrUnknownTireCompound  = errors.New("unknown tire compound")
	ErrNegativeReduction    = errors.New("weight reduction must be non-negative")
	ErrReductionExceedsCurb = errors.New("weight reduction exceeds curb weight")
)

// ValidationError wraps a sentinel with the offending field and value.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
