package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrReviewNotFound   = fmt.Errorf("%w: review", ErrNotFound)
	ErrStudyNotFound    = fmt.Errorf("%w: study", ErrNotFound)
	ErrAnalysisNotFound = fmt.Errorf("%w: analysis", ErrNotFound)

	// Analysis errors
	ErrInsufficientData    = errors.New("insufficient data for study")
	ErrInsufficientStudies = errors.New("insufficient computable studies for pooling")
	ErrUndefinedMeasure    = errors.New("effect measure undefined for cell counts")
	ErrMeasureMismatch     = errors.New("effect measure incompatible with input mode")

	// Numeric guard errors - unreachable given input validation, fatal to one run
	ErrNonFiniteResult  = errors.New("non-finite value in analysis arithmetic")
	ErrNegativeVariance = errors.New("negative variance in analysis arithmetic")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAnalysisError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInsufficientStudies) ||
		errors.Is(err, ErrUndefinedMeasure) ||
		errors.Is(err, ErrMeasureMismatch)
}

func IsNumericGuardError(err error) bool {
	return errors.Is(err, ErrNonFiniteResult) ||
		errors.Is(err, ErrNegativeVariance)
}
