package meta

import (
	"errors"
	"fmt"

	"gometa/domain/core"
)

// InsufficientDataError marks one study as not computable for the chosen
// measure. It excludes the study from pooling; it never aborts the run.
// Kind optionally names the more specific condition (measure mismatch,
// undefined measure, numeric guard); the error always also unwraps to
// core.ErrInsufficientData so callers can treat every variant uniformly.
type InsufficientDataError struct {
	StudyID core.StudyID
	Field   string
	Reason  string
	Kind    error
}

func (e *InsufficientDataError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("study %s: insufficient data (%s): %s", e.StudyID, e.Field, e.Reason)
	}
	return fmt.Sprintf("study %s: insufficient data: %s", e.StudyID, e.Reason)
}

func (e *InsufficientDataError) Unwrap() error {
	if e.Kind != nil {
		return errors.Join(core.ErrInsufficientData, e.Kind)
	}
	return core.ErrInsufficientData
}

// Exclusion records why a study was left out of a pooling run
type Exclusion struct {
	StudyID core.StudyID `json:"study_id"`
	Reason  string       `json:"reason"`
}

// InsufficientStudiesError reports that fewer than two studies were
// computable, so pooling and heterogeneity were not attempted.
type InsufficientStudiesError struct {
	Computable int
	Excluded   []Exclusion
}

func (e *InsufficientStudiesError) Error() string {
	return fmt.Sprintf("pooling requires at least 2 computable studies, got %d (%d excluded)",
		e.Computable, len(e.Excluded))
}

func (e *InsufficientStudiesError) Unwrap() error { return core.ErrInsufficientStudies }

// insufficient builds a per-study data error; helpers in the effect-size
// formulas use it with the field that failed validation.
func insufficient(field, format string, args ...interface{}) error {
	return &InsufficientDataError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// undefined marks a zero-denominator condition in cell-count arithmetic
func undefined(field, format string, args ...interface{}) error {
	return &InsufficientDataError{Field: field, Reason: fmt.Sprintf(format, args...), Kind: core.ErrUndefinedMeasure}
}

// mismatched marks an effect measure the study's input mode cannot yield
func mismatched(format string, args ...interface{}) error {
	return &InsufficientDataError{Field: "measure", Reason: fmt.Sprintf(format, args...), Kind: core.ErrMeasureMismatch}
}
