package study

import (
	"fmt"

	"gometa/domain/core"
)

// InputMode identifies which raw data shape a study was entered with
type InputMode string

const (
	ModeContinuous    InputMode = "continuous"
	ModeBinary        InputMode = "binary"
	ModePrecalculated InputMode = "precalculated"
)

// ParseInputMode parses a string into InputMode
func ParseInputMode(s string) (InputMode, error) {
	switch InputMode(s) {
	case ModeContinuous, ModeBinary, ModePrecalculated:
		return InputMode(s), nil
	}
	return "", fmt.Errorf("unknown input mode: %q", s)
}

// RawData is the tagged variant over the three supported input shapes.
// Exactly one concrete type backs each study record, so normalization can
// switch exhaustively and never touch a half-filled form.
type RawData interface {
	Mode() InputMode
}

// ContinuousData holds two-arm group summaries (means and SDs)
type ContinuousData struct {
	N1    int     `json:"n1"`
	Mean1 float64 `json:"mean1"`
	SD1   float64 `json:"sd1"`
	N2    int     `json:"n2"`
	Mean2 float64 `json:"mean2"`
	SD2   float64 `json:"sd2"`
}

func (ContinuousData) Mode() InputMode { return ModeContinuous }

// BinaryData holds two-arm event counts
type BinaryData struct {
	Events1 int `json:"events1"`
	Total1  int `json:"total1"`
	Events2 int `json:"events2"`
	Total2  int `json:"total2"`
}

func (BinaryData) Mode() InputMode { return ModeBinary }

// Cells returns the 2x2 table (a,b,c,d) derived from events/totals
func (d BinaryData) Cells() (a, b, c, dd int) {
	return d.Events1, d.Total1 - d.Events1, d.Events2, d.Total2 - d.Events2
}

// PrecalculatedData holds a ready effect estimate and its standard error.
// Ratio-measure effects are entered on the natural scale; the normalizer
// log-transforms them. CI bounds are optional display metadata.
type PrecalculatedData struct {
	Effect        float64  `json:"effect"`
	StandardError float64  `json:"standard_error"`
	CILower       *float64 `json:"ci_lower,omitempty"`
	CIUpper       *float64 `json:"ci_upper,omitempty"`
}

func (PrecalculatedData) Mode() InputMode { return ModePrecalculated }

// Record is one literature-review study's contribution to an analysis
type Record struct {
	ID       core.StudyID `json:"id"`
	Label    string       `json:"label"`
	Year     int          `json:"year,omitempty"` // 0 when unknown
	Subgroup string       `json:"subgroup,omitempty"`
	Data     RawData      `json:"data"`
	Excluded bool         `json:"excluded"` // sensitivity exclusion, set by the session
}

// NewRecord creates a study record with a fresh ID
func NewRecord(label string, year int, subgroup string, data RawData) (Record, error) {
	if label == "" {
		return Record{}, core.NewValidationError("label", "must not be empty")
	}
	if data == nil {
		return Record{}, core.NewValidationError("data", "raw input is required")
	}
	return Record{
		ID:       core.StudyID(core.NewID()),
		Label:    label,
		Year:     year,
		Subgroup: subgroup,
		Data:     data,
	}, nil
}

// DisplayName formats the study label with its year when known
func (r Record) DisplayName() string {
	if r.Year > 0 {
		return fmt.Sprintf("%s (%d)", r.Label, r.Year)
	}
	return r.Label
}
