package meta

import (
	"fmt"

	"gometa/domain/study"
)

// Measure defines the effect measure an analysis pools
type Measure string

const (
	MeasureSMD Measure = "smd" // standardized mean difference (Hedges' g)
	MeasureMD  Measure = "md"  // raw mean difference
	MeasureOR  Measure = "or"  // odds ratio
	MeasureRR  Measure = "rr"  // risk ratio
	MeasureRD  Measure = "rd"  // risk difference
	MeasureHR  Measure = "hr"  // hazard ratio, pre-calculated only
)

// ParseMeasure parses a string into Measure
func ParseMeasure(s string) (Measure, error) {
	switch Measure(s) {
	case MeasureSMD, MeasureMD, MeasureOR, MeasureRR, MeasureRD, MeasureHR:
		return Measure(s), nil
	}
	return "", fmt.Errorf("unknown effect measure: %q", s)
}

// IsRatio reports whether the measure is carried on the log scale internally
func (m Measure) IsRatio() bool {
	return m == MeasureOR || m == MeasureRR || m == MeasureHR
}

// Null returns the measure's no-effect value on the natural scale
// (0 for difference measures, 1 for ratio measures).
func (m Measure) Null() float64 {
	if m.IsRatio() {
		return 1
	}
	return 0
}

// SupportsMode reports whether raw data in the given mode can yield this measure.
// Pre-calculated input is measure-agnostic.
func (m Measure) SupportsMode(mode study.InputMode) bool {
	switch mode {
	case study.ModeContinuous:
		return m == MeasureSMD || m == MeasureMD
	case study.ModeBinary:
		return m == MeasureOR || m == MeasureRR || m == MeasureRD
	case study.ModePrecalculated:
		return true
	}
	return false
}

// Label returns a presentation name for the measure
func (m Measure) Label() string {
	switch m {
	case MeasureSMD:
		return "Std. Mean Difference"
	case MeasureMD:
		return "Mean Difference"
	case MeasureOR:
		return "Odds Ratio"
	case MeasureRR:
		return "Risk Ratio"
	case MeasureRD:
		return "Risk Difference"
	case MeasureHR:
		return "Hazard Ratio"
	}
	return string(m)
}

// Model selects the pooling model for an analysis
type Model string

const (
	ModelFixed  Model = "fixed"  // inverse-variance fixed effect
	ModelRandom Model = "random" // DerSimonian-Laird random effects
)

// ParseModel parses a string into Model
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case ModelFixed, ModelRandom:
		return Model(s), nil
	}
	return "", fmt.Errorf("unknown pooling model: %q", s)
}

// Label returns a presentation name for the model
func (m Model) Label() string {
	if m == ModelRandom {
		return "Random effects (DerSimonian-Laird)"
	}
	return "Fixed effect (inverse variance)"
}
