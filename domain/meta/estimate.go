package meta

import (
	"math"

	"gometa/domain/core"
)

// LogEffect is an effect value on the natural-log scale. Ratio-measure
// formulas return this type so a log-scale value cannot be handed to
// presentation code as if it were natural scale.
type LogEffect float64

// Exp back-transforms to the natural scale
func (e LogEffect) Exp() float64 { return math.Exp(float64(e)) }

// Estimate is one study's canonical (effect, variance) contribution.
// Effect is on the log scale when LogScale is set; every arithmetic step
// downstream (pooling, heterogeneity) stays on this canonical scale.
type Estimate struct {
	StudyID  core.StudyID `json:"study_id"`
	Effect   float64      `json:"effect"`
	Variance float64      `json:"variance"`
	LogScale bool         `json:"log_scale"`
}

// NewEstimate creates a linear-scale estimate
func NewEstimate(id core.StudyID, effect, variance float64) Estimate {
	return Estimate{StudyID: id, Effect: effect, Variance: variance}
}

// NewLogEstimate creates a log-scale estimate from a LogEffect
func NewLogEstimate(id core.StudyID, effect LogEffect, variance float64) Estimate {
	return Estimate{StudyID: id, Effect: float64(effect), Variance: variance, LogScale: true}
}

// SE returns the standard error
func (e Estimate) SE() float64 { return math.Sqrt(e.Variance) }

// CI returns the 95% confidence bounds on the canonical scale
func (e Estimate) CI() (lower, upper float64) {
	half := zCritical * e.SE()
	return e.Effect - half, e.Effect + half
}

// NaturalEffect back-transforms the point estimate for display
func (e Estimate) NaturalEffect() float64 {
	if e.LogScale {
		return math.Exp(e.Effect)
	}
	return e.Effect
}

// NaturalCI back-transforms the confidence bounds for display
func (e Estimate) NaturalCI() (lower, upper float64) {
	lower, upper = e.CI()
	if e.LogScale {
		return math.Exp(lower), math.Exp(upper)
	}
	return lower, upper
}

// Valid reports whether the estimate is finite with positive variance
func (e Estimate) Valid() bool {
	return !math.IsNaN(e.Effect) && !math.IsInf(e.Effect, 0) &&
		!math.IsNaN(e.Variance) && !math.IsInf(e.Variance, 0) &&
		e.Variance > 0
}

// zCritical is the two-sided 95% standard normal critical value
const zCritical = 1.96
