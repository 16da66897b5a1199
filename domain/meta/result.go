package meta

import (
	"math"

	"gometa/domain/core"
)

// StudyWeight is one study's share of the pooled estimate
type StudyWeight struct {
	StudyID core.StudyID `json:"study_id"`
	Weight  float64      `json:"weight"`  // raw model weight
	Percent float64      `json:"percent"` // normalized, sums to 100 across included studies
}

// PooledResult is the immutable output of one pooling run. All effect
// values are on the canonical scale (log for ratio measures); use the
// Natural* accessors at the display boundary.
type PooledResult struct {
	Measure Measure `json:"measure"`
	Model   Model   `json:"model"`

	Effect   float64 `json:"effect"`
	SE       float64 `json:"se"`
	CILower  float64 `json:"ci_lower"`
	CIUpper  float64 `json:"ci_upper"`
	Z        float64 `json:"z"`
	PValue   float64 `json:"p_value"`

	Heterogeneity Heterogeneity `json:"heterogeneity"`

	K         int           `json:"k"` // computable study count
	Estimates []Estimate    `json:"estimates"`
	Weights   []StudyWeight `json:"weights"`
	Excluded  []Exclusion   `json:"excluded,omitempty"`

	ComputedAt core.Timestamp `json:"computed_at"`
}

// NaturalEffect back-transforms the pooled point estimate for display
func (r *PooledResult) NaturalEffect() float64 {
	if r.Measure.IsRatio() {
		return math.Exp(r.Effect)
	}
	return r.Effect
}

// NaturalCI back-transforms the pooled confidence bounds for display
func (r *PooledResult) NaturalCI() (lower, upper float64) {
	if r.Measure.IsRatio() {
		return math.Exp(r.CILower), math.Exp(r.CIUpper)
	}
	return r.CILower, r.CIUpper
}

// WeightPercent looks up one study's normalized weight
func (r *PooledResult) WeightPercent(id core.StudyID) float64 {
	for _, w := range r.Weights {
		if w.StudyID == id {
			return w.Percent
		}
	}
	return 0
}

// DisplayRow is one study's back-transformed effect and CI for plotting
type DisplayRow struct {
	StudyID core.StudyID `json:"study_id"`
	Effect  float64      `json:"effect"`
	CILower float64      `json:"ci_lower"`
	CIUpper float64      `json:"ci_upper"`
	SE      float64      `json:"se"`
}

// DisplayRows back-transforms every included study for the plot boundary.
// Layout generators downstream perform no scale transformation themselves.
func (r *PooledResult) DisplayRows() []DisplayRow {
	rows := make([]DisplayRow, 0, len(r.Estimates))
	for _, e := range r.Estimates {
		lo, hi := e.NaturalCI()
		rows = append(rows, DisplayRow{
			StudyID: e.StudyID,
			Effect:  e.NaturalEffect(),
			CILower: lo,
			CIUpper: hi,
			SE:      e.SE(),
		})
	}
	return rows
}
