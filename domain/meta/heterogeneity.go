package meta

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// Heterogeneity quantifies cross-study inconsistency. Q always uses
// fixed-effect (inverse-variance) weights regardless of the model being
// pooled; tau2 feeds the random-effects reweighting.
type Heterogeneity struct {
	Q       float64 `json:"q"`
	DF      int     `json:"df"`
	QPValue float64 `json:"q_p_value"`
	I2      float64 `json:"i2"`   // percentage, clamped to [0,100]
	Tau2    float64 `json:"tau2"` // clamped >= 0
}

// AnalyzeHeterogeneity computes Cochran's Q, I-squared and the
// DerSimonian-Laird tau-squared for k >= 2 estimates.
func AnalyzeHeterogeneity(estimates []Estimate) (Heterogeneity, error) {
	k := len(estimates)
	if k < 2 {
		return Heterogeneity{}, &InsufficientStudiesError{Computable: k}
	}

	var sumW, sumWY, sumW2 float64
	for _, e := range estimates {
		w := 1 / e.Variance
		sumW += w
		sumWY += w * e.Effect
		sumW2 += w * w
	}
	mean := sumWY / sumW

	var q float64
	for _, e := range estimates {
		w := 1 / e.Variance
		dev := e.Effect - mean
		q += w * dev * dev
	}

	df := k - 1
	h := Heterogeneity{Q: q, DF: df}

	chiDist := distuv.ChiSquared{K: float64(df)}
	h.QPValue = 1 - chiDist.CDF(q)

	if q > float64(df) {
		h.I2 = (q - float64(df)) / q * 100
		if h.I2 > 100 {
			h.I2 = 100
		}
		c := sumW - sumW2/sumW
		if c > 0 {
			h.Tau2 = (q - float64(df)) / c
		}
	}
	// I2 and Tau2 stay 0 when Q <= df

	return h, nil
}

// Band returns the conventional interpretation band for I-squared.
// Presentation only, never persisted.
func (h Heterogeneity) Band() string {
	switch {
	case h.I2 < 25:
		return "low"
	case h.I2 < 50:
		return "moderate"
	case h.I2 < 75:
		return "substantial"
	default:
		return "considerable"
	}
}
