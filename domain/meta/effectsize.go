package meta

import (
	"math"

	"gometa/domain/study"
)

// Effect-size formulas. Each returns the canonical (effect, variance) pair
// for one study, or an *InsufficientDataError when the raw fields cannot
// support the measure. Ratio measures return LogEffect.
//
// Zero cells that would put a zero in a denominator are an exclusion
// condition; no continuity correction is applied.

// HedgesG computes the small-sample-corrected standardized mean difference
func HedgesG(d study.ContinuousData) (float64, float64, error) {
	if d.N1 < 2 || d.N2 < 2 {
		return 0, 0, insufficient("n", "each group needs at least 2 participants, got n1=%d n2=%d", d.N1, d.N2)
	}
	if d.SD1 <= 0 || d.SD2 <= 0 {
		return 0, 0, insufficient("sd", "standard deviations must be positive, got sd1=%g sd2=%g", d.SD1, d.SD2)
	}

	n1, n2 := float64(d.N1), float64(d.N2)
	df := n1 + n2 - 2
	pooledSD := math.Sqrt(((n1-1)*d.SD1*d.SD1 + (n2-1)*d.SD2*d.SD2) / df)
	if pooledSD == 0 {
		return 0, 0, insufficient("sd", "pooled standard deviation is zero")
	}

	cohenD := (d.Mean1 - d.Mean2) / pooledSD
	j := 1 - 3/(4*df-1)
	g := cohenD * j

	variance := j * j * ((n1+n2)/(n1*n2) + g*g/(2*(n1+n2)))
	return g, variance, nil
}

// MeanDifference computes the raw mean difference and its variance
func MeanDifference(d study.ContinuousData) (float64, float64, error) {
	if d.N1 < 1 || d.N2 < 1 {
		return 0, 0, insufficient("n", "group sizes must be positive, got n1=%d n2=%d", d.N1, d.N2)
	}
	if d.SD1 <= 0 || d.SD2 <= 0 {
		return 0, 0, insufficient("sd", "standard deviations must be positive, got sd1=%g sd2=%g", d.SD1, d.SD2)
	}

	md := d.Mean1 - d.Mean2
	variance := d.SD1*d.SD1/float64(d.N1) + d.SD2*d.SD2/float64(d.N2)
	return md, variance, nil
}

// LogOddsRatio computes ln(OR) and its variance from 2x2 cell counts
func LogOddsRatio(d study.BinaryData) (LogEffect, float64, error) {
	if err := checkTotals(d); err != nil {
		return 0, 0, err
	}
	a, b, c, dd := d.Cells()
	if a == 0 || b == 0 || c == 0 || dd == 0 {
		return 0, 0, undefined("events", "odds ratio undefined with a zero cell (a=%d b=%d c=%d d=%d)", a, b, c, dd)
	}

	fa, fb, fc, fd := float64(a), float64(b), float64(c), float64(dd)
	logOR := math.Log((fa * fd) / (fb * fc))
	variance := 1/fa + 1/fb + 1/fc + 1/fd
	return LogEffect(logOR), variance, nil
}

// LogRiskRatio computes ln(RR) and its variance from 2x2 cell counts
func LogRiskRatio(d study.BinaryData) (LogEffect, float64, error) {
	if err := checkTotals(d); err != nil {
		return 0, 0, err
	}
	a, _, c, _ := d.Cells()
	if a == 0 || c == 0 {
		return 0, 0, undefined("events", "risk ratio undefined with zero events in a group (events1=%d events2=%d)", a, c)
	}

	fa, fc := float64(a), float64(c)
	n1, n2 := float64(d.Total1), float64(d.Total2)
	logRR := math.Log((fa / n1) / (fc / n2))
	variance := 1/fa - 1/n1 + 1/fc - 1/n2
	return LogEffect(logRR), variance, nil
}

// RiskDifference computes the linear-scale risk difference with
// binomial-proportion variance from each arm
func RiskDifference(d study.BinaryData) (float64, float64, error) {
	if err := checkTotals(d); err != nil {
		return 0, 0, err
	}

	n1, n2 := float64(d.Total1), float64(d.Total2)
	p1 := float64(d.Events1) / n1
	p2 := float64(d.Events2) / n2
	rd := p1 - p2
	variance := p1*(1-p1)/n1 + p2*(1-p2)/n2
	if variance <= 0 {
		return 0, 0, undefined("events", "risk difference has zero variance (all-or-none events in both groups)")
	}
	return rd, variance, nil
}

func checkTotals(d study.BinaryData) error {
	if d.Total1 <= 0 || d.Total2 <= 0 {
		return insufficient("total", "group totals must be positive, got total1=%d total2=%d", d.Total1, d.Total2)
	}
	if d.Events1 < 0 || d.Events2 < 0 {
		return insufficient("events", "event counts cannot be negative, got events1=%d events2=%d", d.Events1, d.Events2)
	}
	if d.Events1 > d.Total1 || d.Events2 > d.Total2 {
		return insufficient("events", "event counts cannot exceed totals")
	}
	return nil
}
