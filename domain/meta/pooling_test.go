package meta

import (
	"errors"
	"math"
	"testing"

	"gometa/domain/core"
)

func est(id string, effect, variance float64) Estimate {
	return NewEstimate(core.StudyID(id), effect, variance)
}

func TestPoolFixed_WeightedMeanIdentity(t *testing.T) {
	estimates := []Estimate{
		est("a", 0.30, 0.04),
		est("b", 0.55, 0.09),
		est("c", 0.10, 0.01),
	}

	res, err := PoolFixed(estimates)
	if err != nil {
		t.Fatalf("PoolFixed failed: %v", err)
	}

	var sumW, sumWY float64
	for _, e := range estimates {
		w := 1 / e.Variance
		sumW += w
		sumWY += w * e.Effect
	}
	almostEqual(t, res.Effect, sumWY/sumW, 1e-12, "pooled effect")
	almostEqual(t, res.SE, math.Sqrt(1/sumW), 1e-12, "pooled SE")
	almostEqual(t, res.Z, res.Effect/res.SE, 1e-12, "z")

	if res.PValue < 0 || res.PValue > 1 {
		t.Errorf("p-value out of range: %g", res.PValue)
	}
	almostEqual(t, res.CILower, res.Effect-1.96*res.SE, 1e-12, "CI lower")
	almostEqual(t, res.CIUpper, res.Effect+1.96*res.SE, 1e-12, "CI upper")
}

func TestPoolFixed_PrecalculatedWeight(t *testing.T) {
	// A study with SE 0.12 carries fixed-effect weight 1/0.12^2 = 69.44,
	// unmodified from its input.
	estimates := []Estimate{
		est("a", 0.45, 0.12*0.12),
		est("b", 0.20, 0.25),
	}

	res, err := PoolFixed(estimates)
	if err != nil {
		t.Fatalf("PoolFixed failed: %v", err)
	}

	var weightA float64
	for _, w := range res.Weights {
		if w.StudyID == "a" {
			weightA = w.Weight
		}
	}
	almostEqual(t, weightA, 69.4444444, 1e-6, "raw weight of study a")
}

func TestPoolFixed_WeightsSumToHundred(t *testing.T) {
	estimates := []Estimate{
		est("a", 0.1, 0.02),
		est("b", 0.2, 0.05),
		est("c", 0.3, 0.11),
		est("d", 0.4, 0.07),
	}
	res, err := PoolFixed(estimates)
	if err != nil {
		t.Fatalf("PoolFixed failed: %v", err)
	}

	var total float64
	for _, w := range res.Weights {
		total += w.Percent
	}
	almostEqual(t, total, 100, 1e-9, "weight percentages")
}

func TestPoolFixed_MonotonicWeights(t *testing.T) {
	estimates := []Estimate{
		est("small-var", 0.5, 0.01),
		est("large-var", 0.5, 0.50),
	}
	res, err := PoolFixed(estimates)
	if err != nil {
		t.Fatalf("PoolFixed failed: %v", err)
	}

	var small, large float64
	for _, w := range res.Weights {
		switch w.StudyID {
		case "small-var":
			small = w.Weight
		case "large-var":
			large = w.Weight
		}
	}
	if small < large {
		t.Errorf("smaller variance must receive at least the weight of larger variance: %g < %g", small, large)
	}
}

func TestPoolRandom_EqualsFixedWhenHomogeneous(t *testing.T) {
	// Identical studies have Q = 0, so tau2 = 0 and random effects
	// degenerates to fixed effect.
	estimates := []Estimate{
		est("a", 0.4, 0.05),
		est("b", 0.4, 0.05),
		est("c", 0.4, 0.05),
	}

	fixed, err := PoolFixed(estimates)
	if err != nil {
		t.Fatalf("PoolFixed failed: %v", err)
	}
	random, err := PoolRandom(estimates)
	if err != nil {
		t.Fatalf("PoolRandom failed: %v", err)
	}

	almostEqual(t, random.Effect, fixed.Effect, 1e-12, "pooled effect")
	almostEqual(t, random.SE, fixed.SE, 1e-12, "pooled SE")
	almostEqual(t, random.Heterogeneity.Tau2, 0, 1e-12, "tau2")
}

func TestPoolRandom_WidensCIUnderHeterogeneity(t *testing.T) {
	estimates := []Estimate{
		est("a", 0.9, 0.02),
		est("b", -0.4, 0.03),
		est("c", 0.5, 0.02),
		est("d", 0.1, 0.04),
	}

	fixed, err := PoolFixed(estimates)
	if err != nil {
		t.Fatalf("PoolFixed failed: %v", err)
	}
	random, err := PoolRandom(estimates)
	if err != nil {
		t.Fatalf("PoolRandom failed: %v", err)
	}

	if random.Heterogeneity.Tau2 <= 0 {
		t.Fatalf("expected positive tau2 for heterogeneous set, got %g", random.Heterogeneity.Tau2)
	}
	if random.SE <= fixed.SE {
		t.Errorf("random-effects SE should exceed fixed SE under heterogeneity: %g <= %g", random.SE, fixed.SE)
	}
}

func TestPool_InsufficientStudies(t *testing.T) {
	_, err := PoolFixed([]Estimate{est("only", 0.3, 0.05)})
	if !errors.Is(err, core.ErrInsufficientStudies) {
		t.Fatalf("expected ErrInsufficientStudies for single study, got %v", err)
	}
	_, err = PoolFixed(nil)
	if !errors.Is(err, core.ErrInsufficientStudies) {
		t.Fatalf("expected ErrInsufficientStudies for empty set, got %v", err)
	}
}

func TestPooledResult_ScaleRoundTrip(t *testing.T) {
	// Pool two log-scale estimates and check the back-transformed pooled
	// effect and CI agree with exponentiating the canonical values.
	estimates := []Estimate{
		NewLogEstimate("a", LogEffect(math.Log(2.0)), 0.04),
		NewLogEstimate("b", LogEffect(math.Log(1.6)), 0.09),
	}
	res, err := PoolFixed(estimates)
	if err != nil {
		t.Fatalf("PoolFixed failed: %v", err)
	}
	res.Measure = MeasureOR

	almostEqual(t, res.NaturalEffect(), math.Exp(res.Effect), 1e-12, "natural effect")
	lo, hi := res.NaturalCI()
	almostEqual(t, lo, math.Exp(res.CILower), 1e-12, "natural CI lower")
	almostEqual(t, hi, math.Exp(res.CIUpper), 1e-12, "natural CI upper")
	almostEqual(t, math.Log(res.NaturalEffect()), res.Effect, 1e-12, "round trip")
}
