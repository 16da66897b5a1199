package meta

import (
	"errors"
	"math"
	"testing"

	"gometa/domain/core"
	"gometa/domain/study"
)

func almostEqual(t *testing.T, got, want, tol float64, label string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol %g)", label, got, want, tol)
	}
}

// Fixed regression point: two-arm continuous study from the documented
// formula chain (pooled SD, Cohen's d, small-sample correction J).
func TestHedgesG_RegressionPoint(t *testing.T) {
	data := study.ContinuousData{
		N1: 50, Mean1: 12.5, SD1: 3.2,
		N2: 48, Mean2: 10.1, SD2: 2.9,
	}

	g, variance, err := HedgesG(data)
	if err != nil {
		t.Fatalf("HedgesG failed: %v", err)
	}

	// Recompute the documented formula independently.
	df := 50.0 + 48.0 - 2.0
	pooledSD := math.Sqrt((49*3.2*3.2 + 47*2.9*2.9) / df)
	d := (12.5 - 10.1) / pooledSD
	j := 1 - 3/(4*df-1)
	wantG := d * j
	wantVar := j * j * ((98.0 / (50.0 * 48.0)) + wantG*wantG/(2*98.0))

	almostEqual(t, g, wantG, 1e-12, "g")
	almostEqual(t, variance, wantVar, 1e-12, "variance of g")

	// The correction must stay close to 1 for samples this large, and the
	// corrected estimate near 0.78.
	almostEqual(t, j, 0.99217, 1e-5, "J")
	almostEqual(t, g, 0.779, 1e-3, "g (absolute)")
}

func TestHedgesG_ZeroSD(t *testing.T) {
	data := study.ContinuousData{N1: 20, Mean1: 5, SD1: 0, N2: 20, Mean2: 4, SD2: 1}
	_, _, err := HedgesG(data)
	if err == nil {
		t.Fatal("expected error for zero SD")
	}
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestMeanDifference(t *testing.T) {
	data := study.ContinuousData{N1: 30, Mean1: 7.5, SD1: 2, N2: 30, Mean2: 6, SD2: 2.5}
	md, variance, err := MeanDifference(data)
	if err != nil {
		t.Fatalf("MeanDifference failed: %v", err)
	}
	almostEqual(t, md, 1.5, 1e-12, "MD")
	almostEqual(t, variance, 2*2/30.0+2.5*2.5/30.0, 1e-12, "variance of MD")
}

// Fixed regression point: events1=15/total1=50 vs events2=8/total2=48
// gives OR = (15*40)/(35*8) per the documented cell formula.
func TestLogOddsRatio_RegressionPoint(t *testing.T) {
	data := study.BinaryData{Events1: 15, Total1: 50, Events2: 8, Total2: 48}

	logOR, variance, err := LogOddsRatio(data)
	if err != nil {
		t.Fatalf("LogOddsRatio failed: %v", err)
	}

	wantOR := (15.0 * 40.0) / (35.0 * 8.0)
	almostEqual(t, logOR.Exp(), wantOR, 1e-12, "OR")
	almostEqual(t, float64(logOR), math.Log(wantOR), 1e-12, "ln(OR)")

	wantSE := math.Sqrt(1/15.0 + 1/35.0 + 1/8.0 + 1/40.0)
	almostEqual(t, math.Sqrt(variance), wantSE, 1e-12, "SE(lnOR)")
}

func TestLogOddsRatio_ZeroCell(t *testing.T) {
	// d = total2 - events2 = 0 makes the odds ratio undefined; no
	// continuity correction is applied.
	data := study.BinaryData{Events1: 10, Total1: 40, Events2: 48, Total2: 48}
	_, _, err := LogOddsRatio(data)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for zero cell, got %v", err)
	}
	if !errors.Is(err, core.ErrUndefinedMeasure) {
		t.Errorf("zero cell should also mark the measure undefined, got %v", err)
	}
}

func TestLogRiskRatio(t *testing.T) {
	data := study.BinaryData{Events1: 10, Total1: 100, Events2: 20, Total2: 100}
	logRR, variance, err := LogRiskRatio(data)
	if err != nil {
		t.Fatalf("LogRiskRatio failed: %v", err)
	}
	almostEqual(t, logRR.Exp(), 0.5, 1e-12, "RR")

	wantVar := 1/10.0 - 1/100.0 + 1/20.0 - 1/100.0
	almostEqual(t, variance, wantVar, 1e-12, "var(lnRR)")
}

func TestLogRiskRatio_ZeroEvents(t *testing.T) {
	data := study.BinaryData{Events1: 0, Total1: 50, Events2: 5, Total2: 50}
	_, _, err := LogRiskRatio(data)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for zero events, got %v", err)
	}
}

func TestRiskDifference(t *testing.T) {
	data := study.BinaryData{Events1: 30, Total1: 100, Events2: 10, Total2: 100}
	rd, variance, err := RiskDifference(data)
	if err != nil {
		t.Fatalf("RiskDifference failed: %v", err)
	}
	almostEqual(t, rd, 0.2, 1e-12, "RD")

	wantVar := 0.3*0.7/100.0 + 0.1*0.9/100.0
	almostEqual(t, variance, wantVar, 1e-12, "var(RD)")
}

func TestRiskDifference_ZeroTotal(t *testing.T) {
	data := study.BinaryData{Events1: 0, Total1: 0, Events2: 5, Total2: 50}
	_, _, err := RiskDifference(data)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for zero total, got %v", err)
	}
}
