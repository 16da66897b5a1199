package meta

import (
	"errors"
	"testing"

	"gometa/domain/core"
)

func TestAnalyzeHeterogeneity_IdenticalStudies(t *testing.T) {
	estimates := []Estimate{
		est("a", 0.5, 0.04),
		est("b", 0.5, 0.04),
		est("c", 0.5, 0.04),
	}
	h, err := AnalyzeHeterogeneity(estimates)
	if err != nil {
		t.Fatalf("AnalyzeHeterogeneity failed: %v", err)
	}

	almostEqual(t, h.Q, 0, 1e-12, "Q")
	almostEqual(t, h.I2, 0, 1e-12, "I2")
	almostEqual(t, h.Tau2, 0, 1e-12, "tau2")
	if h.DF != 2 {
		t.Errorf("expected df = 2, got %d", h.DF)
	}
}

func TestAnalyzeHeterogeneity_Bounds(t *testing.T) {
	sets := [][]Estimate{
		{est("a", 0.1, 0.05), est("b", 0.15, 0.04)},
		{est("a", 2.0, 0.01), est("b", -2.0, 0.01), est("c", 0.1, 0.02)},
		{est("a", 0.3, 0.5), est("b", 0.31, 0.4), est("c", 0.29, 0.6), est("d", 0.3, 0.3)},
	}

	for i, estimates := range sets {
		h, err := AnalyzeHeterogeneity(estimates)
		if err != nil {
			t.Fatalf("set %d: AnalyzeHeterogeneity failed: %v", i, err)
		}
		if h.I2 < 0 || h.I2 > 100 {
			t.Errorf("set %d: I2 out of [0,100]: %g", i, h.I2)
		}
		if h.Tau2 < 0 {
			t.Errorf("set %d: negative tau2: %g", i, h.Tau2)
		}
		if h.QPValue < 0 || h.QPValue > 1 {
			t.Errorf("set %d: Q p-value out of [0,1]: %g", i, h.QPValue)
		}
		if h.DF != len(estimates)-1 {
			t.Errorf("set %d: expected df = %d, got %d", i, len(estimates)-1, h.DF)
		}
	}
}

func TestAnalyzeHeterogeneity_HighDispersion(t *testing.T) {
	// Precise studies in sharp disagreement should register as
	// considerable heterogeneity with positive tau2.
	h, err := AnalyzeHeterogeneity([]Estimate{
		est("a", 1.0, 0.005),
		est("b", -1.0, 0.005),
		est("c", 0.8, 0.005),
	})
	if err != nil {
		t.Fatalf("AnalyzeHeterogeneity failed: %v", err)
	}
	if h.I2 < 75 {
		t.Errorf("expected considerable I2, got %g", h.I2)
	}
	if h.Tau2 <= 0 {
		t.Errorf("expected positive tau2, got %g", h.Tau2)
	}
	if h.Band() != "considerable" {
		t.Errorf("expected considerable band, got %q", h.Band())
	}
}

func TestAnalyzeHeterogeneity_TooFew(t *testing.T) {
	_, err := AnalyzeHeterogeneity([]Estimate{est("only", 0.5, 0.1)})
	if !errors.Is(err, core.ErrInsufficientStudies) {
		t.Fatalf("expected ErrInsufficientStudies, got %v", err)
	}
}

func TestHeterogeneityBand(t *testing.T) {
	cases := []struct {
		i2   float64
		band string
	}{
		{0, "low"},
		{24.9, "low"},
		{25, "moderate"},
		{49.9, "moderate"},
		{50, "substantial"},
		{74.9, "substantial"},
		{75, "considerable"},
		{100, "considerable"},
	}
	for _, tc := range cases {
		h := Heterogeneity{I2: tc.i2}
		if got := h.Band(); got != tc.band {
			t.Errorf("I2 %g: expected %q, got %q", tc.i2, tc.band, got)
		}
	}
}
