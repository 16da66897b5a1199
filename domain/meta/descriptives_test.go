package meta

import (
	"math"
	"testing"
)

func TestDescribe(t *testing.T) {
	estimates := []Estimate{
		est("a", 0.2, 0.04),
		est("b", 0.6, 0.09),
		est("c", 0.4, 0.01),
	}
	p, err := Describe(estimates)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	if p.K != 3 {
		t.Errorf("expected K = 3, got %d", p.K)
	}
	almostEqual(t, p.MeanEffect, 0.4, 1e-12, "mean effect")
	almostEqual(t, p.MedianEffect, 0.4, 1e-12, "median effect")
	almostEqual(t, p.MinEffect, 0.2, 1e-12, "min effect")
	almostEqual(t, p.MaxEffect, 0.6, 1e-12, "max effect")
	almostEqual(t, p.MinSE, 0.1, 1e-12, "min SE")
	almostEqual(t, p.MaxSE, math.Sqrt(0.09), 1e-12, "max SE")
}

func TestDescribe_Empty(t *testing.T) {
	p, err := Describe(nil)
	if err != nil {
		t.Fatalf("Describe on empty input failed: %v", err)
	}
	if p.K != 0 {
		t.Errorf("expected zero profile, got %+v", p)
	}
}
