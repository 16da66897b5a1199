package plot

import (
	"math"
	"testing"

	"gometa/domain/core"
	"gometa/domain/meta"
	"gometa/domain/study"
)

func binaryRecord(id, label string, year, e1, t1, e2, t2 int) study.Record {
	return study.Record{
		ID:    core.StudyID(id),
		Label: label,
		Year:  year,
		Data:  study.BinaryData{Events1: e1, Total1: t1, Events2: e2, Total2: t2},
	}
}

func orFixture(t *testing.T) ([]study.Record, *meta.PooledResult) {
	t.Helper()
	studies := []study.Record{
		binaryRecord("s1", "Alpha", 2019, 12, 60, 22, 58),
		binaryRecord("s2", "Bravo", 2021, 30, 150, 45, 148),
		binaryRecord("s3", "Charlie", 2020, 8, 40, 15, 42),
	}
	res, err := meta.Run(studies, meta.MeasureOR, meta.ModelFixed)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return studies, res
}

func TestForest_RowOrderAndReference(t *testing.T) {
	studies, res := orFixture(t)
	layout := Forest(studies, res)

	if len(layout.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(layout.Rows))
	}
	for i, rec := range studies {
		if layout.Rows[i].StudyID != rec.ID {
			t.Errorf("row %d: expected study %s, got %s", i, rec.ID, layout.Rows[i].StudyID)
		}
	}
	if layout.Rows[0].Label != "Alpha (2019)" {
		t.Errorf("expected display name with year, got %q", layout.Rows[0].Label)
	}

	if layout.ReferenceLine != 1 {
		t.Errorf("OR null line must sit at 1, got %g", layout.ReferenceLine)
	}
	if !layout.LogAxis {
		t.Error("ratio measure must request a log axis")
	}
}

func TestForest_MarkerSizes(t *testing.T) {
	studies, res := orFixture(t)
	layout := Forest(studies, res)

	sawMax := false
	for _, row := range layout.Rows {
		if row.MarkerSize <= 0 || row.MarkerSize > 1 {
			t.Errorf("marker size for %s out of (0,1]: %g", row.StudyID, row.MarkerSize)
		}
		if math.Abs(row.MarkerSize-1) < 1e-12 {
			sawMax = true
		}
	}
	if !sawMax {
		t.Error("the heaviest study must get marker size 1")
	}

	// Bravo has by far the largest sample, so it carries the most weight.
	if layout.Rows[1].MarkerSize != 1 {
		t.Errorf("expected Bravo to be heaviest, marker size %g", layout.Rows[1].MarkerSize)
	}
}

func TestForest_DiamondMatchesPooled(t *testing.T) {
	studies, res := orFixture(t)
	layout := Forest(studies, res)

	if got, want := layout.Summary.Center, res.NaturalEffect(); math.Abs(got-want) > 1e-12 {
		t.Errorf("diamond center %g, pooled %g", got, want)
	}
	lo, hi := res.NaturalCI()
	if layout.Summary.Left != lo || layout.Summary.Right != hi {
		t.Errorf("diamond bounds (%g, %g) do not match pooled CI (%g, %g)",
			layout.Summary.Left, layout.Summary.Right, lo, hi)
	}
}

func TestForest_AxisSpansEverything(t *testing.T) {
	studies, res := orFixture(t)
	layout := Forest(studies, res)

	within := func(v float64, label string) {
		if v < layout.AxisMin || v > layout.AxisMax {
			t.Errorf("%s %g outside axis [%g, %g]", label, v, layout.AxisMin, layout.AxisMax)
		}
	}
	for _, row := range layout.Rows {
		within(row.CILower, "row CI lower")
		within(row.CIUpper, "row CI upper")
	}
	within(layout.Summary.Left, "diamond left")
	within(layout.Summary.Right, "diamond right")
	within(layout.ReferenceLine, "reference line")
	if layout.AxisMin >= layout.AxisMax {
		t.Errorf("degenerate axis [%g, %g]", layout.AxisMin, layout.AxisMax)
	}
}

func TestForest_SkipsExcludedStudies(t *testing.T) {
	studies, _ := orFixture(t)
	studies[2].Excluded = true
	res, err := meta.Run(studies, meta.MeasureOR, meta.ModelFixed)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	layout := Forest(studies, res)
	if len(layout.Rows) != 2 {
		t.Fatalf("expected 2 rows after exclusion, got %d", len(layout.Rows))
	}
	for _, row := range layout.Rows {
		if row.StudyID == "s3" {
			t.Error("excluded study must not appear in the forest")
		}
	}
}

func TestFunnel_Geometry(t *testing.T) {
	_, res := orFixture(t)
	layout := Funnel(res)

	if len(layout.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(layout.Points))
	}

	maxSE := 0.0
	for _, p := range layout.Points {
		if p.SE <= 0 {
			t.Errorf("non-positive SE for %s: %g", p.StudyID, p.SE)
		}
		if p.SE > maxSE {
			maxSE = p.SE
		}
	}
	if layout.MaxSE != maxSE {
		t.Errorf("MaxSE %g, largest observed %g", layout.MaxSE, maxSE)
	}

	// Both diagonals start at the pooled effect at SE=0 and end
	// pooled ± 1.96·MaxSE at the bottom.
	if layout.BoundaryLeft.X0 != layout.PooledEffect || layout.BoundaryLeft.Y0 != 0 {
		t.Errorf("left boundary apex (%g, %g)", layout.BoundaryLeft.X0, layout.BoundaryLeft.Y0)
	}
	wantLeft := layout.PooledEffect - 1.96*layout.MaxSE
	if math.Abs(layout.BoundaryLeft.X1-wantLeft) > 1e-12 || layout.BoundaryLeft.Y1 != layout.MaxSE {
		t.Errorf("left boundary foot (%g, %g), want (%g, %g)",
			layout.BoundaryLeft.X1, layout.BoundaryLeft.Y1, wantLeft, layout.MaxSE)
	}
	wantRight := layout.PooledEffect + 1.96*layout.MaxSE
	if math.Abs(layout.BoundaryRight.X1-wantRight) > 1e-12 || layout.BoundaryRight.Y1 != layout.MaxSE {
		t.Errorf("right boundary foot (%g, %g), want (%g, %g)",
			layout.BoundaryRight.X1, layout.BoundaryRight.Y1, wantRight, layout.MaxSE)
	}

	if got, want := layout.PooledEffect, res.NaturalEffect(); got != want {
		t.Errorf("pooled line at %g, result %g", got, want)
	}
}
