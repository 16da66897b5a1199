package export

import (
	"strings"
	"testing"

	"gometa/domain/meta"
	"gometa/domain/study"
)

func fixture(t *testing.T) ([]study.Record, *meta.PooledResult) {
	t.Helper()
	studies := []study.Record{
		{ID: "s1", Label: "Alpha", Year: 2019,
			Data: study.BinaryData{Events1: 12, Total1: 60, Events2: 22, Total2: 58}},
		{ID: "s2", Label: "Bravo", Year: 2021,
			Data: study.BinaryData{Events1: 30, Total1: 150, Events2: 45, Total2: 148}},
		{ID: "s3", Label: "Broken", Year: 2020,
			Data: study.BinaryData{Events1: 0, Total1: 40, Events2: 15, Total2: 42}},
	}
	res, err := meta.Run(studies, meta.MeasureOR, meta.ModelFixed)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return studies, res
}

func TestSummaryText(t *testing.T) {
	studies, res := fixture(t)
	text := SummaryText("Late complications", studies, res)

	for _, want := range []string{
		"Late complications",
		"Odds Ratio",
		"Studies included: 2 (1 not computable)",
		"Pooled effect:",
		"95% CI",
		"Heterogeneity: Q =",
		"Excluded studies:",
		"Broken (2020)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestSummaryMarkdown(t *testing.T) {
	studies, res := fixture(t)
	md := SummaryMarkdown("Late complications", studies, res)

	for _, want := range []string{
		"## Late complications",
		"| Study | Effect | 95% CI | Weight |",
		"| Alpha (2019) |",
		"| Bravo (2021) |",
		"**Not computable:** Broken (2020)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "| Broken") {
		t.Error("excluded study must not get a weight table row")
	}
}

func TestSummaryText_UnknownStudyFallsBackToID(t *testing.T) {
	studies, res := fixture(t)
	// Render with an empty label index; exclusions fall back to the raw id.
	text := SummaryText("t", nil, res)
	if !strings.Contains(text, string(studies[2].ID)) {
		t.Errorf("expected raw id fallback in:\n%s", text)
	}
}

func TestFormatP(t *testing.T) {
	if got := formatP(0.0004); got != "< 0.001" {
		t.Errorf("formatP(0.0004) = %q", got)
	}
	if got := formatP(0.042); got != "0.042" {
		t.Errorf("formatP(0.042) = %q", got)
	}
}
