package export

import (
	"fmt"
	"strings"

	"gometa/domain/meta"
	"gometa/domain/study"
)

// SummaryText renders a pooled result as the plain-text block used for
// verbatim export: effect, CI, p, then the heterogeneity line.
func SummaryText(title string, studies []study.Record, res *meta.PooledResult) string {
	var b strings.Builder

	effect := res.NaturalEffect()
	lo, hi := res.NaturalCI()

	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "%s, %s\n", res.Measure.Label(), res.Model.Label())
	fmt.Fprintf(&b, "Studies included: %d", res.K)
	if n := len(res.Excluded); n > 0 {
		fmt.Fprintf(&b, " (%d not computable)", n)
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Pooled effect: %.3f (95%% CI %.3f to %.3f)\n", effect, lo, hi)
	fmt.Fprintf(&b, "Z = %.3f, p = %s\n", res.Z, formatP(res.PValue))

	h := res.Heterogeneity
	fmt.Fprintf(&b, "Heterogeneity: Q = %.3f, df = %d, p = %s; I2 = %.1f%% (%s); tau2 = %.4f\n",
		h.Q, h.DF, formatP(h.QPValue), h.I2, h.Band(), h.Tau2)

	if len(res.Excluded) > 0 {
		b.WriteString("\nExcluded studies:\n")
		names := labelIndex(studies)
		for _, e := range res.Excluded {
			fmt.Fprintf(&b, "  - %s: %s\n", nameFor(names, e.StudyID.String()), e.Reason)
		}
	}

	return b.String()
}

// SummaryMarkdown renders the same content as markdown for the UI, with a
// per-study weight table.
func SummaryMarkdown(title string, studies []study.Record, res *meta.PooledResult) string {
	var b strings.Builder

	effect := res.NaturalEffect()
	lo, hi := res.NaturalCI()
	h := res.Heterogeneity

	fmt.Fprintf(&b, "## %s\n\n", title)
	fmt.Fprintf(&b, "**%s**, %s, %d studies\n\n", res.Measure.Label(), res.Model.Label(), res.K)
	fmt.Fprintf(&b, "Pooled effect **%.3f** (95%% CI %.3f to %.3f), Z = %.3f, p = %s\n\n",
		effect, lo, hi, res.Z, formatP(res.PValue))
	fmt.Fprintf(&b, "Heterogeneity: Q = %.3f (df = %d, p = %s), I² = %.1f%% (%s), τ² = %.4f\n\n",
		h.Q, h.DF, formatP(h.QPValue), h.I2, h.Band(), h.Tau2)

	b.WriteString("| Study | Effect | 95% CI | Weight |\n")
	b.WriteString("|---|---|---|---|\n")
	names := labelIndex(studies)
	for _, row := range res.DisplayRows() {
		fmt.Fprintf(&b, "| %s | %.3f | %.3f to %.3f | %.1f%% |\n",
			nameFor(names, row.StudyID.String()), row.Effect, row.CILower, row.CIUpper,
			res.WeightPercent(row.StudyID))
	}

	if len(res.Excluded) > 0 {
		b.WriteString("\n**Not computable:** ")
		parts := make([]string, 0, len(res.Excluded))
		for _, e := range res.Excluded {
			parts = append(parts, nameFor(names, e.StudyID.String()))
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("\n")
	}

	return b.String()
}

// formatP keeps small p-values readable rather than printing 0.000
func formatP(p float64) string {
	if p < 0.001 {
		return "< 0.001"
	}
	return fmt.Sprintf("%.3f", p)
}

func labelIndex(studies []study.Record) map[string]string {
	names := make(map[string]string, len(studies))
	for _, rec := range studies {
		names[rec.ID.String()] = rec.DisplayName()
	}
	return names
}

func nameFor(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
