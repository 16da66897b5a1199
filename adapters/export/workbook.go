package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"gometa/domain/meta"
	"gometa/domain/study"
)

// Workbook serializes a pooled result to an xlsx file with a per-study
// sheet and a summary sheet.
func Workbook(title string, studies []study.Record, res *meta.PooledResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const studySheet = "Studies"
	const summarySheet = "Summary"

	if err := f.SetSheetName("Sheet1", studySheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("creating summary sheet: %w", err)
	}

	header := []interface{}{"Study", "Effect", "CI lower", "CI upper", "SE", "Weight %"}
	if err := f.SetSheetRow(studySheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	names := labelIndex(studies)
	for i, row := range res.DisplayRows() {
		cell := fmt.Sprintf("A%d", i+2)
		values := []interface{}{
			nameFor(names, row.StudyID.String()),
			row.Effect, row.CILower, row.CIUpper, row.SE,
			res.WeightPercent(row.StudyID),
		}
		if err := f.SetSheetRow(studySheet, cell, &values); err != nil {
			return nil, fmt.Errorf("writing study row %d: %w", i+1, err)
		}
	}

	effect := res.NaturalEffect()
	lo, hi := res.NaturalCI()
	h := res.Heterogeneity
	summary := [][]interface{}{
		{"Review", title},
		{"Measure", res.Measure.Label()},
		{"Model", res.Model.Label()},
		{"Studies", res.K},
		{"Pooled effect", effect},
		{"CI lower", lo},
		{"CI upper", hi},
		{"Z", res.Z},
		{"p", res.PValue},
		{"Q", h.Q},
		{"df", h.DF},
		{"Q p-value", h.QPValue},
		{"I2 (%)", h.I2},
		{"tau2", h.Tau2},
	}
	for i, row := range summary {
		cell := fmt.Sprintf("A%d", i+1)
		values := row
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return nil, fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf, nil
}
