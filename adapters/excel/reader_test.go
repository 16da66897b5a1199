package excel

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gometa/domain/study"
	"gometa/internal/errors"
)

func TestParseRows_ContinuousWithSubgroup(t *testing.T) {
	rows := [][]string{
		{"Study", "Year", "N1", "Mean1", "SD1", "N2", "Mean2", "SD2", "Subgroup"},
		{"Alpha", "2019", "40", "12.5", "3.1", "42", "11.0", "2.9", "high-dose"},
		{"Bravo", "2020", "55", "13.1", "2.8", "50", "12.2", "3.0", ""},
	}

	result, err := ParseRows(rows)
	if err != nil {
		t.Fatalf("ParseRows failed: %v", err)
	}
	if result.Mode != study.ModeContinuous {
		t.Fatalf("expected continuous mode, got %s", result.Mode)
	}
	if result.RowsRead != 2 || len(result.Records) != 2 || len(result.Errors) != 0 {
		t.Fatalf("rows=%d records=%d errors=%d", result.RowsRead, len(result.Records), len(result.Errors))
	}

	rec := result.Records[0]
	if rec.Label != "Alpha" || rec.Year != 2019 || rec.Subgroup != "high-dose" {
		t.Errorf("unexpected record metadata: %+v", rec)
	}
	data, ok := rec.Data.(study.ContinuousData)
	if !ok {
		t.Fatalf("expected ContinuousData, got %T", rec.Data)
	}
	if data.N1 != 40 || data.Mean1 != 12.5 || data.SD2 != 2.9 {
		t.Errorf("unexpected continuous values: %+v", data)
	}
}

func TestParseRows_Binary(t *testing.T) {
	rows := [][]string{
		{"study", "year", "events1", "total1", "events2", "total2"},
		{"Charlie", "2018", "15", "50", "35", "55"},
	}

	result, err := ParseRows(rows)
	if err != nil {
		t.Fatalf("ParseRows failed: %v", err)
	}
	if result.Mode != study.ModeBinary {
		t.Fatalf("expected binary mode, got %s", result.Mode)
	}
	data := result.Records[0].Data.(study.BinaryData)
	if data.Events1 != 15 || data.Total1 != 50 || data.Events2 != 35 || data.Total2 != 55 {
		t.Errorf("unexpected binary values: %+v", data)
	}
}

func TestParseRows_Precalculated(t *testing.T) {
	rows := [][]string{
		{"study", "year", "effect", "se"},
		{"Delta", "", "0.45", "0.12"},
	}

	result, err := ParseRows(rows)
	if err != nil {
		t.Fatalf("ParseRows failed: %v", err)
	}
	if result.Mode != study.ModePrecalculated {
		t.Fatalf("expected precalculated mode, got %s", result.Mode)
	}
	rec := result.Records[0]
	if rec.Year != 0 {
		t.Errorf("blank year should stay 0, got %d", rec.Year)
	}
	data := rec.Data.(study.PrecalculatedData)
	if data.Effect != 0.45 || data.StandardError != 0.12 {
		t.Errorf("unexpected precalculated values: %+v", data)
	}
}

func TestParseRows_CollectsRowErrors(t *testing.T) {
	rows := [][]string{
		{"study", "year", "events1", "total1", "events2", "total2"},
		{"Good", "2018", "15", "50", "35", "55"},
		{"", "2019", "10", "40", "12", "41"},         // missing label
		{"BadYear", "soon", "10", "40", "12", "41"},  // unparseable year
		{"BadCount", "2020", "x", "40", "12", "41"},  // non-numeric cell
		{"Short", "2021", "10", "40"},                // missing columns
		{"", "", "", "", "", ""},                     // blank, skipped silently
	}

	result, err := ParseRows(rows)
	if err != nil {
		t.Fatalf("ParseRows failed: %v", err)
	}
	if result.RowsRead != 5 {
		t.Errorf("expected 5 data rows read, got %d", result.RowsRead)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 good record, got %d", len(result.Records))
	}
	if len(result.Errors) != 4 {
		t.Fatalf("expected 4 row errors, got %d: %+v", len(result.Errors), result.Errors)
	}

	// Row numbers are 1-based and include the header.
	if result.Errors[0].Row != 3 {
		t.Errorf("first error should be row 3, got %d", result.Errors[0].Row)
	}
	if !strings.Contains(result.Errors[1].Message, "year") {
		t.Errorf("expected year error, got %q", result.Errors[1].Message)
	}
}

func TestParseRows_UnknownHeader(t *testing.T) {
	_, err := ParseRows([][]string{{"foo", "bar", "baz"}})
	if err == nil {
		t.Fatal("expected error for unknown header")
	}
	if errors.GetCode(err) != errors.CodeImportError {
		t.Errorf("expected import error code, got %v", errors.GetCode(err))
	}
}

func TestParseRows_EmptySheet(t *testing.T) {
	_, err := ParseRows(nil)
	if err == nil {
		t.Fatal("expected error for empty sheet")
	}
}

func TestParseRows_HeaderCaseAndWhitespace(t *testing.T) {
	rows := [][]string{
		{" Study ", "YEAR", "Effect", " SE ", ""},
		{"Echo", "2022", "1.8", "0.2"},
	}
	result, err := ParseRows(rows)
	if err != nil {
		t.Fatalf("header normalization failed: %v", err)
	}
	if result.Mode != study.ModePrecalculated {
		t.Errorf("expected precalculated mode, got %s", result.Mode)
	}
}

func TestStudyReader_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studies.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating temp CSV: %v", err)
	}
	w := csv.NewWriter(f)
	records := [][]string{
		{"study", "year", "events1", "total1", "events2", "total2", "subgroup"},
		{"Foxtrot", "2017", "8", "40", "15", "42", "early"},
		{"Golf", "2019", "30", "150", "45", "148", "late"},
	}
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("writing temp CSV: %v", err)
	}
	f.Close()

	result, err := NewStudyReader(path).ReadStudies()
	if err != nil {
		t.Fatalf("ReadStudies failed: %v", err)
	}
	if result.Mode != study.ModeBinary || len(result.Records) != 2 {
		t.Fatalf("mode=%s records=%d", result.Mode, len(result.Records))
	}
	if result.Records[0].Subgroup != "early" || result.Records[1].Subgroup != "late" {
		t.Errorf("subgroup column not carried through: %+v", result.Records)
	}
}

func TestStudyReader_MissingFile(t *testing.T) {
	_, err := NewStudyReader(filepath.Join(t.TempDir(), "absent.xlsx")).ReadStudies()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.GetCode(err) != errors.CodeImportError {
		t.Errorf("expected import error code, got %v", errors.GetCode(err))
	}
}
