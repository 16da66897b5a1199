package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gometa/domain/study"
	"gometa/internal/errors"
)

// StudyReader reads study rows from Excel and CSV files. The header row
// determines which of the three input shapes the sheet carries.
type StudyReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewStudyReader creates a reader for the given file path
func NewStudyReader(filePath string) *StudyReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &StudyReader{filePath: filePath, fileType: fileType}
}

// ReadStudies reads every data row, skipping and reporting rows that fail
// validation. The sheet's shape comes from its header.
func (r *StudyReader) ReadStudies() (*ImportResult, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.ImportError(fmt.Sprintf("file not found: %s", r.filePath), err)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, errors.ImportError(fmt.Sprintf("unsupported file type: %s", r.fileType), nil)
	}
	if err != nil {
		return nil, err
	}

	return ParseRows(rows)
}

func (r *StudyReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.ImportError("failed to open CSV file", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, validated per row
	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.ImportError("failed to read CSV file", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func (r *StudyReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.ImportError("failed to open Excel file", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.ImportError("workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.ImportError(fmt.Sprintf("failed to read sheet %s", sheet), err)
	}
	return rows, nil
}

// ParseRows converts raw sheet rows into study records. The first row must
// be one of the three known headers, optionally followed by a "subgroup"
// column.
func ParseRows(rows [][]string) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, errors.ImportError("sheet is empty", nil)
	}

	header := normalizeHeader(rows[0])
	mode, hasSubgroup, err := detectMode(header)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Mode: mode}
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header
		if isBlank(row) {
			continue
		}
		result.RowsRead++

		rec, err := parseRow(mode, hasSubgroup, row)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		result.Records = append(result.Records, rec)
	}

	return result, nil
}

func detectMode(header []string) (study.InputMode, bool, error) {
	match := func(expected []string) (bool, bool) {
		if len(header) == len(expected) && equalHeaders(header, expected) {
			return true, false
		}
		withSub := append(append([]string{}, expected...), "subgroup")
		if len(header) == len(withSub) && equalHeaders(header, withSub) {
			return true, true
		}
		return false, false
	}

	if ok, sub := match(continuousHeader); ok {
		return study.ModeContinuous, sub, nil
	}
	if ok, sub := match(binaryHeader); ok {
		return study.ModeBinary, sub, nil
	}
	if ok, sub := match(precalculatedHeader); ok {
		return study.ModePrecalculated, sub, nil
	}
	return "", false, errors.ImportError(
		fmt.Sprintf("unrecognized header %v; expected one of %v, %v or %v (optionally + subgroup)",
			header, continuousHeader, binaryHeader, precalculatedHeader), nil)
}

func parseRow(mode study.InputMode, hasSubgroup bool, row []string) (study.Record, error) {
	get := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	label := get(0)
	if label == "" {
		return study.Record{}, fmt.Errorf("study name is empty")
	}
	year := 0
	if y := get(1); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			return study.Record{}, fmt.Errorf("invalid year %q", y)
		}
		year = parsed
	}

	var data study.RawData
	var subgroupCol int

	switch mode {
	case study.ModeContinuous:
		vals, err := parseFloats(row, 2, 8)
		if err != nil {
			return study.Record{}, err
		}
		data = study.ContinuousData{
			N1: int(vals[0]), Mean1: vals[1], SD1: vals[2],
			N2: int(vals[3]), Mean2: vals[4], SD2: vals[5],
		}
		subgroupCol = 8
	case study.ModeBinary:
		vals, err := parseFloats(row, 2, 6)
		if err != nil {
			return study.Record{}, err
		}
		data = study.BinaryData{
			Events1: int(vals[0]), Total1: int(vals[1]),
			Events2: int(vals[2]), Total2: int(vals[3]),
		}
		subgroupCol = 6
	case study.ModePrecalculated:
		vals, err := parseFloats(row, 2, 4)
		if err != nil {
			return study.Record{}, err
		}
		data = study.PrecalculatedData{Effect: vals[0], StandardError: vals[1]}
		subgroupCol = 4
	}

	subgroup := ""
	if hasSubgroup {
		subgroup = get(subgroupCol)
	}

	return study.NewRecord(label, year, subgroup, data)
}

func parseFloats(row []string, from, to int) ([]float64, error) {
	vals := make([]float64, 0, to-from)
	for i := from; i < to; i++ {
		if i >= len(row) || strings.TrimSpace(row[i]) == "" {
			return nil, fmt.Errorf("missing value in column %d", i+1)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q in column %d", row[i], i+1)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func normalizeHeader(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.ToLower(strings.TrimSpace(cell))
	}
	// trim trailing empty cells Excel likes to append
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func equalHeaders(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
