package excel

import (
	"gometa/domain/study"
)

// RowError reports one sheet row that could not be imported. Row numbers
// are 1-based and include the header row, matching what the user sees.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult is the outcome of reading one study sheet. Row failures are
// collected, never fatal; the caller decides what to do with a partial set.
type ImportResult struct {
	Mode     study.InputMode `json:"mode"`
	Records  []study.Record  `json:"records"`
	Errors   []RowError      `json:"errors,omitempty"`
	RowsRead int             `json:"rows_read"`
}

// column layouts for the three supported row shapes
var (
	continuousHeader    = []string{"study", "year", "n1", "mean1", "sd1", "n2", "mean2", "sd2"}
	binaryHeader        = []string{"study", "year", "events1", "total1", "events2", "total2"}
	precalculatedHeader = []string{"study", "year", "effect", "se"}
)
