package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gometa/domain/core"
	"gometa/domain/study"
)

// JSONBMap is a custom type for PostgreSQL JSONB columns that maps to map[string]interface{}
type JSONBMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONBMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONBMap)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*j = make(JSONBMap)
		return nil
	}

	if len(bytes) == 0 {
		*j = make(JSONBMap)
		return nil
	}

	result := make(JSONBMap)
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// Review is one systematic review project: the unit studies belong to and
// analyses are configured against.
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Question  string    `json:"question" db:"question"`
	Measure   string    `json:"measure" db:"measure"` // meta.Measure
	Method    string    `json:"method" db:"method"`   // meta.Model
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewReview creates a review with defaults applied
func NewReview(title, question, measure, method string) *Review {
	now := time.Now()
	return &Review{
		ID:        uuid.New(),
		Title:     title,
		Question:  question,
		Measure:   measure,
		Method:    method,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StudyRow is the persisted form of a study record. The raw input lives in
// a JSONB payload keyed by input mode so the three shapes share one table.
type StudyRow struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	ReviewID  uuid.UUID      `json:"review_id" db:"review_id"`
	Label     string         `json:"label" db:"label"`
	Year      sql.NullInt64  `json:"year" db:"year"`
	Subgroup  sql.NullString `json:"subgroup" db:"subgroup"`
	InputMode string         `json:"input_mode" db:"input_mode"`
	Payload   JSONBMap       `json:"payload" db:"payload"`
	Excluded  bool           `json:"excluded" db:"excluded"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// StudyRowFromRecord converts a domain record for persistence
func StudyRowFromRecord(reviewID uuid.UUID, rec study.Record) (*StudyRow, error) {
	id, err := uuid.Parse(rec.ID.String())
	if err != nil {
		return nil, fmt.Errorf("study id is not a UUID: %w", err)
	}

	raw, err := json.Marshal(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("encoding study payload: %w", err)
	}
	payload := make(JSONBMap)
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("encoding study payload: %w", err)
	}

	now := time.Now()
	return &StudyRow{
		ID:        id,
		ReviewID:  reviewID,
		Label:     rec.Label,
		Year:      sql.NullInt64{Int64: int64(rec.Year), Valid: rec.Year > 0},
		Subgroup:  sql.NullString{String: rec.Subgroup, Valid: rec.Subgroup != ""},
		InputMode: string(rec.Data.Mode()),
		Payload:   payload,
		Excluded:  rec.Excluded,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ToRecord decodes the JSONB payload back into the domain sum type
func (s *StudyRow) ToRecord() (study.Record, error) {
	mode, err := study.ParseInputMode(s.InputMode)
	if err != nil {
		return study.Record{}, err
	}

	raw, err := json.Marshal(map[string]interface{}(s.Payload))
	if err != nil {
		return study.Record{}, fmt.Errorf("decoding study payload: %w", err)
	}

	var data study.RawData
	switch mode {
	case study.ModeContinuous:
		var d study.ContinuousData
		if err := json.Unmarshal(raw, &d); err != nil {
			return study.Record{}, fmt.Errorf("decoding continuous payload: %w", err)
		}
		data = d
	case study.ModeBinary:
		var d study.BinaryData
		if err := json.Unmarshal(raw, &d); err != nil {
			return study.Record{}, fmt.Errorf("decoding binary payload: %w", err)
		}
		data = d
	case study.ModePrecalculated:
		var d study.PrecalculatedData
		if err := json.Unmarshal(raw, &d); err != nil {
			return study.Record{}, fmt.Errorf("decoding precalculated payload: %w", err)
		}
		data = d
	}

	rec := study.Record{
		ID:       core.StudyID(s.ID.String()),
		Label:    s.Label,
		Subgroup: s.Subgroup.String,
		Data:     data,
		Excluded: s.Excluded,
	}
	if s.Year.Valid {
		rec.Year = int(s.Year.Int64)
	}
	return rec, nil
}

// AnalysisRun is the persisted snapshot of one pooled result. Weights and
// heterogeneity land in JSONB; superseded runs stay for the audit trail.
type AnalysisRun struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ReviewID    uuid.UUID `json:"review_id" db:"review_id"`
	AnalysisKey string    `json:"analysis_key" db:"analysis_key"` // main / subgroup:<name> / sensitivity:<id>
	Measure     string    `json:"measure" db:"measure"`
	Method      string    `json:"method" db:"method"`
	Effect      float64   `json:"effect" db:"effect"` // canonical scale
	SE          float64   `json:"se" db:"se"`
	CILower     float64   `json:"ci_lower" db:"ci_lower"`
	CIUpper     float64   `json:"ci_upper" db:"ci_upper"`
	Z           float64   `json:"z" db:"z"`
	PValue      float64   `json:"p_value" db:"p_value"`
	Q           float64   `json:"q" db:"q"`
	DF          int       `json:"df" db:"df"`
	QPValue     float64   `json:"q_p_value" db:"q_p_value"`
	I2          float64   `json:"i2" db:"i2"`
	Tau2        float64   `json:"tau2" db:"tau2"`
	K           int       `json:"k" db:"k"`
	Weights     JSONBMap  `json:"weights" db:"weights"`
	Excluded    JSONBMap  `json:"excluded" db:"excluded"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
