package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gometa/domain/core"
	"gometa/models"
	"gometa/ports"
)

// AnalysisRepositoryImpl implements AnalysisRepository for PostgreSQL
type AnalysisRepositoryImpl struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new PostgreSQL analysis repository
func NewAnalysisRepository(db *sqlx.DB) ports.AnalysisRepository {
	return &AnalysisRepositoryImpl{db: db}
}

// SaveRun inserts a pooled-result snapshot. Runs are append-only; a new
// run supersedes rather than mutates the previous one.
func (r *AnalysisRepositoryImpl) SaveRun(ctx context.Context, run *models.AnalysisRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (
			id, review_id, analysis_key, measure, method,
			effect, se, ci_lower, ci_upper, z, p_value,
			q, df, q_p_value, i2, tau2, k, weights, excluded, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`, run.ID, run.ReviewID, run.AnalysisKey, run.Measure, run.Method,
		run.Effect, run.SE, run.CILower, run.CIUpper, run.Z, run.PValue,
		run.Q, run.DF, run.QPValue, run.I2, run.Tau2, run.K, run.Weights, run.Excluded, run.CreatedAt)
	return err
}

// GetLatest returns the most recent run for one analysis key
func (r *AnalysisRepositoryImpl) GetLatest(ctx context.Context, reviewID uuid.UUID, analysisKey string) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	err := r.db.GetContext(ctx, &run, `
		SELECT id, review_id, analysis_key, measure, method,
		       effect, se, ci_lower, ci_upper, z, p_value,
		       q, df, q_p_value, i2, tau2, k, weights, excluded, created_at
		FROM analysis_runs
		WHERE review_id = $1 AND analysis_key = $2
		ORDER BY created_at DESC LIMIT 1
	`, reviewID, analysisKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListByReview returns a review's runs, newest first
func (r *AnalysisRepositoryImpl) ListByReview(ctx context.Context, reviewID uuid.UUID, limit int) ([]*models.AnalysisRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []*models.AnalysisRun
	err := r.db.SelectContext(ctx, &runs, `
		SELECT id, review_id, analysis_key, measure, method,
		       effect, se, ci_lower, ci_upper, z, p_value,
		       q, df, q_p_value, i2, tau2, k, weights, excluded, created_at
		FROM analysis_runs
		WHERE review_id = $1
		ORDER BY created_at DESC LIMIT $2
	`, reviewID, limit)
	return runs, err
}
