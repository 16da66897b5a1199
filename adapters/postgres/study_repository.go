package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gometa/domain/core"
	"gometa/models"
	"gometa/ports"
)

// StudyRepositoryImpl implements StudyRepository for PostgreSQL
type StudyRepositoryImpl struct {
	db *sqlx.DB
}

// NewStudyRepository creates a new PostgreSQL study repository
func NewStudyRepository(db *sqlx.DB) ports.StudyRepository {
	return &StudyRepositoryImpl{db: db}
}

// Create inserts a study row
func (r *StudyRepositoryImpl) Create(ctx context.Context, row *models.StudyRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO studies (id, review_id, label, year, subgroup, input_mode, payload, excluded, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, row.ID, row.ReviewID, row.Label, row.Year, row.Subgroup, row.InputMode, row.Payload, row.Excluded, row.CreatedAt, row.UpdatedAt)
	return err
}

// GetByID retrieves a study row by id
func (r *StudyRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.StudyRow, error) {
	var row models.StudyRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, review_id, label, year, subgroup, input_mode, payload, excluded, created_at, updated_at
		FROM studies WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrStudyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByReview returns a review's studies in insertion order
func (r *StudyRepositoryImpl) ListByReview(ctx context.Context, reviewID uuid.UUID) ([]*models.StudyRow, error) {
	var rows []*models.StudyRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, review_id, label, year, subgroup, input_mode, payload, excluded, created_at, updated_at
		FROM studies WHERE review_id = $1 ORDER BY created_at, id
	`, reviewID)
	return rows, err
}

// Update rewrites a study row's mutable fields
func (r *StudyRepositoryImpl) Update(ctx context.Context, row *models.StudyRow) error {
	row.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, `
		UPDATE studies
		SET label = $2, year = $3, subgroup = $4, input_mode = $5, payload = $6, excluded = $7, updated_at = $8
		WHERE id = $1
	`, row.ID, row.Label, row.Year, row.Subgroup, row.InputMode, row.Payload, row.Excluded, row.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return core.ErrStudyNotFound
	}
	return nil
}

// Delete removes a study row
func (r *StudyRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM studies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return core.ErrStudyNotFound
	}
	return nil
}
