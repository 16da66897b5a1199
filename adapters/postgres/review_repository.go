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

// ReviewRepositoryImpl implements ReviewRepository for PostgreSQL
type ReviewRepositoryImpl struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new PostgreSQL review repository
func NewReviewRepository(db *sqlx.DB) ports.ReviewRepository {
	return &ReviewRepositoryImpl{db: db}
}

// Create inserts a new review
func (r *ReviewRepositoryImpl) Create(ctx context.Context, review *models.Review) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (id, title, question, measure, method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, review.ID, review.Title, review.Question, review.Measure, review.Method, review.CreatedAt, review.UpdatedAt)
	return err
}

// GetByID retrieves a review by id
func (r *ReviewRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.GetContext(ctx, &review, `
		SELECT id, title, question, measure, method, created_at, updated_at
		FROM reviews WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// List returns reviews ordered by most recently updated
func (r *ReviewRepositoryImpl) List(ctx context.Context, limit int) ([]*models.Review, error) {
	if limit <= 0 {
		limit = 50
	}
	var reviews []*models.Review
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT id, title, question, measure, method, created_at, updated_at
		FROM reviews ORDER BY updated_at DESC LIMIT $1
	`, limit)
	return reviews, err
}

// Update rewrites a review's mutable fields
func (r *ReviewRepositoryImpl) Update(ctx context.Context, review *models.Review) error {
	review.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, `
		UPDATE reviews SET title = $2, question = $3, measure = $4, method = $5, updated_at = $6
		WHERE id = $1
	`, review.ID, review.Title, review.Question, review.Measure, review.Method, review.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return core.ErrReviewNotFound
	}
	return nil
}

// Delete removes a review and, via cascade, its studies and runs
func (r *ReviewRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return core.ErrReviewNotFound
	}
	return nil
}
