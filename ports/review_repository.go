package ports

import (
	"context"

	"github.com/google/uuid"

	"gometa/models"
)

// ReviewRepository persists systematic review projects
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	List(ctx context.Context, limit int) ([]*models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StudyRepository persists per-review study rows
type StudyRepository interface {
	Create(ctx context.Context, row *models.StudyRow) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StudyRow, error)
	ListByReview(ctx context.Context, reviewID uuid.UUID) ([]*models.StudyRow, error)
	Update(ctx context.Context, row *models.StudyRow) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AnalysisRepository persists pooled-result snapshots
type AnalysisRepository interface {
	SaveRun(ctx context.Context, run *models.AnalysisRun) error
	GetLatest(ctx context.Context, reviewID uuid.UUID, analysisKey string) (*models.AnalysisRun, error)
	ListByReview(ctx context.Context, reviewID uuid.UUID, limit int) ([]*models.AnalysisRun, error)
}
