package models

import (
	"time"

	"github.com/google/uuid"

	"gometa/domain/meta"
)

// NewAnalysisRun snapshots a pooled result for persistence
func NewAnalysisRun(reviewID uuid.UUID, key string, res *meta.PooledResult) *AnalysisRun {
	weights := make(JSONBMap, len(res.Weights))
	for _, w := range res.Weights {
		weights[w.StudyID.String()] = w.Percent
	}
	excluded := make(JSONBMap, len(res.Excluded))
	for _, e := range res.Excluded {
		excluded[e.StudyID.String()] = e.Reason
	}

	return &AnalysisRun{
		ID:          uuid.New(),
		ReviewID:    reviewID,
		AnalysisKey: key,
		Measure:     string(res.Measure),
		Method:      string(res.Model),
		Effect:      res.Effect,
		SE:          res.SE,
		CILower:     res.CILower,
		CIUpper:     res.CIUpper,
		Z:           res.Z,
		PValue:      res.PValue,
		Q:           res.Heterogeneity.Q,
		DF:          res.Heterogeneity.DF,
		QPValue:     res.Heterogeneity.QPValue,
		I2:          res.Heterogeneity.I2,
		Tau2:        res.Heterogeneity.Tau2,
		K:           res.K,
		Weights:     weights,
		Excluded:    excluded,
		CreatedAt:   time.Now(),
	}
}
