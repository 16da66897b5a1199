package plot

import (
	"gometa/domain/core"
	"gometa/domain/meta"
)

// FunnelPoint is one study plotted at (effect, standard error)
type FunnelPoint struct {
	StudyID core.StudyID `json:"study_id"`
	Effect  float64      `json:"effect"`
	SE      float64      `json:"se"`
}

// Line is a straight segment in (effect, SE) space
type Line struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// FunnelLayout is the funnel plot geometry: the study point cloud, a
// vertical line at the pooled effect, and the two pseudo-95%-CI boundary
// diagonals from SE=0 down to the largest observed SE.
type FunnelLayout struct {
	Points        []FunnelPoint `json:"points"`
	PooledEffect  float64       `json:"pooled_effect"`
	BoundaryLeft  Line          `json:"boundary_left"`
	BoundaryRight Line          `json:"boundary_right"`
	MaxSE         float64       `json:"max_se"`
	MeasureLabel  string        `json:"measure_label"`
}

const funnelZ = 1.96

// Funnel lays out the publication-bias funnel for one pooled result
func Funnel(result *meta.PooledResult) *FunnelLayout {
	layout := &FunnelLayout{
		PooledEffect: result.NaturalEffect(),
		MeasureLabel: result.Measure.Label(),
	}

	for _, row := range result.DisplayRows() {
		layout.Points = append(layout.Points, FunnelPoint{
			StudyID: row.StudyID,
			Effect:  row.Effect,
			SE:      row.SE,
		})
		if row.SE > layout.MaxSE {
			layout.MaxSE = row.SE
		}
	}

	// Pseudo-CI boundary: pooledEffect ± 1.96·SE, straight in SE, so the
	// two endpoints define each diagonal.
	layout.BoundaryLeft = Line{
		X0: layout.PooledEffect, Y0: 0,
		X1: layout.PooledEffect - funnelZ*layout.MaxSE, Y1: layout.MaxSE,
	}
	layout.BoundaryRight = Line{
		X0: layout.PooledEffect, Y0: 0,
		X1: layout.PooledEffect + funnelZ*layout.MaxSE, Y1: layout.MaxSE,
	}

	return layout
}
