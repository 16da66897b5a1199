// Package plot turns pooled results into abstract plot geometry. It never
// renders; an external renderer serializes the layouts to a vector image.
// All ratio-measure values entering this package are already
// back-transformed to the natural scale.
package plot

import (
	"gometa/domain/core"
	"gometa/domain/meta"
	"gometa/domain/study"
)

// ForestRow is one study line of the forest plot
type ForestRow struct {
	StudyID       core.StudyID `json:"study_id"`
	Label         string       `json:"label"`
	Effect        float64      `json:"effect"`
	CILower       float64      `json:"ci_lower"`
	CIUpper       float64      `json:"ci_upper"`
	WeightPercent float64      `json:"weight_percent"`
	MarkerSize    float64      `json:"marker_size"` // proportional to weight, in (0,1]
}

// Diamond is the pooled summary marker; Left and Right are the CI bounds
type Diamond struct {
	Center float64 `json:"center"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// ForestLayout is the full forest plot geometry
type ForestLayout struct {
	Rows          []ForestRow `json:"rows"`
	Summary       Diamond     `json:"summary"`
	ReferenceLine float64     `json:"reference_line"` // the measure's null value
	AxisMin       float64     `json:"axis_min"`
	AxisMax       float64     `json:"axis_max"`
	LogAxis       bool        `json:"log_axis"`
	MeasureLabel  string      `json:"measure_label"`
	ModelLabel    string      `json:"model_label"`
}

// Forest lays out one row per included study in input order plus the
// pooled diamond and the null reference line.
func Forest(studies []study.Record, result *meta.PooledResult) *ForestLayout {
	rows := result.DisplayRows()
	byID := make(map[core.StudyID]meta.DisplayRow, len(rows))
	for _, r := range rows {
		byID[r.StudyID] = r
	}

	maxPct := 0.0
	for _, w := range result.Weights {
		if w.Percent > maxPct {
			maxPct = w.Percent
		}
	}

	layout := &ForestLayout{
		ReferenceLine: result.Measure.Null(),
		LogAxis:       result.Measure.IsRatio(),
		MeasureLabel:  result.Measure.Label(),
		ModelLabel:    result.Model.Label(),
	}

	for _, rec := range studies {
		row, ok := byID[rec.ID]
		if !ok {
			continue // excluded or not computable
		}
		pct := result.WeightPercent(rec.ID)
		size := 0.0
		if maxPct > 0 {
			size = pct / maxPct
		}
		layout.Rows = append(layout.Rows, ForestRow{
			StudyID:       rec.ID,
			Label:         rec.DisplayName(),
			Effect:        row.Effect,
			CILower:       row.CILower,
			CIUpper:       row.CIUpper,
			WeightPercent: pct,
			MarkerSize:    size,
		})
	}

	pooled := result.NaturalEffect()
	lo, hi := result.NaturalCI()
	layout.Summary = Diamond{Center: pooled, Left: lo, Right: hi}

	layout.AxisMin, layout.AxisMax = axisRange(layout)
	return layout
}

// axisRange spans every CI bound, the diamond and the reference line,
// padded by 10% so markers never touch the frame.
func axisRange(l *ForestLayout) (min, max float64) {
	min, max = l.ReferenceLine, l.ReferenceLine
	expand := func(v float64) {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	for _, r := range l.Rows {
		expand(r.CILower)
		expand(r.CIUpper)
	}
	expand(l.Summary.Left)
	expand(l.Summary.Right)

	pad := (max - min) * 0.1
	if pad == 0 {
		pad = 1
	}
	return min - pad, max + pad
}
