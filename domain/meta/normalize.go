package meta

import (
	"errors"
	"math"

	"gometa/domain/core"
	"gometa/domain/study"
)

// Normalize converts one study record into its canonical (effect, variance)
// estimate for the session's effect measure. Failures are reported as
// *InsufficientDataError carrying the study id; the caller excludes the
// study and keeps pooling over the rest.
func Normalize(rec study.Record, m Measure) (Estimate, error) {
	est, err := normalize(rec, m)
	if err != nil {
		var ide *InsufficientDataError
		if errors.As(err, &ide) {
			ide.StudyID = rec.ID
		}
		return Estimate{}, err
	}
	if !est.Valid() {
		// Should be unreachable given field validation; fatal to this study only.
		kind := core.ErrNonFiniteResult
		if est.Variance <= 0 && !math.IsNaN(est.Variance) {
			kind = core.ErrNegativeVariance
		}
		return Estimate{}, &InsufficientDataError{
			StudyID: rec.ID,
			Reason:  "derived estimate is non-finite or has non-positive variance",
			Kind:    kind,
		}
	}
	return est, nil
}

func normalize(rec study.Record, m Measure) (Estimate, error) {
	switch data := rec.Data.(type) {
	case study.ContinuousData:
		switch m {
		case MeasureSMD:
			g, v, err := HedgesG(data)
			if err != nil {
				return Estimate{}, err
			}
			return NewEstimate(rec.ID, g, v), nil
		case MeasureMD:
			md, v, err := MeanDifference(data)
			if err != nil {
				return Estimate{}, err
			}
			return NewEstimate(rec.ID, md, v), nil
		}
		return Estimate{}, mismatched("continuous data supports SMD or MD, not %s", m.Label())

	case study.BinaryData:
		switch m {
		case MeasureOR:
			logOR, v, err := LogOddsRatio(data)
			if err != nil {
				return Estimate{}, err
			}
			return NewLogEstimate(rec.ID, logOR, v), nil
		case MeasureRR:
			logRR, v, err := LogRiskRatio(data)
			if err != nil {
				return Estimate{}, err
			}
			return NewLogEstimate(rec.ID, logRR, v), nil
		case MeasureRD:
			rd, v, err := RiskDifference(data)
			if err != nil {
				return Estimate{}, err
			}
			return NewEstimate(rec.ID, rd, v), nil
		}
		return Estimate{}, mismatched("binary data supports OR, RR or RD, not %s", m.Label())

	case study.PrecalculatedData:
		return normalizePrecalculated(rec, data, m)
	}

	return Estimate{}, insufficient("data", "study has no raw input")
}

// normalizePrecalculated passes a ready (effect, SE) pair through. Ratio
// measures are entered on the natural scale and log-transformed here; the
// standard error is taken as already belonging to the log-scale estimate.
func normalizePrecalculated(rec study.Record, data study.PrecalculatedData, m Measure) (Estimate, error) {
	if data.StandardError <= 0 {
		return Estimate{}, insufficient("standard_error", "standard error must be positive, got %g", data.StandardError)
	}
	variance := data.StandardError * data.StandardError

	if m.IsRatio() {
		if data.Effect <= 0 {
			return Estimate{}, insufficient("effect", "%s must be positive on the natural scale, got %g", m.Label(), data.Effect)
		}
		return NewLogEstimate(rec.ID, LogEffect(math.Log(data.Effect)), variance), nil
	}
	return NewEstimate(rec.ID, data.Effect, variance), nil
}
