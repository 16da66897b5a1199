package meta

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"gometa/domain/core"
	"gometa/domain/study"
)

// Run executes the full pipeline for one analysis: normalize every
// non-excluded study, analyze heterogeneity, pool under the chosen model.
// Studies that fail normalization are reported in the result, not fatal;
// fewer than 2 computable studies yields *InsufficientStudiesError.
func Run(studies []study.Record, m Measure, model Model) (*PooledResult, error) {
	estimates := make([]Estimate, 0, len(studies))
	var excluded []Exclusion

	for _, rec := range studies {
		if rec.Excluded {
			continue
		}
		est, err := Normalize(rec, m)
		if err != nil {
			excluded = append(excluded, Exclusion{StudyID: rec.ID, Reason: err.Error()})
			continue
		}
		estimates = append(estimates, est)
	}

	if len(estimates) < 2 {
		return nil, &InsufficientStudiesError{Computable: len(estimates), Excluded: excluded}
	}

	het, err := AnalyzeHeterogeneity(estimates)
	if err != nil {
		return nil, err
	}

	result := pool(estimates, model, het)
	result.Measure = m
	result.Excluded = excluded
	result.ComputedAt = core.Now()
	return result, nil
}

// pool combines canonical estimates under the selected model. Fixed effect
// weights by inverse variance; random effects adds the DerSimonian-Laird
// tau2 to every study variance before weighting.
func pool(estimates []Estimate, model Model, het Heterogeneity) *PooledResult {
	tau2 := 0.0
	if model == ModelRandom {
		tau2 = het.Tau2
	}

	var sumW, sumWY float64
	weights := make([]StudyWeight, 0, len(estimates))
	for _, e := range estimates {
		w := 1 / (e.Variance + tau2)
		sumW += w
		sumWY += w * e.Effect
		weights = append(weights, StudyWeight{StudyID: e.StudyID, Weight: w})
	}
	for i := range weights {
		weights[i].Percent = weights[i].Weight / sumW * 100
	}

	effect := sumWY / sumW
	variance := 1 / sumW
	se := math.Sqrt(variance)
	z := effect / se
	p := 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))

	return &PooledResult{
		Model:         model,
		Effect:        effect,
		SE:            se,
		CILower:       effect - zCritical*se,
		CIUpper:       effect + zCritical*se,
		Z:             z,
		PValue:        p,
		Heterogeneity: het,
		K:             len(estimates),
		Estimates:     estimates,
		Weights:       weights,
	}
}

// PoolFixed pools already-normalized estimates under the fixed-effect model.
// Exposed for callers that manage their own normalization.
func PoolFixed(estimates []Estimate) (*PooledResult, error) {
	if len(estimates) < 2 {
		return nil, &InsufficientStudiesError{Computable: len(estimates)}
	}
	het, err := AnalyzeHeterogeneity(estimates)
	if err != nil {
		return nil, err
	}
	r := pool(estimates, ModelFixed, het)
	r.ComputedAt = core.Now()
	return r, nil
}

// PoolRandom pools already-normalized estimates under DerSimonian-Laird
// random effects.
func PoolRandom(estimates []Estimate) (*PooledResult, error) {
	if len(estimates) < 2 {
		return nil, &InsufficientStudiesError{Computable: len(estimates)}
	}
	het, err := AnalyzeHeterogeneity(estimates)
	if err != nil {
		return nil, err
	}
	r := pool(estimates, ModelRandom, het)
	r.ComputedAt = core.Now()
	return r, nil
}
