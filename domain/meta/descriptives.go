package meta

import (
	"github.com/montanaflynn/stats"
)

// Profile summarizes the spread of a study set's canonical estimates.
// Used for the import preview and the funnel plot's SE axis.
type Profile struct {
	K            int     `json:"k"`
	MeanEffect   float64 `json:"mean_effect"`
	MedianEffect float64 `json:"median_effect"`
	MinEffect    float64 `json:"min_effect"`
	MaxEffect    float64 `json:"max_effect"`
	MinSE        float64 `json:"min_se"`
	MaxSE        float64 `json:"max_se"`
}

// Describe computes descriptive statistics over canonical estimates
func Describe(estimates []Estimate) (Profile, error) {
	if len(estimates) == 0 {
		return Profile{}, nil
	}

	effects := make([]float64, len(estimates))
	ses := make([]float64, len(estimates))
	for i, e := range estimates {
		effects[i] = e.Effect
		ses[i] = e.SE()
	}

	p := Profile{K: len(estimates)}
	var err error
	if p.MeanEffect, err = stats.Mean(effects); err != nil {
		return Profile{}, err
	}
	if p.MedianEffect, err = stats.Median(effects); err != nil {
		return Profile{}, err
	}
	if p.MinEffect, err = stats.Min(effects); err != nil {
		return Profile{}, err
	}
	if p.MaxEffect, err = stats.Max(effects); err != nil {
		return Profile{}, err
	}
	if p.MinSE, err = stats.Min(ses); err != nil {
		return Profile{}, err
	}
	if p.MaxSE, err = stats.Max(ses); err != nil {
		return Profile{}, err
	}
	return p, nil
}
