package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"gometa/domain/core"
	"gometa/domain/study"
)

// TestKit generates deterministic demo study sets for development and tests
type TestKit struct {
	rng *rand.Rand
}

// NewTestKit creates a test kit with a fixed seed so demo data is stable
// across restarts.
func NewTestKit() *TestKit {
	return &TestKit{rng: rand.New(rand.NewSource(42))}
}

// NewTestKitWithSeed creates a test kit with an explicit seed
func NewTestKitWithSeed(seed int64) *TestKit {
	return &TestKit{rng: rand.New(rand.NewSource(seed))}
}

// ContinuousStudies generates k two-arm continuous studies around a true
// standardized effect of about 0.4, half flagged "high-dose" subgroup.
func (k *TestKit) ContinuousStudies(count int) []study.Record {
	records := make([]study.Record, 0, count)
	for i := 0; i < count; i++ {
		n := 30 + k.rng.Intn(120)
		sd := 2.0 + k.rng.Float64()*2.0
		shift := 0.4*sd + k.rng.NormFloat64()*0.3
		subgroup := "standard-dose"
		if i%2 == 1 {
			subgroup = "high-dose"
		}
		rec, _ := study.NewRecord(
			fmt.Sprintf("Demo trial %c", 'A'+i),
			2015+i,
			subgroup,
			study.ContinuousData{
				N1: n, Mean1: 10 + shift, SD1: sd,
				N2: n + k.rng.Intn(10), Mean2: 10, SD2: sd * (0.9 + k.rng.Float64()*0.2),
			},
		)
		records = append(records, rec)
	}
	return records
}

// BinaryStudies generates k two-arm event-count studies with a treatment
// benefit, keeping all cells positive so every study is computable.
func (k *TestKit) BinaryStudies(count int) []study.Record {
	records := make([]study.Record, 0, count)
	for i := 0; i < count; i++ {
		total1 := 40 + k.rng.Intn(160)
		total2 := 40 + k.rng.Intn(160)
		baseRisk := 0.15 + k.rng.Float64()*0.25
		events1 := clampCount(int(float64(total1)*baseRisk*0.7+k.rng.NormFloat64()*2), 1, total1-1)
		events2 := clampCount(int(float64(total2)*baseRisk+k.rng.NormFloat64()*2), 1, total2-1)
		rec, _ := study.NewRecord(
			fmt.Sprintf("Demo cohort %c", 'A'+i),
			2012+i,
			"",
			study.BinaryData{Events1: events1, Total1: total1, Events2: events2, Total2: total2},
		)
		records = append(records, rec)
	}
	return records
}

// PrecalculatedStudies generates k ready (effect, SE) studies on the
// natural scale for a ratio measure centered near HR 0.8.
func (k *TestKit) PrecalculatedStudies(count int) []study.Record {
	records := make([]study.Record, 0, count)
	for i := 0; i < count; i++ {
		logHR := math.Log(0.8) + k.rng.NormFloat64()*0.15
		se := 0.08 + k.rng.Float64()*0.2
		rec, _ := study.NewRecord(
			fmt.Sprintf("Demo registry %c", 'A'+i),
			2018+i,
			"",
			study.PrecalculatedData{Effect: math.Exp(logHR), StandardError: se},
		)
		records = append(records, rec)
	}
	return records
}

// Study looks up a generated record by label (test convenience)
func Study(records []study.Record, label string) (study.Record, bool) {
	for _, r := range records {
		if r.Label == label {
			return r, true
		}
	}
	return study.Record{}, false
}

// WithID returns a copy of the record carrying the given id
func WithID(rec study.Record, id core.StudyID) study.Record {
	rec.ID = id
	return rec
}

func clampCount(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
