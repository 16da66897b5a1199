package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"gometa/domain/core"
	"gometa/domain/meta"
	"gometa/domain/plot"
	"gometa/domain/study"
)

// Analysis-type cache keys
const (
	KeyMain              = "main"
	keySubgroupPrefix    = "subgroup:"
	keySensitivityPrefix = "sensitivity:"
)

// SubgroupKey builds the cache key for one subgroup analysis
func SubgroupKey(label string) string { return keySubgroupPrefix + label }

// SensitivityKey builds the cache key for one leave-one-out analysis
func SensitivityKey(id core.StudyID) string { return keySensitivityPrefix + id.String() }

// Session holds one review's study list, analysis configuration and a
// cache of pooled results keyed by analysis type. Any study mutation
// invalidates the whole cache; a stale result is never served.
type Session struct {
	ReviewID core.ReviewID

	mu      sync.RWMutex
	measure meta.Measure
	model   meta.Model
	studies []study.Record
	cache   map[string]*meta.PooledResult
}

// NewSession creates a session with the given configuration
func NewSession(reviewID core.ReviewID, measure meta.Measure, model meta.Model) *Session {
	return &Session{
		ReviewID: reviewID,
		measure:  measure,
		model:    model,
		cache:    make(map[string]*meta.PooledResult),
	}
}

// Configure sets the effect measure and pooling model, invalidating the cache
func (s *Session) Configure(measure meta.Measure, model meta.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.measure == measure && s.model == model {
		return
	}
	s.measure = measure
	s.model = model
	s.invalidateLocked()
}

// Config returns the session's current measure and model
func (s *Session) Config() (meta.Measure, meta.Model) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.measure, s.model
}

// SetStudies replaces the whole study list (bulk import, reload from store)
func (s *Session) SetStudies(studies []study.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.studies = append([]study.Record(nil), studies...)
	s.invalidateLocked()
}

// AddStudy appends a study and invalidates the cache
func (s *Session) AddStudy(rec study.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.studies = append(s.studies, rec)
	s.invalidateLocked()
}

// UpdateStudy replaces the study with the same id
func (s *Session) UpdateStudy(rec study.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.studies {
		if s.studies[i].ID == rec.ID {
			s.studies[i] = rec
			s.invalidateLocked()
			return nil
		}
	}
	return core.NewNotFoundError("study", rec.ID.String())
}

// RemoveStudy deletes the study with the given id
func (s *Session) RemoveStudy(id core.StudyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.studies {
		if s.studies[i].ID == id {
			s.studies = append(s.studies[:i], s.studies[i+1:]...)
			s.invalidateLocked()
			return nil
		}
	}
	return core.NewNotFoundError("study", id.String())
}

// SetExcluded toggles a study's sensitivity exclusion flag
func (s *Session) SetExcluded(id core.StudyID, excluded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.studies {
		if s.studies[i].ID == id {
			if s.studies[i].Excluded != excluded {
				s.studies[i].Excluded = excluded
				s.invalidateLocked()
			}
			return nil
		}
	}
	return core.NewNotFoundError("study", id.String())
}

// Studies returns a copy of the ordered study list
func (s *Session) Studies() []study.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]study.Record(nil), s.studies...)
}

// invalidateLocked drops every cached result. Callers hold the write lock.
// Whole-cache invalidation is the simplest discipline that can never serve
// a result computed from a partially-updated study list.
func (s *Session) invalidateLocked() {
	s.cache = make(map[string]*meta.PooledResult)
}

// Main runs (or serves from cache) the main analysis over all studies
func (s *Session) Main() (*meta.PooledResult, error) {
	return s.run(KeyMain, func(studies []study.Record) []study.Record {
		return studies
	})
}

// Subgroup runs the analysis restricted to one subgroup label
func (s *Session) Subgroup(label string) (*meta.PooledResult, error) {
	return s.run(SubgroupKey(label), func(studies []study.Record) []study.Record {
		var subset []study.Record
		for _, rec := range studies {
			if rec.Subgroup == label {
				subset = append(subset, rec)
			}
		}
		return subset
	})
}

// Sensitivity runs the leave-one-out analysis excluding the given study
func (s *Session) Sensitivity(exclude core.StudyID) (*meta.PooledResult, error) {
	return s.run(SensitivityKey(exclude), func(studies []study.Record) []study.Record {
		var subset []study.Record
		for _, rec := range studies {
			if rec.ID != exclude {
				subset = append(subset, rec)
			}
		}
		return subset
	})
}

// run computes one analysis under the write lock so a concurrent mutation
// can never interleave with the study snapshot, and caches the result.
func (s *Session) run(key string, filter func([]study.Record) []study.Record) (*meta.PooledResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache[key]; ok {
		return cached, nil
	}

	result, err := meta.Run(filter(s.studies), s.measure, s.model)
	if err != nil {
		return nil, err
	}
	s.cache[key] = result
	return result, nil
}

// SubgroupLabels returns the distinct subgroup labels in study order
func (s *Session) SubgroupLabels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var labels []string
	for _, rec := range s.studies {
		if rec.Subgroup != "" && !seen[rec.Subgroup] {
			seen[rec.Subgroup] = true
			labels = append(labels, rec.Subgroup)
		}
	}
	return labels
}

// ForestLayout builds the forest geometry for the main analysis
func (s *Session) ForestLayout() (*plot.ForestLayout, error) {
	result, err := s.Main()
	if err != nil {
		return nil, err
	}
	return plot.Forest(s.Studies(), result), nil
}

// FunnelLayout builds the funnel geometry for the main analysis
func (s *Session) FunnelLayout() (*plot.FunnelLayout, error) {
	result, err := s.Main()
	if err != nil {
		return nil, err
	}
	return plot.Funnel(result), nil
}

// AnalysisService owns the in-memory sessions, one per review, and bounds
// how many pooled analyses run at once across all callers.
type AnalysisService struct {
	mu       sync.RWMutex
	sessions map[core.ReviewID]*Session
	sem      *semaphore.Weighted
}

// NewAnalysisService creates a service allowing maxConcurrent simultaneous
// analysis computations (batch subgroup/sensitivity runs share the budget).
func NewAnalysisService(maxConcurrent int64) *AnalysisService {
	if maxConcurrent < 1 {
		maxConcurrent = 4
	}
	return &AnalysisService{
		sessions: make(map[core.ReviewID]*Session),
		sem:      semaphore.NewWeighted(maxConcurrent),
	}
}

// Session returns the review's session, creating it with the given
// configuration on first use.
func (s *AnalysisService) Session(reviewID core.ReviewID, measure meta.Measure, model meta.Model) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[reviewID]; ok {
		sess.Configure(measure, model)
		return sess
	}
	sess := NewSession(reviewID, measure, model)
	s.sessions[reviewID] = sess
	return sess
}

// Drop discards a review's session (review deleted)
func (s *AnalysisService) Drop(reviewID core.ReviewID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, reviewID)
}

// SubgroupResult pairs a subgroup label with its pooled result or failure
type SubgroupResult struct {
	Label  string             `json:"label"`
	Result *meta.PooledResult `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// RunSubgroups computes one pooled analysis per distinct subgroup label.
// Runs are bounded by the service-wide semaphore; a subgroup that fails
// (typically InsufficientStudies) is reported, not fatal.
func (s *AnalysisService) RunSubgroups(ctx context.Context, sess *Session) ([]SubgroupResult, error) {
	labels := sess.SubgroupLabels()
	results := make([]SubgroupResult, len(labels))

	var wg sync.WaitGroup
	for i, label := range labels {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			wg.Wait() // let in-flight runs finish writing before the slice goes away
			return nil, fmt.Errorf("acquiring analysis slot: %w", err)
		}
		wg.Add(1)
		go func(i int, label string) {
			defer wg.Done()
			defer s.sem.Release(1)
			res, err := sess.Subgroup(label)
			if err != nil {
				results[i] = SubgroupResult{Label: label, Error: err.Error()}
				return
			}
			results[i] = SubgroupResult{Label: label, Result: res}
		}(i, label)
	}
	wg.Wait()

	return results, nil
}

// SensitivityResult pairs an excluded study with the pooled result of the rest
type SensitivityResult struct {
	ExcludedStudy core.StudyID       `json:"excluded_study"`
	Result        *meta.PooledResult `json:"result,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// RunLeaveOneOut computes the pooled result with each study excluded in
// turn, in stable study order.
func (s *AnalysisService) RunLeaveOneOut(ctx context.Context, sess *Session) ([]SensitivityResult, error) {
	studies := sess.Studies()
	results := make([]SensitivityResult, len(studies))

	var wg sync.WaitGroup
	for i, rec := range studies {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("acquiring analysis slot: %w", err)
		}
		wg.Add(1)
		go func(i int, id core.StudyID) {
			defer wg.Done()
			defer s.sem.Release(1)
			res, err := sess.Sensitivity(id)
			if err != nil {
				results[i] = SensitivityResult{ExcludedStudy: id, Error: err.Error()}
				return
			}
			results[i] = SensitivityResult{ExcludedStudy: id, Result: res}
		}(i, rec.ID)
	}
	wg.Wait()

	return results, nil
}
