package monitor

// Set bundles the monitors of a search.
type Set struct {
	CompRate   *CategoricalHistory `json:"comp_rate"`
	ExecTime   *CategoricalHistory `json:"exec_time"`
	Candidates *CategoricalDistrib `json:"candidate_distance"`
	BestScore  *History            `json:"best_score"`
	Features   *FeatureMap         `json:"feature_map"`
}

// DefaultFeaturePoints bounds the feature map of a new Set.
const DefaultFeaturePoints = 100_000

// NewSet returns empty monitors.
func NewSet() *Set {
	return &Set{
		CompRate:   NewCategoricalHistory("comp_rate_per_gen"),
		ExecTime:   NewCategoricalHistory("exec_time_per_gen"),
		Candidates: NewCategoricalDistrib("candidate_distance"),
		BestScore:  NewHistory("best_score"),
		Features:   NewFeatureMap("feature_map", DefaultFeaturePoints),
	}
}

// State returns a value suitable for a checkpoint. It shares memory with s.
func (s *Set) State() Set { return *s }

// Restore replaces the monitors with st, filling in any that are missing.
func (s *Set) Restore(st Set) {
	fresh := NewSet()
	*s = st
	if s.CompRate == nil {
		s.CompRate = fresh.CompRate
	}
	if s.ExecTime == nil {
		s.ExecTime = fresh.ExecTime
	}
	if s.Candidates == nil {
		s.Candidates = fresh.Candidates
	}
	if s.BestScore == nil {
		s.BestScore = fresh.BestScore
	}
	if s.Features == nil {
		s.Features = fresh.Features
	}
	if s.CompRate.Values == nil {
		s.CompRate.Values = make(map[int]float64)
	}
	if s.ExecTime.Values == nil {
		s.ExecTime.Values = make(map[int]float64)
	}
	if s.Candidates.Values == nil {
		s.Candidates.Values = make(map[string][]float64)
	}
}
