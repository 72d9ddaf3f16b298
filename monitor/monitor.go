// Package monitor keeps the statistics of a search. Monitors only collect
// data; rendering is left to external tools reading the checkpoint.
//
// Monitors are not safe for concurrent use.
package monitor

import (
	"maps"
	"slices"
	"sort"
	"strconv"

	"github.com/hupe1980/featsearch/model"
)

// CategoricalHistory keeps the latest value per category, e.g. the compile
// rate of every generation.
type CategoricalHistory struct {
	Name   string          `json:"name"`
	Values map[int]float64 `json:"values"`
}

// NewCategoricalHistory returns an empty monitor.
func NewCategoricalHistory(name string) *CategoricalHistory {
	return &CategoricalHistory{Name: name, Values: make(map[int]float64)}
}

// Register sets the value of a category.
func (m *CategoricalHistory) Register(category int, value float64) {
	m.Values[category] = value
}

// Get returns the value of a category.
func (m *CategoricalHistory) Get(category int) (float64, bool) {
	v, ok := m.Values[category]
	return v, ok
}

// Categories returns the registered categories in ascending order.
func (m *CategoricalHistory) Categories() []int {
	return slices.Sorted(maps.Keys(m.Values))
}

// CategoricalDistrib collects a distribution of values per category, e.g.
// the scores selected in every generation.
type CategoricalDistrib struct {
	Name   string               `json:"name"`
	Values map[string][]float64 `json:"values"`
}

// NewCategoricalDistrib returns an empty monitor.
func NewCategoricalDistrib(name string) *CategoricalDistrib {
	return &CategoricalDistrib{Name: name, Values: make(map[string][]float64)}
}

// Register appends values to a category.
func (m *CategoricalDistrib) Register(category string, values ...float64) {
	m.Values[category] = append(m.Values[category], values...)
}

// Get returns the values of a category.
func (m *CategoricalDistrib) Get(category string) []float64 {
	return m.Values[category]
}

// History is an ordered timeline of values.
type History struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// NewHistory returns an empty timeline.
func NewHistory(name string) *History {
	return &History{Name: name}
}

// Register appends a value.
func (m *History) Register(v float64) {
	m.Values = append(m.Values, v)
}

// Len returns the number of registered values.
func (m *History) Len() int { return len(m.Values) }

// FeaturePoint is one feature vector with its group and an optional label.
type FeaturePoint struct {
	Features model.Features `json:"features"`
	Group    string         `json:"group"`
	Label    string         `json:"label,omitempty"`
}

// FeatureMap collects feature vectors by group for later projection.
type FeatureMap struct {
	Name   string         `json:"name"`
	Points []FeaturePoint `json:"points"`
	// MaxPoints bounds Points; the oldest points are dropped first. Zero means unbounded.
	MaxPoints int `json:"max_points"`
}

// NewFeatureMap returns an empty map keeping at most maxPoints points.
func NewFeatureMap(name string, maxPoints int) *FeatureMap {
	return &FeatureMap{Name: name, MaxPoints: maxPoints}
}

// Register adds a feature vector.
func (m *FeatureMap) Register(features model.Features, group, label string) {
	m.Points = append(m.Points, FeaturePoint{Features: features.Clone(), Group: group, Label: label})
	if m.MaxPoints > 0 && len(m.Points) > m.MaxPoints {
		drop := len(m.Points) - m.MaxPoints
		m.Points = append(m.Points[:0], m.Points[drop:]...)
	}
}

// HasGroup reports whether any point belongs to group.
func (m *FeatureMap) HasGroup(group string) bool {
	for _, p := range m.Points {
		if p.Group == group {
			return true
		}
	}
	return false
}

// Groups returns the distinct groups in sorted order.
func (m *FeatureMap) Groups() []string {
	set := make(map[string]struct{})
	for _, p := range m.Points {
		set[p.Group] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// GenerationGroup names the FeatureMap group of candidates from generation gen.
func GenerationGroup(gen int, accepted bool) string {
	g := "gen_" + strconv.Itoa(gen)
	if accepted {
		g += "_accepted"
	}
	return g
}
