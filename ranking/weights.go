package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/pcrank/core"
)

// Weights are the blend coefficients of the eight signals. They need not sum
// to 1. Negative values are treated as 0.
type Weights struct {
	Topic       float64 `json:"topic" koanf:"topic"`
	Semantic    float64 `json:"semantic" koanf:"semantic"`
	Publication float64 `json:"pub_recency" koanf:"pub_recency"`
	Service     float64 `json:"pc_recency" koanf:"pc_recency"`
	Impact      float64 `json:"impact" koanf:"impact"`
	Centrality  float64 `json:"pagerank" koanf:"pagerank"`
	Experience  float64 `json:"experience" koanf:"experience"`
	Newcomer    float64 `json:"newcomer" koanf:"newcomer"`
}

// DefaultWeights returns the default blend.
func DefaultWeights() *Weights {
	return &Weights{
		Topic:       0.30,
		Semantic:    0.25,
		Publication: 0.12,
		Service:     0.18,
		Impact:      0.10,
		Centrality:  0.03,
		Experience:  0.02,
		Newcomer:    0.05,
	}
}

// fields maps weight names to their storage in w.
func (w *Weights) fields() map[string]*float64 {
	return map[string]*float64{
		"topic":       &w.Topic,
		"semantic":    &w.Semantic,
		"pub_recency": &w.Publication,
		"pc_recency":  &w.Service,
		"impact":      &w.Impact,
		"pagerank":    &w.Centrality,
		"experience":  &w.Experience,
		"newcomer":    &w.Newcomer,
	}
}

// Names returns the weight names accepted by Set and MergeWeights.
func Names() []string {
	names := make([]string, 0, 8)
	for name := range (&Weights{}).fields() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set assigns the weight called name.
func (w *Weights) Set(name string, value float64) error {
	field, ok := w.fields()[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("%w: %q (valid: %s)", ErrUnknownWeight, name, strings.Join(Names(), ", "))
	}
	*field = value
	return nil
}

// MergeWeights returns a copy of base with the named overrides applied.
// Unlike a zero-means-unset merge, an explicit 0 disables a signal.
// A nil base starts from DefaultWeights.
func MergeWeights(base *Weights, overrides map[string]float64) (*Weights, error) {
	if base == nil {
		base = DefaultWeights()
	}
	merged := *base
	for name, value := range overrides {
		if err := merged.Set(name, value); err != nil {
			return nil, err
		}
	}
	return &merged, nil
}

// Blend returns the weighted sum of the breakdown's sub-scores.
func (w *Weights) Blend(b core.Breakdown) float64 {
	return nonNegative(w.Topic)*b.TopicSimilarity +
		nonNegative(w.Semantic)*b.SemanticScore +
		nonNegative(w.Publication)*b.PublicationRecent +
		nonNegative(w.Service)*b.ServiceRecent +
		nonNegative(w.Impact)*b.Impact +
		nonNegative(w.Centrality)*b.Centrality +
		nonNegative(w.Experience)*b.Experience +
		nonNegative(w.Newcomer)*b.Newcomer
}

func nonNegative(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
