// Package metrics records Prometheus metrics for ranking and cache behaviour.
//
// A nil *Recorder is valid and records nothing, so components can accept an
// optional recorder without nil checks at every call site.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pcrank"

// Cache names used as label values.
const (
	CacheCentrality = "centrality"
	CacheEmbedding  = "embedding"
)

// Cache lookup results used as label values.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultStale = "stale"
	ResultError = "error"
)

// Recorder holds the engine's collectors.
type Recorder struct {
	rankDuration        prometheus.Histogram
	candidatesScored    prometheus.Counter
	cacheLookups        *prometheus.CounterVec
	centralityRecompute prometheus.Counter
	centralityFailures  prometheus.Counter
	embedErrors         prometheus.Counter
	embeddingsWarmed    prometheus.Counter
}

// Option configures a Recorder.
type Option func(*options)

type options struct {
	buckets []float64
}

// WithBuckets overrides the rank duration histogram buckets (seconds).
func WithBuckets(buckets []float64) Option {
	return func(o *options) {
		o.buckets = buckets
	}
}

// NewRecorder registers the engine's collectors on reg.
// A nil reg registers on prometheus.DefaultRegisterer.
func NewRecorder(reg prometheus.Registerer, opts ...Option) *Recorder {
	o := &options{
		buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}
	for _, opt := range opts {
		opt(o)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	auto := promauto.With(reg)

	return &Recorder{
		rankDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rank_duration_seconds",
			Help:      "Duration of ranking calls in seconds",
			Buckets:   o.buckets,
		}),
		candidatesScored: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_scored_total",
			Help:      "Total number of candidates scored across ranking calls",
		}),
		cacheLookups: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and result",
		}, []string{"cache", "result"}),
		centralityRecompute: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "centrality_recomputes_total",
			Help:      "Number of co-membership centrality recomputations",
		}),
		centralityFailures: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "centrality_failures_total",
			Help:      "Number of centrality computations that fell back to zeros",
		}),
		embedErrors: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embed_errors_total",
			Help:      "Number of failed embedding calls",
		}),
		embeddingsWarmed: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embeddings_warmed_total",
			Help:      "Number of embeddings written by cache warm-up",
		}),
	}
}

// ObserveRank records one ranking call.
func (r *Recorder) ObserveRank(d time.Duration, candidates int) {
	if r == nil {
		return
	}
	r.rankDuration.Observe(d.Seconds())
	r.candidatesScored.Add(float64(candidates))
}

// CacheLookup records a lookup outcome for the named cache.
func (r *Recorder) CacheLookup(cache, result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(cache, result).Inc()
}

// CentralityRecomputed records a recomputation and whether it failed.
func (r *Recorder) CentralityRecomputed(failed bool) {
	if r == nil {
		return
	}
	r.centralityRecompute.Inc()
	if failed {
		r.centralityFailures.Inc()
	}
}

// EmbedError records a failed embedding call.
func (r *Recorder) EmbedError() {
	if r == nil {
		return
	}
	r.embedErrors.Inc()
}

// EmbeddingsWarmed records n embeddings written by warm-up.
func (r *Recorder) EmbeddingsWarmed(n int) {
	if r == nil {
		return
	}
	r.embeddingsWarmed.Add(float64(n))
}
