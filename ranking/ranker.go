package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/match"
	"github.com/poiesic/pcrank/metrics"
	"github.com/poiesic/pcrank/signals"
	"github.com/poiesic/pcrank/storage"
)

// CentralitySource supplies normalized co-membership centrality per candidate.
type CentralitySource interface {
	Scores(ctx context.Context) map[core.ID]float64
}

// SemanticScorer supplies embedding similarity between a query and candidates.
type SemanticScorer interface {
	// QueryVector embeds the query once per ranking call. Nil disables the signal.
	QueryVector(ctx context.Context, q core.Query) []float32
	// Score compares a candidate against an embedded query.
	Score(ctx context.Context, query []float32, c *core.Candidate) float64
}

// Ranker ranks the stored candidate population against queries.
type Ranker struct {
	repo       storage.CandidateRepository
	centrality CentralitySource
	semantic   SemanticScorer
	pool       *ants.Pool
	now        func() time.Time
	recorder   *metrics.Recorder
	logger     *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithCentrality sets the centrality source. Without one every candidate
// scores 0 on centrality.
func WithCentrality(src CentralitySource) Option {
	return func(r *Ranker) error {
		r.centrality = src
		return nil
	}
}

// WithSemantic sets the semantic scorer. Without one every candidate scores
// 0 on semantic similarity.
func WithSemantic(s SemanticScorer) Option {
	return func(r *Ranker) error {
		r.semantic = s
		return nil
	}
}

// WithPoolSize sets the worker pool size for per-candidate scoring.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Ranker) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithClock replaces the time source used to resolve the default base year.
func WithClock(now func() time.Time) Option {
	return func(r *Ranker) error {
		r.now = now
		return nil
	}
}

// WithMetrics records ranking durations on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Ranker) error {
		r.recorder = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRanker creates a Ranker over repo.
func NewRanker(repo storage.CandidateRepository, opts ...Option) (*Ranker, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	r := &Ranker{
		repo:   repo,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.Release()
			return nil, err
		}
	}

	if r.pool == nil {
		size := runtime.NumCPU() / 2
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return nil, err
		}
		r.pool = pool
	}

	r.logger = r.logger.With("component", "ranker")
	return r, nil
}

// Release stops the worker pool. The Ranker must not be used afterwards.
func (r *Ranker) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// Rank scores every candidate against q and returns the best limit results.
// Nil weights use DefaultWeights.
func (r *Ranker) Rank(ctx context.Context, q core.Query, w *Weights, limit int) ([]*core.Recommendation, error) {
	return r.RankWithMonitor(ctx, q, w, limit, nil)
}

// RankWithMonitor is Rank with hooks observing each stage.
func (r *Ranker) RankWithMonitor(ctx context.Context, q core.Query, w *Weights, limit int, monitor Monitor) ([]*core.Recommendation, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if w == nil {
		w = DefaultWeights()
	}
	start := time.Now()

	candidates, err := r.repo.AllCandidates(ctx)
	if err != nil {
		r.logger.Error("error loading candidates", "err", err)
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	stats, err := r.repo.Stats(ctx)
	if err != nil {
		r.logger.Warn("error reading dataset stats, base year falls back to current year", "err", err)
		stats = core.DatasetStats{}
	}
	base := signals.BaseYear(q.Year, stats, r.now())
	lookback := max(0, q.Lookback)

	monitor.Start(q, base)
	monitor.CandidatesLoaded(len(candidates))
	if len(candidates) == 0 {
		monitor.Finish(nil)
		return []*core.Recommendation{}, nil
	}

	var centrality map[core.ID]float64
	if r.centrality != nil {
		centrality = r.centrality.Scores(ctx)
	}
	monitor.CentralityResolved(centrality)

	var queryVec []float32
	if r.semantic != nil && w.Semantic > 0 {
		queryVec = r.semantic.QueryVector(ctx, q)
	}

	s := &scorer{
		query:      q,
		phrases:    queryPhrases(q.Topics),
		base:       base,
		lookback:   lookback,
		weights:    w,
		centrality: centrality,
		semantic:   r.semantic,
		queryVec:   queryVec,
	}

	results := make([]*core.Recommendation, len(candidates))
	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = s.score(ctx, c)
			monitor.CandidateScored(results[i])
		}
		if err := r.pool.Submit(task); err != nil {
			r.logger.Debug("pool rejected task, scoring inline", "candidate", c.Id, "err", err)
			task()
		}
	}
	wg.Wait()

	slices.SortStableFunc(results, func(a, b *core.Recommendation) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if limit < 1 {
		limit = 1
	}
	if len(results) > limit {
		results = results[:limit]
	}

	r.recorder.ObserveRank(time.Since(start), len(candidates))
	r.logger.Debug("ranked candidates",
		"candidates", len(candidates),
		"returned", len(results),
		"base_year", base,
		"duration", time.Since(start))
	monitor.Finish(results)
	return results, nil
}

// queryPhrases normalizes and drops empty query topics.
func queryPhrases(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// scorer holds the per-call state shared by all candidates.
type scorer struct {
	query      core.Query
	phrases    []string
	base       int
	lookback   int
	weights    *Weights
	centrality map[core.ID]float64
	semantic   SemanticScorer
	queryVec   []float32
}

func (s *scorer) score(ctx context.Context, c *core.Candidate) *core.Recommendation {
	b := core.Breakdown{
		TopicSimilarity:   match.TopicSimilarity(s.phrases, match.CandidatePhrases(c)),
		PublicationRecent: signals.PublicationRecency(c, s.base, s.lookback),
		ServiceRecent:     signals.ServiceRecency(c, s.base, s.lookback),
		Impact:            signals.Impact(c),
		Centrality:        s.centrality[c.Id],
		Experience:        signals.Experience(c, s.query.Series),
	}
	if s.semantic != nil && s.weights.Semantic > 0 && len(s.queryVec) > 0 {
		b.SemanticScore = s.semantic.Score(ctx, s.queryVec, c)
	}
	if s.weights.Newcomer > 0 {
		b.Newcomer = signals.Newcomer(len(c.Services), b.TopicSimilarity, b.SemanticScore)
	}

	return &core.Recommendation{
		Candidate: c,
		Score:     s.weights.Blend(b),
		Breakdown: b,
	}
}
