package centrality

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/graph"
	"github.com/poiesic/pcrank/metrics"
	"github.com/poiesic/pcrank/storage"
	"golang.org/x/sync/singleflight"
)

const (
	// CacheKey is the fixed key the centrality vector is stored under.
	CacheKey = "co_pc_pagerank_v2"

	// DefaultTTL is how long a cached vector is trusted.
	DefaultTTL = 24 * time.Hour
)

var (
	ErrRepositoryRequired = errors.New("candidate repository is required")
	ErrCacheRequired      = errors.New("centrality cache is required")
)

// Signature returns the structural digest of a dataset.
func Signature(stats core.DatasetStats) string {
	payload := fmt.Sprintf("m=%d|r=%d|c=%d|y=%d",
		stats.Memberships, stats.Candidates, stats.Editions, stats.MaxEditionYear)
	sum := blake2b.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Provider returns centrality scores for the candidate population.
type Provider struct {
	repo     storage.CandidateRepository
	cache    storage.CentralityCache
	builder  graph.Builder
	opts     graph.Options
	ttl      time.Duration
	now      func() time.Time
	recorder *metrics.Recorder
	logger   *slog.Logger
	group    singleflight.Group
}

// Option configures a Provider.
type Option func(*Provider) error

// WithTTL sets how long a cached vector is reused.
func WithTTL(ttl time.Duration) Option {
	return func(p *Provider) error {
		if ttl <= 0 {
			return fmt.Errorf("ttl must be positive, got %s", ttl)
		}
		p.ttl = ttl
		return nil
	}
}

// WithBuilder replaces the co-membership graph builder.
func WithBuilder(b graph.Builder) Option {
	return func(p *Provider) error {
		if b == nil {
			return errors.New("builder cannot be nil")
		}
		p.builder = b
		return nil
	}
}

// WithPageRankOptions overrides damping, tolerance and iteration cap.
func WithPageRankOptions(opts graph.Options) Option {
	return func(p *Provider) error {
		p.opts = opts
		return nil
	}
}

// WithClock replaces the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) error {
		p.now = now
		return nil
	}
}

// WithMetrics records cache lookups and recomputes on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(p *Provider) error {
		p.recorder = r
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		p.logger = logger
		return nil
	}
}

// NewProvider creates a Provider reading structure from repo and persisting
// vectors in cache.
func NewProvider(repo storage.CandidateRepository, cache storage.CentralityCache, opts ...Option) (*Provider, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}

	p := &Provider{
		repo:    repo,
		cache:   cache,
		builder: graph.DefaultBuilder,
		opts:    graph.DefaultOptions(),
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "centrality")
	return p, nil
}

// Scores returns the normalized centrality of every candidate with at least
// one membership. Candidates absent from the map score 0.
//
// Scores never fails: repository errors yield an empty vector and cache
// errors fall through to a recomputation. Both are logged.
func (p *Provider) Scores(ctx context.Context) map[core.ID]float64 {
	stats, err := p.repo.Stats(ctx)
	if err != nil {
		p.logger.Warn("failed to read dataset stats, centrality disabled", "err", err)
		return map[core.ID]float64{}
	}
	sig := Signature(stats)

	entry, err := p.cache.LoadCentrality(ctx, CacheKey)
	switch {
	case err != nil:
		p.logger.Warn("failed to load cached centrality, recomputing", "err", err)
		p.recorder.CacheLookup(metrics.CacheCentrality, metrics.ResultError)
	case entry == nil:
		p.recorder.CacheLookup(metrics.CacheCentrality, metrics.ResultMiss)
	case entry.Signature == sig && p.now().Sub(entry.ComputedAt) <= p.ttl:
		p.recorder.CacheLookup(metrics.CacheCentrality, metrics.ResultHit)
		if entry.Values == nil {
			return map[core.ID]float64{}
		}
		return entry.Values
	default:
		p.logger.Debug("cached centrality is stale",
			"cached_signature", entry.Signature,
			"signature", sig,
			"computed_at", entry.ComputedAt)
		p.recorder.CacheLookup(metrics.CacheCentrality, metrics.ResultStale)
	}

	values, err := p.recompute(ctx, sig)
	if err != nil {
		p.logger.Warn("centrality recompute failed", "err", err)
	}
	return values
}

// Refresh recomputes and stores the centrality vector regardless of the
// cached entry. Errors reading the repository or computing PageRank are
// returned; the returned vector is still usable (zeros on PageRank failure).
func (p *Provider) Refresh(ctx context.Context) (map[core.ID]float64, error) {
	stats, err := p.repo.Stats(ctx)
	if err != nil {
		return map[core.ID]float64{}, fmt.Errorf("failed to read dataset stats: %w", err)
	}
	return p.recompute(ctx, Signature(stats))
}

// recompute builds the graph, runs PageRank and overwrites the cache entry.
// Concurrent calls for the same signature share one computation.
func (p *Provider) recompute(ctx context.Context, sig string) (map[core.ID]float64, error) {
	v, err, shared := p.group.Do(sig, func() (any, error) {
		return p.compute(ctx, sig)
	})
	if shared {
		p.logger.Debug("joined in-flight centrality recompute", "signature", sig)
	}
	values, _ := v.(map[core.ID]float64)
	if values == nil {
		values = map[core.ID]float64{}
	}
	return values, err
}

func (p *Provider) compute(ctx context.Context, sig string) (map[core.ID]float64, error) {
	start := time.Now()

	memberships, err := p.repo.Memberships(ctx)
	if err != nil {
		return map[core.ID]float64{}, fmt.Errorf("failed to load memberships: %w", err)
	}

	g := p.builder.Build(memberships)
	values, cerr := graph.Centrality(g, p.opts)
	p.recorder.CentralityRecomputed(cerr != nil)
	if cerr != nil {
		// Zero vectors are not cached so the next call retries.
		p.logger.Warn("centrality computation failed, using zeros",
			"nodes", g.Len(),
			"edges", g.EdgeCount(),
			"err", cerr)
		return values, cerr
	}

	entry := &core.CentralityEntry{
		Key:        CacheKey,
		ComputedAt: p.now().UTC(),
		Signature:  sig,
		Values:     values,
	}
	if err := p.cache.SaveCentrality(ctx, entry); err != nil {
		p.logger.Warn("failed to save centrality", "err", err)
	}

	p.logger.Info("recomputed centrality",
		"nodes", g.Len(),
		"edges", g.EdgeCount(),
		"duration", time.Since(start))
	return values, nil
}
