package semantic

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/pcrank/ai"
	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/metrics"
	"github.com/poiesic/pcrank/storage"
)

// ErrCacheRequired is returned when no embedding cache is provided.
var ErrCacheRequired = errors.New("embedding cache is required")

// Engine computes semantic similarity between queries and candidates.
// It is safe for concurrent use when the embedder and cache are.
type Engine struct {
	embedder ai.Embedder
	cache    storage.EmbeddingCache
	recorder *metrics.Recorder
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithMetrics records cache lookups and embed errors on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) error {
		e.recorder = r
		return nil
	}
}

// NewEngine creates an Engine. A nil embedder is treated as unavailable.
func NewEngine(embedder ai.Embedder, cache storage.EmbeddingCache, opts ...Option) (*Engine, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if embedder == nil {
		embedder = ai.Unavailable()
	}

	e := &Engine{
		embedder: embedder,
		cache:    cache,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "semantic")
	return e, nil
}

// Available reports whether the engine can produce embeddings.
func (e *Engine) Available() bool {
	return ai.IsAvailable(e.embedder)
}

// QueryVector embeds the query text. It returns nil when embeddings are
// unavailable, the query text is empty or the embed call fails.
func (e *Engine) QueryVector(ctx context.Context, q core.Query) []float32 {
	if !e.Available() {
		return nil
	}
	text := QueryText(q)
	if text == "" {
		return nil
	}

	vec, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		e.recorder.EmbedError()
		e.logger.Warn("failed to embed query", "err", err)
		return nil
	}
	if len(vec) == 0 {
		return nil
	}
	return Normalize(vec)
}

// CandidateVector returns the candidate's profile vector, from cache when the
// cached entry was produced by the current model from the current profile
// text. Otherwise the profile is embedded and the cache entry replaced.
// Returns nil when the profile is empty or embedding fails.
func (e *Engine) CandidateVector(ctx context.Context, c *core.Candidate) []float32 {
	if !e.Available() || c == nil {
		return nil
	}
	text := ProfileText(c)
	if text == "" {
		return nil
	}
	hash := core.ContentHash(text)
	model := e.embedder.ModelName()

	entry, err := e.cache.LoadEmbedding(ctx, c.Id)
	switch {
	case err != nil:
		e.recorder.CacheLookup(metrics.CacheEmbedding, metrics.ResultError)
		e.logger.Debug("failed to load cached embedding", "candidate", c.Id, "err", err)
	case Fresh(entry, model, hash):
		e.recorder.CacheLookup(metrics.CacheEmbedding, metrics.ResultHit)
		return entry.Vector
	case entry == nil:
		e.recorder.CacheLookup(metrics.CacheEmbedding, metrics.ResultMiss)
	default:
		e.recorder.CacheLookup(metrics.CacheEmbedding, metrics.ResultStale)
	}

	vec, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		e.recorder.EmbedError()
		e.logger.Warn("failed to embed candidate profile", "candidate", c.Id, "err", err)
		return nil
	}
	if len(vec) == 0 {
		return nil
	}
	vec = Normalize(vec)

	if err := e.cache.SaveEmbedding(ctx, &core.EmbeddingEntry{
		CandidateID: c.Id,
		ModelName:   model,
		ContentHash: hash,
		UpdatedAt:   time.Now().UTC(),
		Vector:      vec,
	}); err != nil {
		e.logger.Warn("failed to cache candidate embedding", "candidate", c.Id, "err", err)
	}
	return vec
}

// Score returns the similarity of c's profile to an already embedded query.
// A nil query vector scores 0 without embedding the candidate, and so does a
// candidate without a profile vector.
func (e *Engine) Score(ctx context.Context, query []float32, c *core.Candidate) float64 {
	if len(query) == 0 {
		return 0
	}
	vec := e.CandidateVector(ctx, c)
	if len(vec) == 0 {
		return 0
	}
	return Similarity(query, vec)
}

// Fresh reports whether entry can be reused for the given model and content hash.
func Fresh(entry *core.EmbeddingEntry, model, hash string) bool {
	return entry != nil &&
		len(entry.Vector) > 0 &&
		entry.ModelName == model &&
		entry.ContentHash == hash
}
