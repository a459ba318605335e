// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package pcrank recommends program-committee members for a conference
// edition. Engine wires storage, caches, AI backends and the ranker from a
// single configuration.
package pcrank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/pcrank/ai"
	"github.com/poiesic/pcrank/ai/openai"
	"github.com/poiesic/pcrank/centrality"
	"github.com/poiesic/pcrank/config"
	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/ingestion"
	"github.com/poiesic/pcrank/metrics"
	"github.com/poiesic/pcrank/ranking"
	"github.com/poiesic/pcrank/reembed"
	"github.com/poiesic/pcrank/semantic"
	"github.com/poiesic/pcrank/storage"
	"github.com/poiesic/pcrank/storage/badger"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ErrEmptyRequest is returned by Ask for blank requests.
	ErrEmptyRequest = errors.New("request text is empty")

	// ErrNoTopicExtractor is returned by EnrichTopics when model-based
	// labelling is requested but no AI provider is configured.
	ErrNoTopicExtractor = errors.New("no topic extractor configured")
)

// Engine is the entry point for importing datasets and ranking candidates.
type Engine struct {
	cfg        *config.Config
	backend    *badger.Backend
	candidates *badger.CandidateRepository
	embeddings storage.EmbeddingCache
	provider   ai.AIProvider
	semantic   *semantic.Engine
	centrality *centrality.Provider
	ranker     *ranking.Ranker
	pipeline   *ingestion.Pipeline
	recorder   *metrics.Recorder
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	provider   ai.AIProvider
	registerer prometheus.Registerer
	clock      func() time.Time
	logger     *slog.Logger
}

// WithAIProvider overrides the provider selected by the configuration.
// The engine takes ownership and closes it.
func WithAIProvider(p ai.AIProvider) Option {
	return func(o *engineOptions) {
		o.provider = p
	}
}

// WithRegisterer registers the engine's metrics on reg. Without it no
// metrics are recorded.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *engineOptions) {
		o.registerer = reg
	}
}

// WithClock replaces the time source used for base years and cache ages.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) {
		o.clock = now
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// Open validates cfg and assembles an Engine. A nil cfg uses config.New().
func Open(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	e := &Engine{
		cfg:    cfg,
		logger: options.logger.With("component", "engine"),
	}
	if options.registerer != nil {
		e.recorder = metrics.NewRecorder(options.registerer)
	}

	if err := e.openStorage(); err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil && cfg.AI.Enabled {
		var err error
		provider, err = openai.NewProvider(cfg.AIConfig(), openai.WithLogger(options.logger))
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to create AI provider: %w", err)
		}
	}
	e.provider = provider

	if err := e.wire(options); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) openStorage() error {
	backend, err := badger.OpenBackend(e.cfg.DataDir, e.cfg.InMemory)
	if err != nil {
		return err
	}
	e.backend = backend

	candidates, err := badger.NewCandidateRepository(backend)
	if err != nil {
		backend.Close()
		e.backend = nil
		return err
	}
	e.candidates = candidates

	embeddings, err := storage.NewLRUEmbeddingCache(badger.NewEmbeddingCache(backend), e.cfg.EmbeddingCacheSize)
	if err != nil {
		e.Close()
		return err
	}
	e.embeddings = embeddings
	return nil
}

func (e *Engine) wire(o *engineOptions) error {
	var err error

	e.semantic, err = semantic.NewEngine(e.embedder(), e.embeddings,
		semantic.WithLogger(o.logger),
		semantic.WithMetrics(e.recorder))
	if err != nil {
		return err
	}

	e.centrality, err = centrality.NewProvider(e.candidates, badger.NewCentralityCache(e.backend),
		centrality.WithTTL(e.cfg.CentralityTTL),
		centrality.WithClock(o.clock),
		centrality.WithMetrics(e.recorder),
		centrality.WithLogger(o.logger))
	if err != nil {
		return err
	}

	e.ranker, err = ranking.NewRanker(e.candidates,
		ranking.WithCentrality(e.centrality),
		ranking.WithSemantic(e.semantic),
		ranking.WithPoolSize(e.cfg.PoolSize),
		ranking.WithClock(o.clock),
		ranking.WithMetrics(e.recorder),
		ranking.WithLogger(o.logger))
	if err != nil {
		return err
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithPoolSize(e.cfg.PoolSize),
		ingestion.WithLogger(o.logger),
	}
	if e.cfg.WarmOnImport && e.semantic.Available() {
		warmer, err := e.newWarmer(false, nil)
		if err != nil {
			return err
		}
		pipelineOpts = append(pipelineOpts, ingestion.WithWarmer(warmer))
	}
	e.pipeline, err = ingestion.NewPipeline(e.candidates, pipelineOpts...)
	return err
}

func (e *Engine) embedder() ai.Embedder {
	if e.provider == nil {
		return ai.Unavailable()
	}
	return e.provider.Embedder()
}

func (e *Engine) newWarmer(force bool, progress io.Writer) (*reembed.Warmer, error) {
	cfg := reembed.DefaultConfig()
	cfg.BatchSize = e.cfg.WarmBatchSize
	cfg.Force = force

	opts := []reembed.Option{
		reembed.WithMetrics(e.recorder),
		reembed.WithLogger(e.logger),
	}
	if progress != nil {
		opts = append(opts, reembed.WithProgress(progress))
	}
	return reembed.NewWarmer(e.candidates, e.embeddings, e.embedder(), cfg, opts...)
}

// Config returns the configuration the engine was opened with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// SemanticAvailable reports whether an embedding backend is configured.
func (e *Engine) SemanticAvailable() bool {
	return e.semantic.Available()
}

// Rank returns the best limit candidates for q. Nil weights use the
// configured weights and a non-positive limit uses the configured limit.
func (e *Engine) Rank(ctx context.Context, q core.Query, w *ranking.Weights, limit int) ([]*core.Recommendation, error) {
	if err := core.ValidateQuery(q); err != nil {
		return nil, err
	}
	if w == nil {
		configured := e.cfg.Weights
		w = &configured
	}
	if limit <= 0 {
		limit = e.cfg.Limit
	}
	return e.ranker.Rank(ctx, q, w, limit)
}

// Explained is a recommendation with a human-readable reason.
type Explained struct {
	*core.Recommendation
	Reason string `json:"reason"`
}

// Answer is the result of a free-text request.
type Answer struct {
	Topics  []string     `json:"topics"`
	Results []*Explained `json:"results"`
}

// Ask ranks candidates for a free-text request. Series, Year and Lookback
// are taken from q; topics are extracted from text. The configured topic
// extractor is preferred and the local word parser is used when it is
// missing, fails or finds nothing.
func (e *Engine) Ask(ctx context.Context, text string, q core.Query, limit int) (*Answer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyRequest
	}

	q.Topics = e.extractTopics(ctx, text)
	recs, err := e.Rank(ctx, q, nil, limit)
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Topics:  q.Topics,
		Results: make([]*Explained, len(recs)),
	}
	for i, rec := range recs {
		answer.Results[i] = &Explained{Recommendation: rec, Reason: ranking.Explain(rec)}
	}
	return answer, nil
}

func (e *Engine) extractTopics(ctx context.Context, text string) []string {
	if e.provider != nil {
		if extractor := e.provider.TopicExtractor(); extractor != nil {
			topics, err := extractor.ExtractTopics(ctx, text)
			switch {
			case err != nil:
				e.logger.Warn("topic extraction failed, parsing request locally", "err", err)
			case len(topics) > 0:
				return topics
			}
		}
	}
	return ranking.ParseFreeText(text)
}

// Import stores the candidates of ds and refreshes the centrality vector.
func (e *Engine) Import(ctx context.Context, ds *ingestion.Dataset) (*ingestion.Result, error) {
	result, err := e.pipeline.Import(ctx, ds)
	if err != nil {
		return result, err
	}
	if result.Imported > 0 || result.Editions > 0 {
		if _, err := e.centrality.Refresh(ctx); err != nil {
			e.logger.Warn("centrality refresh after import failed", "err", err)
		}
	}
	return result, nil
}

// ImportFile decodes the dataset at path and imports it.
func (e *Engine) ImportFile(ctx context.Context, path string) (*ingestion.Result, error) {
	ds, err := ingestion.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return e.Import(ctx, ds)
}

// WaitForWarmup blocks until background embedding of imported candidates
// has finished.
func (e *Engine) WaitForWarmup() {
	e.pipeline.Wait()
}

// WarmEmbeddings fills the embedding cache for every stored candidate.
// Progress lines go to progress when it is not nil.
func (e *Engine) WarmEmbeddings(ctx context.Context, force bool, progress io.Writer) (*reembed.Summary, error) {
	warmer, err := e.newWarmer(force, progress)
	if err != nil {
		return nil, err
	}
	return warmer.Run(ctx)
}

// EnrichTopics derives topic labels from stored publication titles and
// appends the new ones to each candidate's topics. With useModel the labels
// come from the AI provider's topic extractor, otherwise from a TF-IDF model
// over the selected candidates.
func (e *Engine) EnrichTopics(ctx context.Context, opts ingestion.TopicOptions, useModel bool) (*ingestion.TopicSummary, error) {
	var extractor ai.TopicExtractor
	if useModel {
		if e.provider != nil {
			extractor = e.provider.TopicExtractor()
		}
		if extractor == nil {
			return nil, ErrNoTopicExtractor
		}
	}

	enricher, err := ingestion.NewTopicEnricher(e.candidates, extractor, e.logger)
	if err != nil {
		return nil, err
	}
	return enricher.Enrich(ctx, opts)
}

// Centrality returns the current co-membership centrality of every candidate.
func (e *Engine) Centrality(ctx context.Context) map[core.ID]float64 {
	return e.centrality.Scores(ctx)
}

// RefreshCentrality recomputes and caches the centrality vector.
func (e *Engine) RefreshCentrality(ctx context.Context) (map[core.ID]float64, error) {
	return e.centrality.Refresh(ctx)
}

// Candidate returns a stored candidate.
func (e *Engine) Candidate(ctx context.Context, id core.ID) (*core.Candidate, error) {
	return e.candidates.GetCandidate(ctx, id)
}

// Stats returns structural counts of the stored dataset.
func (e *Engine) Stats(ctx context.Context) (core.DatasetStats, error) {
	return e.candidates.Stats(ctx)
}

// Close waits for background work and releases every resource.
func (e *Engine) Close() error {
	if e.pipeline != nil {
		e.pipeline.Release()
	}
	if e.ranker != nil {
		e.ranker.Release()
	}
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
		}
	}

	var errs []error
	if e.candidates != nil {
		if err := e.candidates.Close(); err != nil {
			e.logger.Error("error closing candidate repository", "err", err)
			errs = append(errs, err)
		}
	}
	if e.backend != nil {
		if err := e.backend.Close(); err != nil {
			e.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	e.pipeline, e.ranker, e.provider, e.candidates, e.backend = nil, nil, nil, nil, nil
	return errors.Join(errs...)
}
