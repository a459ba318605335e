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


package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/pcrank/ai"
	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/metrics"
	"github.com/poiesic/pcrank/storage"
)

// Config holds configuration for an embedding rebuild.
type Config struct {
	// BatchSize is the number of candidates embedded per request
	BatchSize int

	// ReportInterval is how often to report progress (number of candidates)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding request
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Force re-embeds candidates whose cached entry is still current
	Force bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Summary reports the outcome of a full rebuild.
type Summary struct {
	Total    int
	Embedded int
	Skipped  int
	Elapsed  time.Duration
}

// Warmer fills the embedding cache for stored candidates.
type Warmer struct {
	repo      storage.CandidateRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *CandidateIterator
	recorder  *metrics.Recorder
	logger    *slog.Logger
}

// Option configures a Warmer.
type Option func(*Warmer)

// WithProgress writes progress lines to w (typically os.Stderr).
func WithProgress(w io.Writer) Option {
	return func(wr *Warmer) {
		wr.progress = w
	}
}

// WithMetrics counts warmed embeddings on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(wr *Warmer) {
		wr.recorder = r
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(wr *Warmer) {
		if logger == nil {
			logger = slog.Default()
		}
		wr.logger = logger
	}
}

// NewWarmer creates a new warmer. A nil config uses DefaultConfig and a nil
// embedder is treated as unavailable.
func NewWarmer(repo storage.CandidateRepository, cache storage.EmbeddingCache, embedder ai.Embedder, config *Config, opts ...Option) (*Warmer, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if embedder == nil {
		embedder = ai.Unavailable()
	}
	if config == nil {
		config = DefaultConfig()
	}

	w := &Warmer{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  io.Discard,
		processor: NewBatchProcessor(cache, embedder, config.MaxRetries, config.RetryDelay, config.Force),
		iterator:  NewCandidateIterator(repo, config.BatchSize),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "reembed")
	return w, nil
}

// Warm embeds the given candidates in batches. It satisfies the ingestion
// warm-up hook, so stale or missing entries are filled right after import.
func (w *Warmer) Warm(ctx context.Context, candidates ...*core.Candidate) error {
	if !ai.IsAvailable(w.embedder) {
		return ai.ErrEmbeddingUnavailable
	}

	var total BatchResult
	err := forEachBatch(ctx, candidates, w.iterator.batchSize, func(batch []*core.Candidate) error {
		res, err := w.processor.Process(ctx, batch)
		total.Embedded += res.Embedded
		total.Skipped += res.Skipped
		return err
	})
	w.recorder.EmbeddingsWarmed(total.Embedded)
	w.logger.Debug("warmed candidates", "embedded", total.Embedded, "skipped", total.Skipped)
	return err
}

// Run rebuilds embeddings for every stored candidate, reporting progress to
// the configured writer.
func (w *Warmer) Run(ctx context.Context) (*Summary, error) {
	if !ai.IsAvailable(w.embedder) {
		return nil, ai.ErrEmbeddingUnavailable
	}

	stats, err := w.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count candidates: %w", err)
	}

	summary := &Summary{Total: stats.Candidates}
	if summary.Total == 0 {
		fmt.Fprintf(w.progress, "No candidates found in database (0 candidates)\n")
		return summary, nil
	}

	fmt.Fprintf(w.progress, "Starting embedding rebuild of %d candidates (batch size: %d, model: %s)\n",
		summary.Total, w.iterator.batchSize, w.embedder.ModelName())

	tracker := NewProgressTracker(w.progress, summary.Total, w.config.ReportInterval)
	tracker.Start()

	err = w.iterator.ForEach(ctx, func(batch []*core.Candidate) error {
		res, err := w.processor.Process(ctx, batch)
		summary.Embedded += res.Embedded
		summary.Skipped += res.Skipped
		w.recorder.EmbeddingsWarmed(res.Embedded)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		tracker.Add(res)
		return nil
	})
	summary.Elapsed = tracker.Elapsed()
	if err != nil {
		w.logger.Error("embedding rebuild failed", "embedded", summary.Embedded, "err", err)
		return summary, err
	}

	tracker.Finish()
	summary.Elapsed = tracker.Elapsed()
	fmt.Fprintf(w.progress, "Embedding rebuild complete. Embedded %d, skipped %d of %d candidates in %v\n",
		summary.Embedded, summary.Skipped, summary.Total, summary.Elapsed.Round(time.Millisecond))

	return summary, nil
}
