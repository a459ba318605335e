package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/storage"
)

// DefaultBatchSize is the number of candidates stored per repository call.
const DefaultBatchSize = 100

// Pipeline imports datasets into a candidate repository and schedules
// warm-up of the stored candidates.
type Pipeline struct {
	repo      storage.CandidateRepository
	warmer    Warmer
	warmPool  *ants.Pool
	warming   sync.WaitGroup
	batchSize int
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for warm-up tasks.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.warmPool != nil {
			p.warmPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.warmPool = pool
		return nil
	}
}

// WithBatchSize sets how many candidates are stored per repository call.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithWarmer schedules every stored batch on w. Without a warmer the
// import only writes candidates.
func WithWarmer(w Warmer) Option {
	return func(p *Pipeline) error {
		p.warmer = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new import pipeline.
func NewPipeline(repo storage.CandidateRepository, opts ...Option) (*Pipeline, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	p := &Pipeline{
		repo:      repo,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	if p.warmPool == nil {
		poolSize := runtime.NumCPU() / 2
		if poolSize < 1 {
			poolSize = 1
		}
		pool, err := ants.NewPool(poolSize)
		if err != nil {
			return nil, err
		}
		p.warmPool = pool
	}

	p.logger = p.logger.With("component", "ingestion")
	return p, nil
}

// Result summarizes one import.
type Result struct {
	// Imported is the number of candidates written.
	Imported int
	// Updated counts the written candidates that were already stored and
	// had the imported record merged into them.
	Updated int
	// Editions is the number of explicitly listed editions registered.
	Editions int
	// Rejected holds one validation error per skipped candidate.
	Rejected []error
}

// ImportFile decodes the dataset at path and imports it.
func (p *Pipeline) ImportFile(ctx context.Context, path string) (*Result, error) {
	ds, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Import(ctx, ds)
}

// Import validates and stores every candidate of ds. Invalid candidates are
// skipped and reported in the result. When a warmer is configured each
// stored batch is warmed asynchronously; call Wait to block until warm-up
// finishes.
func (p *Pipeline) Import(ctx context.Context, ds *Dataset) (*Result, error) {
	if ds == nil {
		return nil, ErrDatasetRequired
	}

	result := &Result{}

	if editions := ds.EditionList(); len(editions) > 0 {
		if err := p.repo.AddEditions(ctx, editions...); err != nil {
			return nil, fmt.Errorf("failed to store editions: %w", err)
		}
		result.Editions = len(editions)
	}

	valid := make([]*core.Candidate, 0, len(ds.Researchers))
	for _, c := range ds.Candidates() {
		if err := core.ValidateCandidate(c); err != nil {
			p.logger.Warn("skipping invalid candidate", "name", c.FullName, "err", err)
			result.Rejected = append(result.Rejected, err)
			continue
		}
		valid = append(valid, c)
	}

	for i, c := range valid {
		resolved, known, err := p.resolve(ctx, c)
		if err != nil {
			return result, fmt.Errorf("failed to look up candidate %q: %w", c.FullName, err)
		}
		if known {
			result.Updated++
		}
		valid[i] = resolved
	}

	for start := 0; start < len(valid); start += p.batchSize {
		end := min(start+p.batchSize, len(valid))
		stored, err := p.repo.AddCandidates(ctx, valid[start:end]...)
		if err != nil {
			return result, fmt.Errorf("failed to store candidates: %w", err)
		}
		result.Imported += len(stored)
		p.submitWarm(ctx, stored)
	}

	p.logger.Info("imported dataset",
		"candidates", result.Imported,
		"updated", result.Updated,
		"editions", result.Editions,
		"rejected", len(result.Rejected))
	return result, nil
}

// resolve finds the stored record c refers to, by explicit ID first and by
// normalized name otherwise, and merges c into it. Stored values win; c only
// fills what the stored record lacks. Unknown candidates are returned as is.
func (p *Pipeline) resolve(ctx context.Context, c *core.Candidate) (*core.Candidate, bool, error) {
	var stored *core.Candidate
	var err error
	if c.Id != 0 {
		stored, err = p.repo.GetCandidate(ctx, c.Id)
	}
	if c.Id == 0 || errors.Is(err, storage.ErrNotFound) {
		stored, err = p.repo.FindByName(ctx, c.FullName)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return c, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	mergeCandidate(stored, c)
	return stored, true, nil
}

// Wait blocks until all scheduled warm-up tasks have finished.
func (p *Pipeline) Wait() {
	p.warming.Wait()
}

// Release waits for pending warm-up and releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.warming.Wait()
	if p.warmPool != nil {
		p.warmPool.Release()
	}
}
