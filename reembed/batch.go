package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/pcrank/ai"
	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/semantic"
	"github.com/poiesic/pcrank/storage"
)

// BatchResult counts the outcome of one processed batch.
type BatchResult struct {
	Embedded int
	Skipped  int
}

// BatchProcessor embeds the profile texts of a batch of candidates with a
// single request and stores the normalized vectors in the embedding cache.
type BatchProcessor struct {
	cache          storage.EmbeddingCache
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	force          bool
}

// NewBatchProcessor creates a new batch processor. When force is false,
// candidates whose cached entry matches the current model and profile text
// are skipped.
func NewBatchProcessor(cache storage.EmbeddingCache, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration, force bool) *BatchProcessor {
	return &BatchProcessor{
		cache:          cache,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		force:          force,
	}
}

// Process embeds and caches one batch. Candidates with no profile text
// are skipped.
func (bp *BatchProcessor) Process(ctx context.Context, candidates []*core.Candidate) (BatchResult, error) {
	var result BatchResult
	if len(candidates) == 0 {
		return result, nil
	}

	model := bp.embedder.ModelName()
	pending := make([]*core.Candidate, 0, len(candidates))
	texts := make([]string, 0, len(candidates))
	hashes := make([]string, 0, len(candidates))
	for _, c := range candidates {
		text := semantic.ProfileText(c)
		if text == "" {
			result.Skipped++
			continue
		}
		hash := core.ContentHash(text)
		if !bp.force {
			entry, err := bp.cache.LoadEmbedding(ctx, c.Id)
			if err == nil && semantic.Fresh(entry, model, hash) {
				result.Skipped++
				continue
			}
		}
		pending = append(pending, c)
		texts = append(texts, text)
		hashes = append(hashes, hash)
	}
	if len(pending) == 0 {
		return result, nil
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, bp.maxRetries, bp.retryBaseDelay, func(ctx context.Context) error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return result, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(pending) {
		return result, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(pending), len(embeddings))
	}

	now := time.Now().UTC()
	for i, c := range pending {
		vec := semantic.Normalize(embeddings[i])
		if len(vec) == 0 {
			result.Skipped++
			continue
		}
		err := bp.cache.SaveEmbedding(ctx, &core.EmbeddingEntry{
			CandidateID: c.Id,
			ModelName:   model,
			ContentHash: hashes[i],
			UpdatedAt:   now,
			Vector:      vec,
		})
		if err != nil {
			return result, fmt.Errorf("failed to store embedding for candidate %d: %w", c.Id, err)
		}
		result.Embedded++
	}

	return result, nil
}
