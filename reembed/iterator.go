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

	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/storage"
)

const (
	// DefaultBatchSize is the default number of candidates embedded per request
	DefaultBatchSize = 32
)

// CandidateIterator walks the stored candidate population in batches.
type CandidateIterator struct {
	repo      storage.CandidateRepository
	batchSize int
}

// NewCandidateIterator creates a new iterator.
// If batchSize <= 0, DefaultBatchSize is used.
func NewCandidateIterator(repo storage.CandidateRepository, batchSize int) *CandidateIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &CandidateIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn with consecutive batches of candidates in ID order.
// Iteration stops at the first error returned by fn or when ctx is done.
func (it *CandidateIterator) ForEach(ctx context.Context, fn func([]*core.Candidate) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	candidates, err := it.repo.AllCandidates(ctx)
	if err != nil {
		return err
	}

	return forEachBatch(ctx, candidates, it.batchSize, fn)
}

// forEachBatch splits candidates into batches of size and calls fn on each.
func forEachBatch(ctx context.Context, candidates []*core.Candidate, size int, fn func([]*core.Candidate) error) error {
	for i := 0; i < len(candidates); i += size {
		end := min(i+size, len(candidates))
		if err := fn(candidates[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}
