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


// Package storage provides the storage abstraction layer for pcrank.
//
// This package defines repository and cache interfaces that decouple the
// ranking engine from the storage implementation:
//
//   - CandidateRepository: the candidate population, editions and memberships
//   - CentralityCache: the cached centrality vector of the co-membership graph
//   - EmbeddingCache: per-candidate profile embeddings keyed by content hash
//
// The badger sub-package implements all three on a single BadgerDB instance.
//
// # Serialization
//
// Candidates, editions and centrality vectors are encoded with CBOR.
// Embedding entries use a compact mus encoding since they are dominated by
// float32 vectors. Decoding failures wrap ErrSerializationFailed; callers
// treat malformed cache entries as misses.
//
// # Usage
//
//	backend, err := badger.OpenBackend("", true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	candidates, err := badger.NewCandidateRepository(backend)
//	embeddings, err := storage.NewLRUEmbeddingCache(badger.NewEmbeddingCache(backend), 1024)
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
