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


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/storage"
)

// CentralityCache implements storage.CentralityCache for BadgerDB.
type CentralityCache struct {
	backend *Backend
}

var _ storage.CentralityCache = (*CentralityCache)(nil)

// NewCentralityCache creates a new CentralityCache.
func NewCentralityCache(backend *Backend) *CentralityCache {
	return &CentralityCache{
		backend: backend,
	}
}

// SaveCentrality replaces the entry stored under entry.Key.
func (c *CentralityCache) SaveCentrality(ctx context.Context, entry *core.CentralityEntry) error {
	value, err := storage.MarshalCentrality(entry)
	if err != nil {
		return err
	}
	return c.backend.Update(func(tx *badger.Txn) error {
		return tx.Set(makeCentralityKey(entry.Key), value)
	})
}

// LoadCentrality retrieves the entry stored under key.
// Returns nil, nil if no entry exists.
func (c *CentralityCache) LoadCentrality(ctx context.Context, key string) (*core.CentralityEntry, error) {
	var entry *core.CentralityEntry
	err := c.backend.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCentralityKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalCentrality(val)
			return unmarshalErr
		})
	})

	return entry, err
}

// EmbeddingCache implements storage.EmbeddingCache for BadgerDB.
type EmbeddingCache struct {
	backend *Backend
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache creates a new EmbeddingCache.
func NewEmbeddingCache(backend *Backend) *EmbeddingCache {
	return &EmbeddingCache{
		backend: backend,
	}
}

// SaveEmbedding upserts the entry for entry.CandidateID.
func (c *EmbeddingCache) SaveEmbedding(ctx context.Context, entry *core.EmbeddingEntry) error {
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}
	value := storage.MarshalEmbedding(entry)
	return c.backend.Update(func(tx *badger.Txn) error {
		return tx.Set(makeEmbeddingKey(entry.CandidateID), value)
	})
}

// LoadEmbedding retrieves the entry for a candidate.
// Returns nil, nil if no entry exists.
func (c *EmbeddingCache) LoadEmbedding(ctx context.Context, id core.ID) (*core.EmbeddingEntry, error) {
	var entry *core.EmbeddingEntry
	err := c.backend.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalEmbedding(val)
			return unmarshalErr
		})
	})

	return entry, err
}
