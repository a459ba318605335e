package storage

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/pcrank/core"
)

// LRUEmbeddingCache fronts another EmbeddingCache with an in-process LRU of
// decoded entries. Writes go through to the inner cache before the LRU is
// updated, so the LRU never holds an entry the durable store lacks.
type LRUEmbeddingCache struct {
	inner EmbeddingCache
	lru   *lru.Cache[core.ID, *core.EmbeddingEntry]
}

var _ EmbeddingCache = (*LRUEmbeddingCache)(nil)

// NewLRUEmbeddingCache wraps inner with an LRU holding up to size entries.
func NewLRUEmbeddingCache(inner EmbeddingCache, size int) (*LRUEmbeddingCache, error) {
	if size <= 0 {
		return nil, ErrInvalidCacheSize
	}
	cache, err := lru.New[core.ID, *core.EmbeddingEntry](size)
	if err != nil {
		return nil, err
	}
	return &LRUEmbeddingCache{inner: inner, lru: cache}, nil
}

// LoadEmbedding returns the entry from the LRU, falling back to the inner cache.
func (c *LRUEmbeddingCache) LoadEmbedding(ctx context.Context, id core.ID) (*core.EmbeddingEntry, error) {
	if entry, ok := c.lru.Get(id); ok {
		return entry, nil
	}
	entry, err := c.inner.LoadEmbedding(ctx, id)
	if err != nil || entry == nil {
		return entry, err
	}
	c.lru.Add(id, entry)
	return entry, nil
}

// SaveEmbedding writes through to the inner cache and then updates the LRU.
func (c *LRUEmbeddingCache) SaveEmbedding(ctx context.Context, entry *core.EmbeddingEntry) error {
	if err := c.inner.SaveEmbedding(ctx, entry); err != nil {
		c.lru.Remove(entry.CandidateID)
		return err
	}
	c.lru.Add(entry.CandidateID, entry)
	return nil
}

// Len returns the number of entries held in memory.
func (c *LRUEmbeddingCache) Len() int {
	return c.lru.Len()
}

// Purge drops every in-memory entry. The inner cache is untouched.
func (c *LRUEmbeddingCache) Purge() {
	c.lru.Purge()
}
