package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentralityCache(t *testing.T) {
	stores := newStores(t)
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		entry, err := stores.Centrality.LoadCentrality(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("save and overwrite", func(t *testing.T) {
		first := &core.CentralityEntry{
			Key:        "graph",
			ComputedAt: time.Now().UTC(),
			Signature:  "sig-1",
			Values:     map[core.ID]float64{1: 1, 2: 0},
		}
		require.NoError(t, stores.Centrality.SaveCentrality(ctx, first))

		second := &core.CentralityEntry{
			Key:        "graph",
			ComputedAt: time.Now().UTC(),
			Signature:  "sig-2",
			Values:     map[core.ID]float64{3: 0.5},
		}
		require.NoError(t, stores.Centrality.SaveCentrality(ctx, second))

		got, err := stores.Centrality.LoadCentrality(ctx, "graph")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "sig-2", got.Signature)
		assert.Equal(t, map[core.ID]float64{3: 0.5}, got.Values)
	})

	t.Run("malformed entry", func(t *testing.T) {
		putRaw(t, stores.Backend, makeCentralityKey("broken"), []byte("garbage"))
		_, err := stores.Centrality.LoadCentrality(ctx, "broken")
		assert.ErrorIs(t, err, storage.ErrSerializationFailed)
	})
}

func TestEmbeddingCache(t *testing.T) {
	stores := newStores(t)
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		entry, err := stores.Embeddings.LoadEmbedding(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("upsert", func(t *testing.T) {
		require.NoError(t, stores.Embeddings.SaveEmbedding(ctx, &core.EmbeddingEntry{
			CandidateID: 7,
			ModelName:   "old-model",
			ContentHash: "h1",
			Vector:      []float32{1, 0},
		}))
		require.NoError(t, stores.Embeddings.SaveEmbedding(ctx, &core.EmbeddingEntry{
			CandidateID: 7,
			ModelName:   "new-model",
			ContentHash: "h2",
			Vector:      []float32{0, 1},
		}))

		got, err := stores.Embeddings.LoadEmbedding(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "new-model", got.ModelName)
		assert.Equal(t, "h2", got.ContentHash)
		assert.Equal(t, []float32{0, 1}, got.Vector)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("malformed entry", func(t *testing.T) {
		putRaw(t, stores.Backend, makeEmbeddingKey(8), []byte{0x01})
		_, err := stores.Embeddings.LoadEmbedding(ctx, 8)
		assert.ErrorIs(t, err, storage.ErrSerializationFailed)
	})
}
