package reembed

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEmbedder for testing
type mockEmbedder struct {
	embedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)
	model          string

	mu    sync.Mutex
	calls int
	texts []string
}

func (m *mockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	out, err := m.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (m *mockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.texts = append(m.texts, texts...)
	m.mu.Unlock()

	if m.embedTextsFunc != nil {
		return m.embedTextsFunc(ctx, texts)
	}
	// Default: return unnormalized vectors for each text
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{1.0, 2.0, 2.0} // magnitude = 3.0
	}
	return result, nil
}

func (m *mockEmbedder) ModelName() string {
	if m.model == "" {
		return "test-model"
	}
	return m.model
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestBatchProcessor_Process(t *testing.T) {
	stores := setupTestDB(t)
	added := addCandidates(t, stores, 2)
	ctx := context.Background()

	embedder := &mockEmbedder{}
	processor := NewBatchProcessor(stores.Embeddings, embedder, 3, 10*time.Millisecond, false)

	res, err := processor.Process(ctx, added)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Embedded: 2}, res)
	assert.Equal(t, 1, embedder.callCount(), "one request per batch")

	for _, c := range added {
		entry, err := stores.Embeddings.LoadEmbedding(ctx, c.Id)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "test-model", entry.ModelName)
		assert.Equal(t, core.ContentHash(semantic.ProfileText(c)), entry.ContentHash)
		assert.InDelta(t, 1.0, magnitude(entry.Vector), 1e-5, "vector should be normalized")
	}
}

func TestBatchProcessor_SkipsFreshEntries(t *testing.T) {
	stores := setupTestDB(t)
	added := addCandidates(t, stores, 3)
	ctx := context.Background()

	embedder := &mockEmbedder{}
	_, err := NewBatchProcessor(stores.Embeddings, embedder, 1, time.Millisecond, false).Process(ctx, added[:2])
	require.NoError(t, err)

	res, err := NewBatchProcessor(stores.Embeddings, embedder, 1, time.Millisecond, false).Process(ctx, added)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Embedded: 1, Skipped: 2}, res)
	assert.Len(t, embedder.texts, 3, "only the missing profile should be sent again")

	res, err = NewBatchProcessor(stores.Embeddings, embedder, 1, time.Millisecond, true).Process(ctx, added)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Embedded: 3}, res, "force re-embeds everything")

	changed := &mockEmbedder{model: "other-model"}
	res, err = NewBatchProcessor(stores.Embeddings, changed, 1, time.Millisecond, false).Process(ctx, added)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Embedded, "a model change invalidates cached entries")
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	stores := setupTestDB(t)
	embedder := &mockEmbedder{}
	processor := NewBatchProcessor(stores.Embeddings, embedder, 3, 10*time.Millisecond, false)

	res, err := processor.Process(context.Background(), []*core.Candidate{})
	require.NoError(t, err, "empty batch should not error")
	assert.Zero(t, res)

	res, err = processor.Process(context.Background(), []*core.Candidate{{Id: 9}})
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Skipped: 1}, res, "candidates without profile text are skipped")
	assert.Zero(t, embedder.callCount())
}

func TestBatchProcessor_EmbeddingError(t *testing.T) {
	stores := setupTestDB(t)
	added := addCandidates(t, stores, 1)

	expectedErr := errors.New("embedding error")
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, expectedErr
		},
	}
	processor := NewBatchProcessor(stores.Embeddings, embedder, 3, time.Millisecond, false)

	_, err := processor.Process(context.Background(), added)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 3, embedder.callCount(), "should retry up to max attempts")

	entry, err := stores.Embeddings.LoadEmbedding(context.Background(), added[0].Id)
	require.NoError(t, err)
	assert.Nil(t, entry, "failed embeddings are not cached")
}

func TestBatchProcessor_Retry(t *testing.T) {
	stores := setupTestDB(t)
	added := addCandidates(t, stores, 1)

	attempts := 0
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts < 2 {
				return nil, errors.New("temporary error")
			}
			result := make([][]float32, len(texts))
			for i := range texts {
				result[i] = []float32{1.0, 0.0, 0.0}
			}
			return result, nil
		},
	}
	processor := NewBatchProcessor(stores.Embeddings, embedder, 3, 10*time.Millisecond, false)

	res, err := processor.Process(context.Background(), added)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts, "should retry on failure")
	assert.Equal(t, 1, res.Embedded)
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	stores := setupTestDB(t)
	added := addCandidates(t, stores, 2)

	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 0}}, nil
		},
	}
	_, err := NewBatchProcessor(stores.Embeddings, embedder, 1, time.Millisecond, false).Process(context.Background(), added)
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
}

func TestBatchProcessor_ContextCancellation(t *testing.T) {
	stores := setupTestDB(t)
	added := addCandidates(t, stores, 1)

	ctx, cancel := context.WithCancel(context.Background())
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			cancel() // Cancel during embedding
			return nil, errors.New("error")
		},
	}
	processor := NewBatchProcessor(stores.Embeddings, embedder, 3, 10*time.Millisecond, false)

	_, err := processor.Process(ctx, added)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchProcessor_VectorNormalization(t *testing.T) {
	stores := setupTestDB(t)
	added := addCandidates(t, stores, 1)

	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			// Vector (3, 4) has magnitude 5
			return [][]float32{{3.0, 4.0}}, nil
		},
	}
	_, err := NewBatchProcessor(stores.Embeddings, embedder, 1, time.Millisecond, false).Process(context.Background(), added)
	require.NoError(t, err)

	entry, err := stores.Embeddings.LoadEmbedding(context.Background(), added[0].Id)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.InDelta(t, 0.6, entry.Vector[0], 1e-6)
	assert.InDelta(t, 0.8, entry.Vector[1], 1e-6)
}
