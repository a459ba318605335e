package pcrank

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/pcrank/ai/mock"
	"github.com/poiesic/pcrank/config"
	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/ingestion"
	"github.com/poiesic/pcrank/ranking"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDataset = `
researchers:
  - full_name: Ada Lovelace
    research_interests: program analysis, verification
    bio: Works on static analysis of engines.
    cited_by_count: 400
    h_index: 12
    services:
      - series: ICSE
        year: 2023
      - series: ICSE
        year: 2024
  - full_name: Bob Codd
    research_interests: databases
    services:
      - series: ICSE
        year: 2024
  - full_name: Carol Backus
    research_interests: compilers
`

func testClock() time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}

func openTestEngine(t *testing.T, mutate func(*config.Config), opts ...Option) *Engine {
	cfg := config.New()
	cfg.InMemory = true
	cfg.PoolSize = 2
	if mutate != nil {
		mutate(cfg)
	}

	e, err := Open(cfg, append([]Option{WithClock(testClock)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func importTestDataset(t *testing.T, e *Engine) *ingestion.Result {
	ds, err := ingestion.Decode(strings.NewReader(testDataset))
	require.NoError(t, err)
	result, err := e.Import(context.Background(), ds)
	require.NoError(t, err)
	require.Equal(t, 3, result.Imported)
	return result
}

func TestOpen(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		cfg := config.New()
		cfg.InMemory = true
		cfg.Limit = 0
		_, err := Open(cfg)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("data dir is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(path, []byte("test"), 0o644))

		cfg := config.New()
		cfg.DataDir = path
		e, err := Open(cfg)
		assert.Error(t, err)
		assert.Nil(t, e)
	})

	t.Run("on disk", func(t *testing.T) {
		cfg := config.New()
		cfg.DataDir = filepath.Join(t.TempDir(), "db")
		e, err := Open(cfg)
		require.NoError(t, err)
		assert.False(t, e.SemanticAvailable())
		assert.Same(t, cfg, e.Config())
		assert.NoError(t, e.Close())
		assert.NoError(t, e.Close(), "closing twice is harmless")
	})
}

func TestEngine_ImportAndRank(t *testing.T) {
	e := openTestEngine(t, nil)
	importTestDataset(t, e)
	ctx := context.Background()

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Candidates)
	assert.Equal(t, 3, stats.Memberships)
	assert.Equal(t, 2024, stats.MaxEditionYear)

	q := core.Query{Series: "ICSE", Year: 2025, Topics: []string{"program analysis"}, Lookback: 5}
	recs, err := e.Rank(ctx, q, nil, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Ada Lovelace", recs[0].Candidate.FullName)
	assert.InDelta(t, 1.0, recs[0].Breakdown.TopicSimilarity, 1e-9)
	assert.Zero(t, recs[0].Breakdown.SemanticScore, "no embedding backend configured")
	assert.GreaterOrEqual(t, recs[0].Score, recs[1].Score)

	all, err := e.Rank(ctx, q, nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3, "configured limit exceeds the population")

	_, err = e.Rank(ctx, core.Query{Year: -1}, nil, 5)
	assert.ErrorIs(t, err, core.ErrInvalidQuery)
}

func TestEngine_CustomWeights(t *testing.T) {
	e := openTestEngine(t, nil)
	importTestDataset(t, e)

	w, err := ranking.MergeWeights(nil, map[string]float64{
		"topic": 0, "semantic": 0, "pub_recency": 0, "pc_recency": 0,
		"impact": 1, "pagerank": 0, "experience": 0, "newcomer": 0,
	})
	require.NoError(t, err)

	recs, err := e.Rank(context.Background(), core.Query{Topics: []string{"databases"}}, w, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Ada Lovelace", recs[0].Candidate.FullName, "only Ada has citations")
}

func TestEngine_Centrality(t *testing.T) {
	e := openTestEngine(t, nil)
	importTestDataset(t, e)
	ctx := context.Background()

	ada, err := e.Candidate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", ada.FullName)

	scores := e.Centrality(ctx)
	assert.Len(t, scores, 2, "only committee members are graph nodes")
	assert.Contains(t, scores, core.ID(1))
	assert.Contains(t, scores, core.ID(2))

	refreshed, err := e.RefreshCentrality(ctx)
	require.NoError(t, err)
	assert.Equal(t, scores, refreshed)
}

func TestEngine_Ask(t *testing.T) {
	provider := mock.NewProvider()
	e := openTestEngine(t, nil, WithAIProvider(provider))
	importTestDataset(t, e)
	ctx := context.Background()
	assert.True(t, e.SemanticAvailable())

	answer, err := e.Ask(ctx, "program analysis and verification", core.Query{Series: "ICSE", Year: 2025}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"program analysis", "verification"}, answer.Topics)
	require.Len(t, answer.Results, 3)
	assert.Equal(t, "Ada Lovelace", answer.Results[0].Candidate.FullName)
	assert.Contains(t, answer.Results[0].Reason, "Ada Lovelace is recommended because their topics match your query")
	assert.Equal(t, 1, provider.MockExtractor().CallCount())

	_, err = e.Ask(ctx, "   ", core.Query{}, 3)
	assert.ErrorIs(t, err, ErrEmptyRequest)

	require.NoError(t, e.Close())
	assert.True(t, provider.Closed(), "closing the engine closes its provider")
}

func TestEngine_AskFallsBackToLocalParsing(t *testing.T) {
	provider := mock.NewProvider()
	provider.MockExtractor().ExtractTopicsFunc = func(context.Context, string) ([]string, error) {
		return nil, errors.New("model offline")
	}
	e := openTestEngine(t, nil, WithAIProvider(provider))
	importTestDataset(t, e)

	answer, err := e.Ask(context.Background(), "Looking for databases, experts", core.Query{}, 3)
	require.NoError(t, err)
	assert.Equal(t, ranking.ParseFreeText("Looking for databases, experts"), answer.Topics)
	assert.NotEmpty(t, answer.Topics)
	assert.Len(t, answer.Results, 3)
	assert.Equal(t, 1, provider.MockExtractor().CallCount())
}

func TestEngine_WarmEmbeddings(t *testing.T) {
	provider := mock.NewProvider()
	reg := prometheus.NewRegistry()
	e := openTestEngine(t, nil, WithAIProvider(provider), WithRegisterer(reg))
	importTestDataset(t, e)
	ctx := context.Background()

	var buf bytes.Buffer
	summary, err := e.WarmEmbeddings(ctx, false, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Embedded)
	assert.Contains(t, buf.String(), "3/3")

	summary, err = e.WarmEmbeddings(ctx, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Skipped)

	summary, err = e.WarmEmbeddings(ctx, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Embedded)

	count, err := testutil.GatherAndCount(reg, "pcrank_embeddings_warmed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEngine_WarmOnImport(t *testing.T) {
	provider := mock.NewProvider()
	e := openTestEngine(t, func(cfg *config.Config) { cfg.WarmOnImport = true }, WithAIProvider(provider))
	importTestDataset(t, e)
	e.WaitForWarmup()

	embedder := provider.MockEmbedder()
	warmedCalls := embedder.CallCount()
	assert.Positive(t, warmedCalls)

	// Candidate vectors now come from the cache; only the query is embedded.
	_, err := e.Rank(context.Background(), core.Query{Topics: []string{"verification"}}, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, warmedCalls+1, embedder.CallCount())
}

func TestEngine_WarmWithoutBackend(t *testing.T) {
	e := openTestEngine(t, func(cfg *config.Config) { cfg.WarmOnImport = true })
	importTestDataset(t, e)
	e.WaitForWarmup()

	_, err := e.WarmEmbeddings(context.Background(), false, nil)
	assert.Error(t, err)
}

const publicationsDataset = `
researchers:
  - full_name: Ada Lovelace
    publications:
      - title: Static Analysis
      - title: Model Checking
      - title: Abstract Interpretation
  - full_name: Bob Codd
    publications:
      - title: Relational Algebra
`

func TestEngine_EnrichTopics(t *testing.T) {
	ctx := context.Background()

	t.Run("model labels", func(t *testing.T) {
		provider := mock.NewProvider()
		e := openTestEngine(t, nil, WithAIProvider(provider))
		ds, err := ingestion.Decode(strings.NewReader(publicationsDataset))
		require.NoError(t, err)
		_, err = e.Import(ctx, ds)
		require.NoError(t, err)

		summary, err := e.EnrichTopics(ctx, ingestion.DefaultTopicOptions(), true)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Considered)
		assert.Equal(t, 1, summary.Updated)
		assert.Equal(t, 3, summary.TopicsAdded)
		assert.Equal(t, 1, provider.MockExtractor().CallCount(), "Bob has too few titles")

		recs, err := e.Rank(ctx, core.Query{Topics: []string{"model checking"}}, nil, 1)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "Ada Lovelace", recs[0].Candidate.FullName)
		assert.InDelta(t, 1.0, recs[0].Breakdown.TopicSimilarity, 1e-9)
	})

	t.Run("model requested without provider", func(t *testing.T) {
		e := openTestEngine(t, nil)
		_, err := e.EnrichTopics(ctx, ingestion.DefaultTopicOptions(), true)
		assert.ErrorIs(t, err, ErrNoTopicExtractor)
	})

	t.Run("tf-idf without provider", func(t *testing.T) {
		e := openTestEngine(t, nil)
		importTestDataset(t, e)
		summary, err := e.EnrichTopics(ctx, ingestion.DefaultTopicOptions(), false)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.Considered)
		assert.Zero(t, summary.Updated, "no candidate has enough titles")
	})
}

func TestEngine_ReimportKeepsPopulation(t *testing.T) {
	e := openTestEngine(t, nil)
	importTestDataset(t, e)
	result := importTestDataset(t, e)
	assert.Equal(t, 3, result.Updated)

	stats, err := e.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Candidates)
	assert.Equal(t, 3, stats.Memberships)

	recs, err := e.Rank(context.Background(), core.Query{Topics: []string{"databases"}}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}
