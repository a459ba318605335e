package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveRank(50*time.Millisecond, 12)
	r.CacheLookup(CacheCentrality, ResultHit)
	r.CacheLookup(CacheCentrality, ResultHit)
	r.CacheLookup(CacheEmbedding, ResultMiss)
	r.CentralityRecomputed(true)
	r.CentralityRecomputed(false)
	r.EmbedError()
	r.EmbeddingsWarmed(4)

	assert.Equal(t, 12.0, testutil.ToFloat64(r.candidatesScored))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues(CacheCentrality, ResultHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues(CacheEmbedding, ResultMiss)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.centralityRecompute))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.centralityFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.embedErrors))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.embeddingsWarmed))

	count, err := testutil.GatherAndCount(reg, "pcrank_rank_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveRank(time.Second, 1)
		r.CacheLookup(CacheEmbedding, ResultHit)
		r.CentralityRecomputed(true)
		r.EmbedError()
		r.EmbeddingsWarmed(1)
	})
}
