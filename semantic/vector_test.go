package semantic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected []float32
	}{
		{
			name:     "unit vector remains unchanged",
			input:    []float32{1.0, 0.0, 0.0},
			expected: []float32{1.0, 0.0, 0.0},
		},
		{
			name:     "scale non-unit vector",
			input:    []float32{3.0, 4.0},
			expected: []float32{0.6, 0.8},
		},
		{
			name:     "negative values",
			input:    []float32{-1.0, 1.0},
			expected: []float32{-1.0 / float32(math.Sqrt(2)), 1.0 / float32(math.Sqrt(2))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			require.Len(t, result, len(tt.expected))
			for i := range result {
				assert.InDelta(t, tt.expected[i], result[i], 1e-6, "element %d", i)
			}
		})
	}

	t.Run("zero vector", func(t *testing.T) {
		assert.Equal(t, []float32{0, 0, 0}, Normalize([]float32{0, 0, 0}))
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.Empty(t, Normalize([]float32{}))
	})

	t.Run("input not modified", func(t *testing.T) {
		in := []float32{3, 4}
		Normalize(in)
		assert.Equal(t, []float32{3, 4}, in)
	})
}

func TestCosineAndSimilarity(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []float32
		cosine float64
		sim    float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0, 0.5},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1, 0},
		{"scaled", []float32{2, 0}, []float32{5, 0}, 1, 1},
		{"mismatched dimensions", []float32{1, 0}, []float32{1, 0, 0}, 0, 0.5},
		{"empty", nil, nil, 0, 0.5},
		{"zero norm", []float32{0, 0}, []float32{1, 0}, 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.cosine, Cosine(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.sim, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}
