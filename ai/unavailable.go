package ai

import (
	"context"
	"errors"
)

// ErrEmbeddingUnavailable is returned by the embedder obtained from Unavailable.
var ErrEmbeddingUnavailable = errors.New("embedding capability unavailable")

type unavailableEmbedder struct{}

var _ Embedder = unavailableEmbedder{}

// Unavailable returns an Embedder standing in for a missing embedding
// capability. Every call fails with ErrEmbeddingUnavailable.
func Unavailable() Embedder {
	return unavailableEmbedder{}
}

func (unavailableEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	return nil, ErrEmbeddingUnavailable
}

func (unavailableEmbedder) EmbedTexts(context.Context, []string) ([][]float32, error) {
	return nil, ErrEmbeddingUnavailable
}

func (unavailableEmbedder) ModelName() string {
	return ""
}

// IsAvailable reports whether e can produce embeddings.
func IsAvailable(e Embedder) bool {
	if e == nil {
		return false
	}
	_, missing := e.(unavailableEmbedder)
	return !missing
}
