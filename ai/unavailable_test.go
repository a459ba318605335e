package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnavailable(t *testing.T) {
	e := Unavailable()

	_, err := e.EmbedText(context.Background(), "text")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)

	_, err = e.EmbedTexts(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)

	assert.Empty(t, e.ModelName())
	assert.False(t, IsAvailable(e))
	assert.False(t, IsAvailable(nil))
}
