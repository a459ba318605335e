package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrRepositoryRequired is returned when a candidate repository is not provided.
	ErrRepositoryRequired = errors.New("candidate repository required")

	// ErrCacheRequired is returned when an embedding cache is not provided.
	ErrCacheRequired = errors.New("embedding cache required")

	// ErrEmbeddingCountMismatch is returned when the embedder returns a
	// different number of vectors than texts sent.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")
)
