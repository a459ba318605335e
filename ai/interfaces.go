package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName identifies the model producing the vectors. Cached vectors
	// are only reused when they were produced by the same model.
	ModelName() string
}

// TopicExtractor turns a free-text request into research topic phrases.
// Implementations must be thread-safe for concurrent use.
type TopicExtractor interface {
	// ExtractTopics returns lowercase topic phrases mentioned or clearly
	// implied by text, most important first.
	// Returns an empty slice if no topics are found.
	ExtractTopics(ctx context.Context, text string) ([]string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and TopicExtractor instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// TopicExtractor returns the topic extraction service.
	// The returned TopicExtractor is safe for concurrent use.
	TopicExtractor() TopicExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
