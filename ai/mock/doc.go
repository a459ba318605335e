// Package mock provides test doubles for the ai service interfaces.
//
// The mocks run without external services and behave deterministically:
//
//   - MockEmbedder returns unit vectors derived from an FNV hash of the text
//   - MockTopicExtractor splits text on commas and "and"
//   - Provider aggregates both
//
// Behaviour can be replaced through the exported function fields, and call
// counts are tracked for assertions:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{1, 0, 0}, nil
//	}
//	count := embedder.CallCount()
package mock
