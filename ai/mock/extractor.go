package mock

import (
	"context"
	"regexp"
	"strings"
	"sync"
)

var topicSplitter = regexp.MustCompile(`\s*(?:,|;|\band\b)\s*`)

// MockTopicExtractor is a test double for ai.TopicExtractor.
// It allows custom behavior injection via function fields.
type MockTopicExtractor struct {
	// ExtractTopicsFunc is called by ExtractTopics if set.
	// If nil, text is split on commas, semicolons and the word "and".
	ExtractTopicsFunc func(ctx context.Context, text string) ([]string, error)

	mu        sync.Mutex
	callCount int
}

// NewMockTopicExtractor creates a mock topic extractor with default behavior.
// Note: Returns concrete type to allow test assertions via Provider.MockExtractor().
func NewMockTopicExtractor() *MockTopicExtractor {
	return &MockTopicExtractor{}
}

// ExtractTopics returns lowercase phrases split out of text.
func (m *MockTopicExtractor) ExtractTopics(ctx context.Context, text string) ([]string, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.ExtractTopicsFunc != nil {
		return m.ExtractTopicsFunc(ctx, text)
	}

	topics := []string{}
	for _, part := range topicSplitter.Split(strings.ToLower(text), -1) {
		part = strings.Trim(part, ".!? ")
		if part != "" {
			topics = append(topics, part)
		}
	}
	return topics, nil
}

// CallCount returns the number of times ExtractTopics was called.
func (m *MockTopicExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockTopicExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ExtractTopicsFunc = nil
}
