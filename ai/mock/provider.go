// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import (
	"sync/atomic"

	"github.com/poiesic/pcrank/ai"
)

// Provider is a test double for ai.AIProvider backed by a MockEmbedder and
// a MockTopicExtractor.
type Provider struct {
	embedder  *MockEmbedder
	extractor *MockTopicExtractor
	closed    atomic.Bool
}

// ProviderOption replaces one of the provider's doubles.
type ProviderOption func(*Provider)

// WithEmbedder installs a preconfigured embedder.
func WithEmbedder(e *MockEmbedder) ProviderOption {
	return func(p *Provider) {
		if e != nil {
			p.embedder = e
		}
	}
}

// WithExtractor installs a preconfigured topic extractor.
func WithExtractor(x *MockTopicExtractor) ProviderOption {
	return func(p *Provider) {
		if x != nil {
			p.extractor = x
		}
	}
}

// NewProvider returns the concrete type so tests can reach the doubles.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		embedder:  NewMockEmbedder(),
		extractor: NewMockTopicExtractor(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ ai.AIProvider = (*Provider)(nil)

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) TopicExtractor() ai.TopicExtractor {
	return p.extractor
}

// Close records that the provider was closed.
func (p *Provider) Close() error {
	p.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (p *Provider) Closed() bool {
	return p.closed.Load()
}

// MockEmbedder exposes the embedder for call counts and injection.
func (p *Provider) MockEmbedder() *MockEmbedder {
	return p.embedder
}

// MockExtractor exposes the topic extractor for call counts and injection.
func (p *Provider) MockExtractor() *MockTopicExtractor {
	return p.extractor
}
