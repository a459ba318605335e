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


package openai

import (
	"log/slog"

	"github.com/poiesic/pcrank/ai"
)

// Provider bundles an Embedder and a TopicExtractor that share one config.
type Provider struct {
	config    ai.Config
	embedder  *Embedder
	extractor *TopicExtractor
	logger    *slog.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the logger used by the provider and its services.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider validates config and creates both services. The caller's
// config is not modified.
func NewProvider(config *ai.Config, opts ...ProviderOption) (ai.AIProvider, error) {
	p := &Provider{config: *config, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.config.Validate(); err != nil {
		return nil, err
	}

	var err error
	if p.embedder, err = newEmbedder(&p.config, p.logger); err != nil {
		return nil, err
	}
	if p.extractor, err = newTopicExtractor(&p.config, p.logger); err != nil {
		return nil, err
	}

	p.logger = p.logger.With("component", "openai-provider")
	p.logger.Debug("provider ready",
		"embedding_host", p.config.EmbeddingHost, "embedding_model", p.config.EmbeddingModel,
		"classifier_host", p.config.ClassifierHost, "classifier_model", p.config.ClassifierModel)
	return p, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) TopicExtractor() ai.TopicExtractor {
	return p.extractor
}

// Close is a no-op; the HTTP clients hold no resources that need releasing.
func (p *Provider) Close() error {
	p.logger.Debug("closing provider")
	return nil
}
