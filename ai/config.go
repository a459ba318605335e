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


package ai

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultHost is a local OpenAI-compatible server such as Ollama.
const DefaultHost = "http://localhost:11434/v1"

// NoAuthToken is sent when no API key is configured; local servers ignore it.
const NoAuthToken = "none"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid ai config")

// Config describes the OpenAI-compatible endpoints used for profile
// embeddings and request topic extraction.
type Config struct {
	// EmbeddingHost and ClassifierHost are API base URLs. A missing /v1
	// suffix is added by Normalize.
	EmbeddingHost  string
	ClassifierHost string

	// EmbeddingModel embeds candidate profiles and queries,
	// e.g. "embeddinggemma" or "text-embedding-3-small".
	EmbeddingModel string

	// ClassifierModel turns free-text requests into topic phrases,
	// e.g. "qwen2.5:3b" or "gpt-4o-mini".
	ClassifierModel string

	// APIKey authenticates against hosted endpoints. Empty means NoAuthToken.
	APIKey string

	// MaxTopics caps the phrases kept from one extraction. Default: 8
	MaxTopics int

	// MaxInputChars truncates texts before they are embedded. Default: 10000
	MaxInputChars int
}

type ConfigOption func(*Config)

func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

func WithClassifierHost(host string) ConfigOption {
	return func(c *Config) {
		c.ClassifierHost = host
	}
}

// WithHost points both endpoints at the same server.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ClassifierHost = host
	}
}

func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

func WithClassifierModel(model string) ConfigOption {
	return func(c *Config) {
		c.ClassifierModel = model
	}
}

func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

func WithMaxTopics(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTopics = n
	}
}

func WithMaxInputChars(n int) ConfigOption {
	return func(c *Config) {
		c.MaxInputChars = n
	}
}

func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:   DefaultHost,
		ClassifierHost:  DefaultHost,
		EmbeddingModel:  "embeddinggemma",
		ClassifierModel: "qwen2.5:3b",
		MaxTopics:       8,
		MaxInputChars:   10000,
	}
}

func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Token returns the bearer token to send.
func (c *Config) Token() string {
	if c.APIKey == "" {
		return NoAuthToken
	}
	return c.APIKey
}

// Normalize appends /v1 to hosts that lack it.
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.ClassifierHost = normalizeHost(c.ClassifierHost)
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate normalizes c and checks that every field is usable.
func (c *Config) Validate() error {
	c.Normalize()

	switch {
	case c.EmbeddingHost == "":
		return fmt.Errorf("%w: EmbeddingHost is required", ErrInvalidConfig)
	case c.ClassifierHost == "":
		return fmt.Errorf("%w: ClassifierHost is required", ErrInvalidConfig)
	case c.EmbeddingModel == "":
		return fmt.Errorf("%w: EmbeddingModel is required", ErrInvalidConfig)
	case c.ClassifierModel == "":
		return fmt.Errorf("%w: ClassifierModel is required", ErrInvalidConfig)
	case c.MaxTopics < 1:
		return fmt.Errorf("%w: MaxTopics must be at least 1", ErrInvalidConfig)
	case c.MaxInputChars < 1:
		return fmt.Errorf("%w: MaxInputChars must be at least 1", ErrInvalidConfig)
	}
	return nil
}
