// Package config defines the engine configuration and how it is loaded.
//
// Values are layered, lowest precedence first:
//  1. defaults from New
//  2. a YAML file, from the path passed to Load or PCRANK_CONFIG
//  3. environment variables prefixed PCRANK_, with "__" separating nested
//     keys (PCRANK_AI__EMBEDDING_MODEL sets ai.embedding_model)
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/poiesic/pcrank/ai"
	"github.com/poiesic/pcrank/ranking"
)

// AIConfig selects the embedding and topic extraction backends.
type AIConfig struct {
	// Enabled turns on the OpenAI-compatible backends. When false the
	// semantic signal scores 0 and free-text requests are parsed locally.
	Enabled bool `koanf:"enabled"`

	EmbeddingHost   string `koanf:"embedding_host"`
	ClassifierHost  string `koanf:"classifier_host"`
	EmbeddingModel  string `koanf:"embedding_model"`
	ClassifierModel string `koanf:"classifier_model"`
	APIKey          string `koanf:"api_key"`
	MaxTopics       int    `koanf:"max_topics"`
	MaxInputChars   int    `koanf:"max_input_chars"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataDir is the badger database directory.
	DataDir string `koanf:"data_dir"`

	// InMemory keeps the database in memory; DataDir is ignored.
	InMemory bool `koanf:"in_memory"`

	// PoolSize sets the number of scoring and warm-up workers.
	PoolSize int `koanf:"pool_size"`

	// Limit and Lookback are the defaults for ranking requests.
	Limit    int `koanf:"limit"`
	Lookback int `koanf:"lookback"`

	// CentralityTTL bounds the age of a reused centrality vector.
	CentralityTTL time.Duration `koanf:"centrality_ttl"`

	// EmbeddingCacheSize is the number of decoded vectors kept in memory.
	EmbeddingCacheSize int `koanf:"embedding_cache_size"`

	// WarmOnImport embeds imported candidates in the background.
	WarmOnImport bool `koanf:"warm_on_import"`

	// WarmBatchSize is the number of profiles embedded per request.
	WarmBatchSize int `koanf:"warm_batch_size"`

	AI AIConfig `koanf:"ai"`

	Weights ranking.Weights `koanf:"weights"`
}

// New returns a Config populated with defaults.
func New() *Config {
	defaults := ai.DefaultConfig()
	return &Config{
		LogLevel:           "info",
		DataDir:            "./pcrank-data",
		PoolSize:           max(1, runtime.NumCPU()/2),
		Limit:              20,
		Lookback:           5,
		CentralityTTL:      24 * time.Hour,
		EmbeddingCacheSize: 4096,
		WarmBatchSize:      32,
		AI: AIConfig{
			EmbeddingHost:   defaults.EmbeddingHost,
			ClassifierHost:  defaults.ClassifierHost,
			EmbeddingModel:  defaults.EmbeddingModel,
			ClassifierModel: defaults.ClassifierModel,
			MaxTopics:       defaults.MaxTopics,
			MaxInputChars:   defaults.MaxInputChars,
		},
		Weights: *ranking.DefaultWeights(),
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if !c.InMemory && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("%w: pool_size must be at least 1", ErrInvalidConfig)
	}
	if c.Limit < 1 {
		return fmt.Errorf("%w: limit must be at least 1", ErrInvalidConfig)
	}
	if c.Lookback < 0 {
		return fmt.Errorf("%w: lookback must not be negative", ErrInvalidConfig)
	}
	if c.CentralityTTL <= 0 {
		return fmt.Errorf("%w: centrality_ttl must be positive", ErrInvalidConfig)
	}
	if c.EmbeddingCacheSize < 1 {
		return fmt.Errorf("%w: embedding_cache_size must be at least 1", ErrInvalidConfig)
	}
	if c.WarmBatchSize < 1 {
		return fmt.Errorf("%w: warm_batch_size must be at least 1", ErrInvalidConfig)
	}
	if c.AI.Enabled {
		if err := c.AIConfig().Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// AIConfig converts the ai section into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithClassifierHost(c.AI.ClassifierHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithClassifierModel(c.AI.ClassifierModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithMaxTopics(c.AI.MaxTopics),
		ai.WithMaxInputChars(c.AI.MaxInputChars),
	)
}
