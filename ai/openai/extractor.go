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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/pcrank/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const maxParseAttempts = 3

// TopicExtractor implements ai.TopicExtractor using OpenAI-compatible chat APIs.
type TopicExtractor struct {
	client    llms.Model
	maxTopics int
	logger    *slog.Logger
}

// topicResponse is the structure expected back from the model.
type topicResponse struct {
	Topics []string `json:"topics"`
}

// newTopicExtractor builds a TopicExtractor from an already validated config.
func newTopicExtractor(config *ai.Config, logger *slog.Logger) (*TopicExtractor, error) {
	client, err := openai.New(
		openai.WithBaseURL(config.ClassifierHost),
		openai.WithToken(config.Token()),
		openai.WithModel(config.ClassifierModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier client: %w", err)
	}

	return &TopicExtractor{
		client:    client,
		maxTopics: config.MaxTopics,
		logger:    logger.With("component", "openai-extractor", "model", config.ClassifierModel),
	}, nil
}

// NewTopicExtractor creates a topic extractor for config.
func NewTopicExtractor(config *ai.Config) (ai.TopicExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newTopicExtractor(config, slog.Default())
}

// ExtractTopics asks the model for the research topics in text.
// Malformed responses are retried; a model error is returned immediately.
func (e *TopicExtractor) ExtractTopics(ctx context.Context, text string) ([]string, error) {
	text = scrubString(text)
	if text == "" {
		return []string{}, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt(e.maxTopics))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	var result topicResponse
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []string{}, nil
		}

		result, lastErr = parseTopicResponse(response.Choices[0].Content)
		if lastErr != nil {
			e.logger.Warn("error parsing topic response",
				"attempt", attempt+1,
				"response", response.Choices[0].Content,
				"err", lastErr)
			continue
		}
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse topic response after retries", "err", lastErr)
		return nil, lastErr
	}

	topics := cleanTopics(result.Topics, e.maxTopics)
	e.logger.Debug("extracted topics", "returned", len(result.Topics), "kept", len(topics))
	return topics, nil
}

// parseTopicResponse repairs and decodes the model output.
func parseTopicResponse(raw string) (topicResponse, error) {
	var out topicResponse
	err := json.Unmarshal([]byte(repairJSON(raw)), &out)
	return out, err
}

// cleanTopics lowercases, trims and de-duplicates topics, keeping at most max.
func cleanTopics(topics []string, max int) []string {
	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.ToLower(scrubString(t))
		t = strings.Join(strings.Fields(t), " ")
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
