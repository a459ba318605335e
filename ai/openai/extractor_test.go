package openai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTopicResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain", `{"topics":["federated learning","privacy"]}`, []string{"federated learning", "privacy"}},
		{"fenced", "```json\n{\"topics\":[\"graph mining\"]}\n```", []string{"graph mining"}},
		{"missing opening quote", `{topics":["databases"]}`, []string{"databases"}},
		{"empty", `{"topics":[]}`, []string{}},
		{"bare key", `{topics: ["compilers"]}`, []string{"compilers"}},
		{"trailing comma", `{"topics":["a","b",],}`, []string{"a", "b"}},
		{"surrounding prose", "Sure! Here you go: {\"topics\":[\"robotics\"]} Hope that helps.", []string{"robotics"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTopicResponse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Topics)
		})
	}

	t.Run("garbage", func(t *testing.T) {
		_, err := parseTopicResponse("not json at all")
		assert.Error(t, err)
	})
}

func TestCleanTopics(t *testing.T) {
	got := cleanTopics([]string{" Federated  Learning ", "federated learning", "", "Privacy!", "graphs"}, 2)
	assert.Equal(t, []string{"federated learning", "privacy"}, got)

	assert.Len(t, cleanTopics([]string{"a", "b", "c"}, 0), 3)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", truncate("héllo", 4))
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "unbounded", truncate("unbounded", 0))
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := buildSystemPrompt(5)
	assert.Contains(t, prompt, "at most 5 topics")
	assert.True(t, strings.Contains(prompt, `"topics"`))
}
