package ranking

import (
	"fmt"
	"strings"

	"github.com/poiesic/pcrank/core"
)

// ParseFreeText turns a free-text request into topic phrases: every word
// longer than three characters, trimmed of commas and periods.
func ParseFreeText(text string) []string {
	words := strings.Fields(text)
	topics := make([]string, 0, len(words))
	for _, word := range words {
		if len([]rune(word)) <= 3 {
			continue
		}
		if cleaned := strings.Trim(word, ",."); cleaned != "" {
			topics = append(topics, cleaned)
		}
	}
	return topics
}

// Explanation thresholds.
const (
	explainService    = 0.3
	explainImpact     = 0.3
	explainCentrality = 0.3
)

// Explain summarizes why a recommendation ranked, from its breakdown.
func Explain(rec *core.Recommendation) string {
	if rec == nil || rec.Candidate == nil {
		return ""
	}

	b := rec.Breakdown
	var pieces []string
	if b.TopicSimilarity > 0 {
		pieces = append(pieces, "their topics match your query")
	}
	if b.ServiceRecent > explainService {
		pieces = append(pieces, "they recently served on program committees")
	}
	if b.Impact > explainImpact {
		pieces = append(pieces, "they have solid citation impact")
	}
	if b.Centrality > explainCentrality {
		pieces = append(pieces, "they are well-connected in the co-PC network")
	}
	if len(pieces) == 0 {
		pieces = append(pieces, "they appear in the PC data and roughly match your query")
	}

	return fmt.Sprintf("%s is recommended because %s.", rec.Candidate.FullName, strings.Join(pieces, ", and "))
}
