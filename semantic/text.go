package semantic

import (
	"slices"
	"strings"

	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/match"
)

// MaxProfileTitles caps the publication titles included in a profile text.
const MaxProfileTitles = 50

// ProfileText builds the text embedded for a candidate: the bio followed by
// up to MaxProfileTitles publication titles, most recent first. Candidates
// with neither fall back to their interest and topic phrases.
func ProfileText(c *core.Candidate) string {
	if c == nil {
		return ""
	}

	var parts []string
	if bio := strings.TrimSpace(c.Bio); bio != "" {
		parts = append(parts, bio)
	}

	pubs := slices.Clone(c.Publications)
	slices.SortStableFunc(pubs, func(a, b core.Publication) int {
		return b.Year - a.Year
	})
	titles := 0
	for _, p := range pubs {
		if titles == MaxProfileTitles {
			break
		}
		if title := strings.TrimSpace(p.Title); title != "" {
			parts = append(parts, title)
			titles++
		}
	}

	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}
	return strings.Join(match.CandidatePhrases(c), " ")
}

// QueryText builds the text embedded for a ranking query: the topics
// joined by commas and a conference hint, separated by " | ".
func QueryText(q core.Query) string {
	var parts []string
	topics := make([]string, 0, len(q.Topics))
	for _, t := range q.Topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) > 0 {
		parts = append(parts, strings.Join(topics, ", "))
	}
	if series := strings.TrimSpace(q.Series); series != "" {
		parts = append(parts, "conference "+series)
	}
	return strings.Join(parts, " | ")
}
