package match

import (
	"regexp"
	"slices"

	"github.com/poiesic/pcrank/core"
)

const (
	// phraseLengthBonus is the extra weight given per additional query token.
	phraseLengthBonus = 0.15
	// goodEnough ends the search for a query phrase's best match early.
	goodEnough = 0.95
)

var interestSeparator = regexp.MustCompile(`[,;/]`)

// tokenSet returns the distinct tokens of text.
func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// PhraseSimilarity returns the Dice coefficient of the token sets of a and b.
// It is 0 when either side has no tokens.
func PhraseSimilarity(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(ta)+len(tb))
}

// TopicSimilarity scores how well a candidate's phrases cover the query
// phrases. Each query phrase contributes its best phrase similarity, weighted
// by 1 + 0.15 per token beyond the first. The result is in [0,1].
func TopicSimilarity(queryPhrases, candidatePhrases []string) float64 {
	if len(queryPhrases) == 0 || len(candidatePhrases) == 0 {
		return 0
	}

	var weighted, totalWeight float64
	for _, raw := range queryPhrases {
		q := Normalize(raw)
		if q == "" {
			continue
		}
		w := 1 + phraseLengthBonus*float64(max(0, len(Tokenize(q))-1))

		best := 0.0
		for _, c := range candidatePhrases {
			if s := PhraseSimilarity(q, c); s > best {
				best = s
				if best >= goodEnough {
					break
				}
			}
		}
		weighted += w * best
		totalWeight += w
	}

	if totalWeight == 0 {
		return 0
	}
	return clamp01(weighted / totalWeight)
}

// CandidatePhrases returns the normalized, de-duplicated phrases describing a
// candidate: segments of the free-text interests split on ',', ';' and '/',
// followed by the topic labels. First occurrence order is kept.
func CandidatePhrases(c *core.Candidate) []string {
	if c == nil {
		return nil
	}
	var phrases []string
	add := func(s string) {
		n := Normalize(s)
		if n != "" && !slices.Contains(phrases, n) {
			phrases = append(phrases, n)
		}
	}
	if c.Interests != "" {
		for _, seg := range interestSeparator.Split(c.Interests, -1) {
			add(seg)
		}
	}
	for _, topic := range c.Topics {
		add(topic)
	}
	return phrases
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
