package ingestion

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// titleWord keeps alphabetic words of two or more characters, including
// hyphenated ones such as "graph-based".
var titleWord = regexp.MustCompile(`[a-zA-Z][a-zA-Z\-]{1,}`)

const (
	// termMinDF drops terms used by fewer candidates.
	termMinDF = 2
	// termMaxDF drops terms used by a larger share of candidates.
	termMaxDF = 0.8
)

// titleTerms returns the unigram and bigram counts of a title document.
func titleTerms(doc string) map[string]int {
	words := titleWord.FindAllString(strings.ToLower(doc), -1)
	counts := make(map[string]int, 2*len(words))
	for i, w := range words {
		counts[w]++
		if i > 0 {
			counts[words[i-1]+" "+w]++
		}
	}
	return counts
}

// topTerms fits a TF-IDF model over all docs and returns the topK
// highest-weighted terms of each doc. IDF is smoothed:
// ln((1+n)/(1+df)) + 1. Terms outside [termMinDF, termMaxDF*n] documents
// are pruned. Ties are broken alphabetically.
func topTerms(docs []string, topK int) [][]string {
	out := make([][]string, len(docs))
	if len(docs) == 0 || topK <= 0 {
		return out
	}

	tfs := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tfs[i] = titleTerms(doc)
		for term := range tfs[i] {
			df[term]++
		}
	}

	n := float64(len(docs))
	maxDocs := termMaxDF * n
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		if count < termMinDF || float64(count) > maxDocs {
			continue
		}
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}

	type weighted struct {
		term   string
		weight float64
	}
	for i, tf := range tfs {
		scored := make([]weighted, 0, len(tf))
		for term, count := range tf {
			if w, ok := idf[term]; ok {
				scored = append(scored, weighted{term, float64(count) * w})
			}
		}
		sort.Slice(scored, func(a, b int) bool {
			if scored[a].weight != scored[b].weight {
				return scored[a].weight > scored[b].weight
			}
			return scored[a].term < scored[b].term
		})

		terms := make([]string, 0, min(topK, len(scored)))
		for _, s := range scored[:min(topK, len(scored))] {
			terms = append(terms, s.term)
		}
		out[i] = terms
	}
	return out
}
