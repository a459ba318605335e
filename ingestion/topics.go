package ingestion

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/pcrank/ai"
	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/storage"
)

// Defaults for TopicOptions.
const (
	DefaultTopicsPerCandidate = 5
	DefaultMaxTitles          = 50
	DefaultMinTitles          = 3
)

// TopicOptions selects the candidates to enrich and how many labels each
// receives.
type TopicOptions struct {
	// TopK is the number of labels derived per candidate.
	TopK int
	// MaxTitles caps the publication titles read per candidate.
	MaxTitles int
	// MinTitles skips candidates with fewer titles. At least one title is
	// always required.
	MinTitles int
	// Limit restricts the run to the first Limit candidates by ID. 0 means all.
	Limit int
	// MissingOnly skips candidates that already carry topics.
	MissingOnly bool
}

// DefaultTopicOptions returns the options used when none are given.
func DefaultTopicOptions() TopicOptions {
	return TopicOptions{
		TopK:      DefaultTopicsPerCandidate,
		MaxTitles: DefaultMaxTitles,
		MinTitles: DefaultMinTitles,
	}
}

// TopicSummary counts the outcome of an enrichment run.
type TopicSummary struct {
	Considered  int `json:"considered"`
	Updated     int `json:"updated"`
	TopicsAdded int `json:"topics_added"`
	Failed      int `json:"failed"`
}

// TopicEnricher derives topic labels from the publication titles of stored
// candidates and appends the new ones to their topics. Without an extractor
// labels come from a TF-IDF model fitted over all selected candidates.
type TopicEnricher struct {
	repo      storage.CandidateRepository
	extractor ai.TopicExtractor
	logger    *slog.Logger
}

// NewTopicEnricher creates an enricher. extractor may be nil.
func NewTopicEnricher(repo storage.CandidateRepository, extractor ai.TopicExtractor, logger *slog.Logger) (*TopicEnricher, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TopicEnricher{
		repo:      repo,
		extractor: extractor,
		logger:    logger.With("processor", "topics"),
	}, nil
}

// Enrich labels the selected candidates and stores the ones that gained
// topics. Existing topics are never removed or reordered.
func (te *TopicEnricher) Enrich(ctx context.Context, opts TopicOptions) (*TopicSummary, error) {
	opts = withTopicDefaults(opts)

	all, err := te.repo.AllCandidates(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 && len(all) > opts.Limit {
		all = all[:opts.Limit]
	}

	summary := &TopicSummary{Considered: len(all)}

	var selected []*core.Candidate
	var titles [][]string
	for _, c := range all {
		if opts.MissingOnly && len(c.Topics) > 0 {
			continue
		}
		t := publicationTitles(c, opts.MaxTitles)
		if len(t) < opts.MinTitles {
			continue
		}
		selected = append(selected, c)
		titles = append(titles, t)
	}
	if len(selected) == 0 {
		return summary, nil
	}

	labels, err := te.label(ctx, titles, opts.TopK, summary)
	if err != nil {
		return summary, err
	}

	var changed []*core.Candidate
	for i, c := range selected {
		if added := appendTopics(c, labels[i]); added > 0 {
			summary.Updated++
			summary.TopicsAdded += added
			changed = append(changed, c)
		}
	}
	if len(changed) > 0 {
		if _, err := te.repo.AddCandidates(ctx, changed...); err != nil {
			return summary, err
		}
	}

	te.logger.Info("enriched topics",
		"considered", summary.Considered,
		"updated", summary.Updated,
		"topics_added", summary.TopicsAdded,
		"failed", summary.Failed)
	return summary, nil
}

// label returns up to topK raw labels per title list. Extractor failures are
// logged and counted; the candidate keeps its topics.
func (te *TopicEnricher) label(ctx context.Context, titles [][]string, topK int, summary *TopicSummary) ([][]string, error) {
	if te.extractor == nil {
		docs := make([]string, len(titles))
		for i, t := range titles {
			docs[i] = strings.Join(t, " ")
		}
		return topTerms(docs, topK), nil
	}

	out := make([][]string, len(titles))
	for i, t := range titles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		topics, err := te.extractor.ExtractTopics(ctx, strings.Join(t, "; "))
		if err != nil {
			te.logger.Warn("topic extraction failed", "err", err)
			summary.Failed++
			continue
		}
		out[i] = topics[:min(topK, len(topics))]
	}
	return out, nil
}

func withTopicDefaults(opts TopicOptions) TopicOptions {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopicsPerCandidate
	}
	if opts.MaxTitles <= 0 {
		opts.MaxTitles = DefaultMaxTitles
	}
	if opts.MinTitles < 1 {
		opts.MinTitles = 1
	}
	if opts.Limit < 0 {
		opts.Limit = 0
	}
	return opts
}

func publicationTitles(c *core.Candidate, limit int) []string {
	var titles []string
	for _, p := range c.Publications {
		if len(titles) == limit {
			break
		}
		if title := strings.TrimSpace(p.Title); title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}

// appendTopics adds the labels c does not carry yet, compared
// case-insensitively, and returns how many were added. Labels shorter than
// two characters are dropped.
func appendTopics(c *core.Candidate, labels []string) int {
	seen := make(map[string]bool, len(c.Topics)+len(labels))
	for _, t := range c.Topics {
		seen[strings.ToLower(strings.TrimSpace(t))] = true
	}

	added := 0
	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if len(label) < 2 || seen[label] {
			continue
		}
		seen[label] = true
		c.Topics = append(c.Topics, label)
		added++
	}
	return added
}
