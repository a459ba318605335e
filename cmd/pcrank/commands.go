package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/pcrank"
	"github.com/poiesic/pcrank/config"
	"github.com/poiesic/pcrank/core"
	"github.com/poiesic/pcrank/ingestion"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"
)

// withEngine opens the engine described by the global flags, runs fn and
// closes the engine again.
func withEngine(c *cli.Context, fn func(ctx context.Context, e *pcrank.Engine) error) (err error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	e, err := pcrank.Open(cfg, pcrank.WithRegisterer(reg))
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer func() {
		if closeErr := e.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close engine: %w", closeErr)
		}
		if c.Bool("metrics") {
			if dumpErr := dumpMetrics(c.App.ErrWriter, reg); dumpErr != nil && err == nil {
				err = dumpErr
			}
		}
	}()

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, e)
}

func dumpMetrics(w io.Writer, reg *prometheus.Registry) error {
	if w == nil {
		w = os.Stderr
	}
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

func importCommand(c *cli.Context) error {
	path := c.String("file")
	if path == "" {
		return fmt.Errorf("file is required")
	}

	return withEngine(c, func(ctx context.Context, e *pcrank.Engine) error {
		result, err := e.ImportFile(ctx, path)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		out := c.App.Writer
		fmt.Fprintf(out, "Imported %d candidates (%d already known) and %d editions from %s\n",
			result.Imported, result.Updated, result.Editions, path)
		if len(result.Rejected) > 0 {
			fmt.Fprintf(out, "Rejected %d records:\n", len(result.Rejected))
			for _, rejected := range result.Rejected {
				fmt.Fprintf(out, "  %v\n", rejected)
			}
		}

		// Warm-up runs detached; keep the process alive until it is done.
		e.WaitForWarmup()
		return nil
	})
}

func rankCommand(c *cli.Context) error {
	return withEngine(c, func(ctx context.Context, e *pcrank.Engine) error {
		lookback := c.Int("lookback")
		if lookback < 0 {
			lookback = e.Config().Lookback
		}
		q := core.Query{
			Series:   c.String("series"),
			Year:     c.Int("year"),
			Topics:   c.StringSlice("topic"),
			Lookback: lookback,
		}

		recs, err := e.Rank(ctx, q, nil, c.Int("limit"))
		if err != nil {
			return fmt.Errorf("ranking failed: %w", err)
		}

		if c.Bool("json") {
			return writeJSON(c.App.Writer, recs)
		}
		return writeTable(c.App.Writer, recs, nil)
	})
}

func askCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("request text is required")
	}

	return withEngine(c, func(ctx context.Context, e *pcrank.Engine) error {
		q := core.Query{
			Series:   c.String("series"),
			Year:     c.Int("year"),
			Lookback: e.Config().Lookback,
		}

		answer, err := e.Ask(ctx, text, q, c.Int("limit"))
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}

		if c.Bool("json") {
			return writeJSON(c.App.Writer, answer)
		}

		fmt.Fprintf(c.App.Writer, "Topics: %s\n\n", strings.Join(answer.Topics, ", "))
		recs := make([]*core.Recommendation, len(answer.Results))
		reasons := make([]string, len(answer.Results))
		for i, r := range answer.Results {
			recs[i] = r.Recommendation
			reasons[i] = r.Reason
		}
		return writeTable(c.App.Writer, recs, reasons)
	})
}

func warmCommand(c *cli.Context) error {
	return withEngine(c, func(ctx context.Context, e *pcrank.Engine) error {
		summary, err := e.WarmEmbeddings(ctx, c.Bool("force"), c.App.ErrWriter)
		if err != nil {
			return fmt.Errorf("warm-up failed: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "Embedded %d, skipped %d of %d candidates in %s\n",
			summary.Embedded, summary.Skipped, summary.Total, summary.Elapsed.Round(time.Millisecond))
		return nil
	})
}

func centralityCommand(c *cli.Context) error {
	return withEngine(c, func(ctx context.Context, e *pcrank.Engine) error {
		var scores map[core.ID]float64
		if c.Bool("refresh") {
			var err error
			scores, err = e.RefreshCentrality(ctx)
			if err != nil {
				return fmt.Errorf("centrality refresh failed: %w", err)
			}
		} else {
			scores = e.Centrality(ctx)
		}

		ids := make([]core.ID, 0, len(scores))
		for id := range scores {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			if scores[ids[i]] != scores[ids[j]] {
				return scores[ids[i]] > scores[ids[j]]
			}
			return ids[i] < ids[j]
		})
		if top := c.Int("top"); top > 0 && len(ids) > top {
			ids = ids[:top]
		}

		t := newTable(c.App.Writer, "ID", "NAME", "CENTRALITY")
		for _, id := range ids {
			name := ""
			if cand, err := e.Candidate(ctx, id); err == nil && cand != nil {
				name = cand.FullName
			}
			t.addRow(strconv.FormatUint(uint64(id), 10), name, fmt.Sprintf("%.4f", scores[id]))
		}
		return t.render()
	})
}

func topicsCommand(c *cli.Context) error {
	return withEngine(c, func(ctx context.Context, e *pcrank.Engine) error {
		opts := ingestion.TopicOptions{
			TopK:        c.Int("top-k"),
			MaxTitles:   c.Int("max-titles"),
			MinTitles:   c.Int("min-titles"),
			Limit:       c.Int("limit"),
			MissingOnly: c.Bool("missing-only"),
		}
		summary, err := e.EnrichTopics(ctx, opts, c.Bool("model"))
		if err != nil {
			return fmt.Errorf("topic extraction failed: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "Considered %d candidates, updated %d, added %d topics",
			summary.Considered, summary.Updated, summary.TopicsAdded)
		if summary.Failed > 0 {
			fmt.Fprintf(c.App.Writer, " (%d failed)", summary.Failed)
		}
		fmt.Fprintln(c.App.Writer)
		return nil
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, recs []*core.Recommendation, reasons []string) error {
	t := newTable(w, "#", "NAME", "AFFILIATION", "SCORE", "TOPIC", "SEM", "PUB", "PC", "IMPACT", "PR", "EXP", "NEW")
	for i, rec := range recs {
		b := rec.Breakdown
		t.addRow(strconv.Itoa(i+1), rec.Candidate.FullName, rec.Candidate.Affiliation,
			fmt.Sprintf("%.3f", rec.Score),
			score(b.TopicSimilarity), score(b.SemanticScore), score(b.PublicationRecent), score(b.ServiceRecent),
			score(b.Impact), score(b.Centrality), score(b.Experience), score(b.Newcomer))
	}
	if err := t.render(); err != nil {
		return err
	}

	if len(reasons) > 0 {
		fmt.Fprintln(w)
		for i, reason := range reasons {
			fmt.Fprintf(w, "%d. %s\n", i+1, reason)
		}
	}
	return nil
}

func score(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
