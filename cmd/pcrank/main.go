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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/pcrank/ingestion"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pcrank",
		Usage: "Rank program committee candidates for a conference edition",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (defaults to $PCRANK_CONFIG)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Print collected metrics to stderr on exit",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import researchers and committee memberships from a YAML or JSON file",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Dataset file to import",
						Required: true,
					},
				},
			},
			{
				Name:   "rank",
				Usage:  "Rank candidates for a set of topics",
				Action: rankCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "topic",
						Aliases: []string{"t"},
						Usage:   "Topic phrase to match (repeatable)",
					},
					&cli.StringFlag{
						Name:    "series",
						Aliases: []string{"s"},
						Usage:   "Target conference series",
					},
					&cli.IntFlag{
						Name:    "year",
						Aliases: []string{"y"},
						Usage:   "Target edition year (defaults to the year after the latest edition)",
					},
					&cli.IntFlag{
						Name:  "lookback",
						Usage: "Recency window in years (defaults to the configured lookback)",
						Value: -1,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of candidates to return (defaults to the configured limit)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Write results as JSON",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Rank candidates for a free-text request",
				ArgsUsage: "<request>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "series",
						Aliases: []string{"s"},
						Usage:   "Target conference series",
					},
					&cli.IntFlag{
						Name:    "year",
						Aliases: []string{"y"},
						Usage:   "Target edition year",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of candidates to return (defaults to the configured limit)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Write results as JSON",
					},
				},
			},
			{
				Name:   "warm",
				Usage:  "Embed candidate profiles into the embedding cache",
				Action: warmCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-embed profiles even when the cached vector is current",
					},
				},
			},
			{
				Name:   "centrality",
				Usage:  "Show co-membership centrality scores",
				Action: centralityCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Recompute the vector even if the cached one is current",
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of members to show",
						Value: 20,
					},
				},
			},
			{
				Name:   "topics",
				Usage:  "Derive topic labels from publication titles",
				Action: topicsCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Labels derived per candidate",
						Value: ingestion.DefaultTopicsPerCandidate,
					},
					&cli.IntFlag{
						Name:  "max-titles",
						Usage: "Publication titles read per candidate",
						Value: ingestion.DefaultMaxTitles,
					},
					&cli.IntFlag{
						Name:  "min-titles",
						Usage: "Skip candidates with fewer titles",
						Value: ingestion.DefaultMinTitles,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Only process the first N candidates (0 for all)",
					},
					&cli.BoolFlag{
						Name:  "missing-only",
						Usage: "Skip candidates that already have topics",
					},
					&cli.BoolFlag{
						Name:  "model",
						Usage: "Label with the configured AI topic extractor instead of TF-IDF",
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
