// Copyright 2026 Edilaw Labs
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
	"strings"

	"github.com/edilaw/normakit"
	"github.com/edilaw/normakit/config"
	"github.com/edilaw/normakit/core"
	"github.com/edilaw/normakit/ingestion"
	"github.com/edilaw/normakit/search"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "normakit",
		Usage: "Hierarchical retrieval for Italian building and zoning regulations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:  "data",
				Usage: "Index directory (overrides configuration)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a regulatory document or directory into a tier index",
				ArgsUsage: "<file-or-directory>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "level",
						Usage:    "Jurisdiction tier (nazionale, regionale, comunale)",
						Required: true,
					},
					&cli.StringFlag{Name: "region", Usage: "Region name"},
					&cli.StringFlag{Name: "province", Usage: "Province name"},
					&cli.StringFlag{Name: "municipality", Usage: "Municipality name"},
					&cli.BoolFlag{
						Name:  "recursive",
						Usage: "Descend into subdirectories",
						Value: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Retrieve the passages most relevant to a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "region", Usage: "Region scope"},
					&cli.StringFlag{Name: "province", Usage: "Province scope"},
					&cli.StringFlag{Name: "municipality", Usage: "Municipality scope"},
					&cli.StringFlag{
						Name:  "tier",
						Usage: "Search one tier only (nazionale, regionale, provinciale, comunale)",
					},
					&cli.IntFlag{Name: "top-k", Aliases: []string{"k"}, Usage: "Number of results"},
					&cli.BoolFlag{Name: "rerank", Usage: "Force LLM re-ranking for this query"},
					&cli.BoolFlag{Name: "citations", Usage: "Print citations instead of context"},
				},
			},
			{
				Name:   "delete",
				Usage:  "Delete indexed chunks matching metadata filters",
				Action: deleteCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "level",
						Usage:    "Jurisdiction tier to delete from",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "where",
						Usage:    "Metadata filter as key=value (repeatable)",
						Required: true,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show per-tier index statistics",
				Action: statsCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed every stored chunk with the configured model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "level",
						Usage: "Reindex one tier only (default: all)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) error {
	// Environment overrides (API hosts, keys) may live in a .env file
	_ = godotenv.Load()

	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s", c.String("log-level"))
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}

func openSystem(c *cli.Context) (*normakit.System, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if data := c.String("data"); data != "" {
		cfg.DataDir = data
	}
	return normakit.Open(cfg)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file or directory argument")
	}
	path := c.Args().First()

	level, err := core.ParseLevel(c.String("level"))
	if err != nil {
		return fmt.Errorf("invalid level %q: %w", c.String("level"), err)
	}

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	pipeline, err := sys.NewPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	as := ingestion.Assignment{
		Level:        level,
		Region:       c.String("region"),
		Province:     c.String("province"),
		Municipality: c.String("municipality"),
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if info.IsDir() {
		report, err := pipeline.IngestDirectory(ctx, path, as, c.Bool("recursive"))
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d chunks from %d files\n", report.TotalChunks, len(report.Files))
		for _, fr := range report.Failed() {
			fmt.Printf("  failed: %s: %v\n", fr.Path, fr.Err)
		}
		return nil
	}

	count, err := pipeline.IngestFile(ctx, path, as)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %d chunks from %s\n", count, path)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one query argument")
	}

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	retriever, err := sys.NewRetriever()
	if err != nil {
		return err
	}

	q := search.Query{
		Text:         c.Args().First(),
		Region:       c.String("region"),
		Province:     c.String("province"),
		Municipality: c.String("municipality"),
		Tier:         c.String("tier"),
		K:            c.Int("top-k"),
	}
	if c.Bool("rerank") {
		q.Rerank = search.RerankOn
	}

	results, err := retriever.Retrieve(context.Background(), q)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No relevant passages found")
		return nil
	}

	if c.Bool("citations") {
		for _, cit := range search.Citations(results) {
			line := string(cit.Level)
			if cit.Law != "" {
				line += " " + cit.Law
			}
			if cit.Article != "" {
				line += " Art. " + cit.Article
			}
			if cit.Municipality != "" {
				line += " (" + cit.Municipality + ")"
			} else if cit.Region != "" {
				line += " (" + cit.Region + ")"
			}
			fmt.Println(line)
		}
		return nil
	}

	fmt.Println(search.FormatContext(results))
	return nil
}

func deleteCommand(c *cli.Context) error {
	level, err := core.ParseLevel(c.String("level"))
	if err != nil {
		return fmt.Errorf("invalid level %q: %w", c.String("level"), err)
	}

	filter := map[string]string{}
	for _, pair := range c.StringSlice("where") {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return fmt.Errorf("invalid filter %q, expected key=value", pair)
		}
		filter[key] = value
	}

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	li, err := sys.Router().Index(level)
	if err != nil {
		return err
	}
	count, err := li.DeleteByMetadata(context.Background(), filter)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d chunks from %s\n", count, level)
	return nil
}

func statsCommand(c *cli.Context) error {
	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	stats, err := sys.Stats(context.Background())
	if err != nil {
		return err
	}
	for _, s := range stats {
		fmt.Printf("%-12s %8d chunks  (model: %s)\n", s.Level, s.Documents, s.EmbeddingModel)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	levels := core.Levels
	if name := c.String("level"); name != "" {
		level, err := core.ParseLevel(name)
		if err != nil {
			return fmt.Errorf("invalid level %q: %w", name, err)
		}
		levels = []core.Level{level}
	}

	ctx := context.Background()
	for _, level := range levels {
		li, err := sys.Router().Index(level)
		if err != nil {
			return err
		}
		count, err := li.Reindex(ctx)
		if err != nil {
			return fmt.Errorf("reindexing %s: %w", level, err)
		}
		fmt.Printf("Reindexed %d chunks in %s\n", count, level)
	}
	return nil
}
