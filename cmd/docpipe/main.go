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
	"strings"

	"github.com/poiesic/docpipe"
	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/pipeline"
	"github.com/poiesic/docpipe/reader"
	"github.com/poiesic/docpipe/storage/badger"
	"github.com/poiesic/docpipe/transform"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "docpipe",
		Usage: "Document ingestion pipeline with content-addressed caching",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Ingest documents from a directory through the transformation chain",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Directory containing documents to ingest",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "collection",
						Usage: "Cache collection name",
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "AI service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.StringFlag{
						Name:  "extractor-model",
						Usage: "Keyword extraction model name",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Maximum characters per chunk",
						Value: transform.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Characters of overlap between chunks",
						Value: transform.DefaultChunkOverlap,
					},
					&cli.BoolFlag{
						Name:  "concurrent",
						Usage: "Use intra-stage concurrency for embedding",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Disable transformation caching for this run",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Report per-stage progress to stderr",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search ingested documents",
				Action:    searchCommand,
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "AI service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results",
						Value: 10,
					},
				},
			},
			{
				Name:   "cache-clear",
				Usage:  "Clear a cache collection",
				Action: cacheClearCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "collection",
						Usage: "Cache collection name",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func aiOptions(c *cli.Context) []ai.ConfigOption {
	opts := []ai.ConfigOption{ai.WithHost(c.String("host"))}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("extractor-model"); model != "" {
		opts = append(opts, ai.WithExtractorModel(model))
	}
	return opts
}

func runCommand(c *cli.Context) error {
	ctx := context.Background()

	ws, err := docpipe.Open(c.String("db"), docpipe.WithAIConfig(ai.NewConfig(aiOptions(c)...)))
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer ws.Close()

	source, err := reader.NewFileReader(c.String("source"))
	if err != nil {
		return fmt.Errorf("failed to open source directory: %w", err)
	}

	transformations, err := ws.DefaultTransformations(
		transform.WithChunkSize(c.Int("chunk-size")),
		transform.WithChunkOverlap(c.Int("chunk-overlap")),
	)
	if err != nil {
		return fmt.Errorf("failed to build transformations: %w", err)
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithReader(source),
		pipeline.WithCollection(c.String("collection")),
		pipeline.WithConcurrency(c.Bool("concurrent")),
		pipeline.WithTransformOptions(&transform.Options{
			ShowProgress: c.Bool("progress"),
			Progress:     os.Stderr,
		}),
	}
	if c.Bool("no-cache") {
		pipelineOpts = append(pipelineOpts, pipeline.WithCache(nil))
	}

	p, err := ws.NewPipeline(transformations, pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer p.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Source: %s\n", c.String("source"))
	fmt.Fprintln(os.Stderr)

	result, err := p.Run(ctx, nil)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Processed %d nodes\n", len(result))
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query argument is required")
	}

	ws, err := docpipe.Open(c.String("db"), docpipe.WithAIConfig(ai.NewConfig(aiOptions(c)...)))
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer ws.Close()

	searcher, err := ws.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.FindSimilar(ctx, query, c.Int("max-hits"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%d. [%.3f] %s\n", i+1, result.Score, result.Node.SourceId)
		fmt.Printf("   %s\n", truncate(result.Node.Content, 200))
	}
	return nil
}

func cacheClearCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	cache := badger.NewCache(backend)
	if err := cache.Clear(ctx, c.String("collection")); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Cache cleared.")
	return nil
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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
