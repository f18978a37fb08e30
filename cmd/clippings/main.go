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
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/clippings"
	"github.com/poiesic/clippings/ai"
	"github.com/poiesic/clippings/capture"
	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/reembed"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "clippings",
		Usage: "Local-first capture and semantic search for notes and bookmarks",
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
				Name:      "add",
				Usage:     "Capture a note or bookmark",
				ArgsUsage: "[content]",
				Action:    addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "Note title",
					},
					&cli.StringFlag{
						Name:    "url",
						Aliases: []string{"u"},
						Usage:   "Source URL for a bookmark",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag to attach (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "suggest-tags",
						Usage: "Ask the language model to suggest additional tags",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search notes by meaning and keywords",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   20,
					},
				},
			},
			{
				Name:      "similar",
				Usage:     "Find notes similar to an existing note",
				ArgsUsage: "<note-id>",
				Action:    similarCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
				},
			},
			{
				Name:   "tags",
				Usage:  "List all tags with usage counts",
				Action: tagsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show database and cache statistics",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Rebuild all note embeddings with a new model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of notes to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N notes",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func addCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	content, err := contentFromArgsOrStdin(c)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	title := c.String("title")
	url := c.String("url")
	if content == "" && title == "" && url == "" {
		return fmt.Errorf("nothing to capture: provide content, --title, or --url")
	}

	// Open database
	db, err := clippings.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var opts []capture.Option
	if c.Bool("suggest-tags") {
		opts = append(opts, capture.WithAutoTag(true))
	}
	pipeline, err := db.NewCapturePipeline(nil, opts...)
	if err != nil {
		return fmt.Errorf("failed to create capture pipeline: %w", err)
	}
	defer pipeline.Release()

	notes, err := pipeline.Capture(ctx, capture.Request{
		Title:   title,
		URL:     url,
		Content: content,
		Tags:    c.StringSlice("tag"),
	})
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	// Block until embedding and tag suggestion have settled, so the note
	// is semantically searchable the moment the command returns.
	pipeline.Wait()

	for _, note := range notes {
		fmt.Printf("Captured %s\n", note.Id)
		if _, err := db.EmbeddingStore().GetEmbedding(ctx, note.Id); err != nil {
			fmt.Fprintln(os.Stderr, "no embedding was generated; the note is reachable through keyword search only")
		}
	}

	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	// Open database
	db, err := clippings.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	engine, err := db.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	result, err := engine.Query(ctx, query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if result.Notice != "" {
		fmt.Fprintf(os.Stderr, "note: %s\n", result.Notice)
	}
	printScoredNotes(result.Notes)

	return nil
}

func similarCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Args().Len() == 0 {
		return fmt.Errorf("note id is required")
	}
	noteId := core.ID(c.Args().First())

	// Open database
	db, err := clippings.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	engine, err := db.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	results, err := engine.FindSimilar(ctx, noteId, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("similarity search failed: %w", err)
	}

	printScoredNotes(results)

	return nil
}

func tagsCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	// Open database
	db, err := clippings.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tags, err := db.TagStore().ListTags(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}

	if len(tags) == 0 {
		fmt.Println("No tags.")
		return nil
	}
	for _, tag := range tags {
		fmt.Printf("%5d  %s\n", tag.Count, tag.DisplayName)
	}

	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	// Open database
	db, err := clippings.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	noteCount, err := db.NoteStore().CountNotes(ctx)
	if err != nil {
		return fmt.Errorf("failed to count notes: %w", err)
	}
	embeddingCount, err := db.EmbeddingStore().CountEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("failed to count embeddings: %w", err)
	}

	engine, err := db.NewSearchEngine()
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}
	if err := engine.WarmUp(ctx); err != nil {
		return fmt.Errorf("failed to load vector cache: %w", err)
	}
	stats := engine.CacheStats()

	fmt.Printf("Notes:          %d\n", noteCount)
	fmt.Printf("Embeddings:     %d\n", embeddingCount)
	fmt.Printf("Cached vectors: %d\n", stats.Size)
	fmt.Printf("Cache memory:   %.1f KiB\n", float64(stats.MemoryBytes)/1024)

	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	// Create AI config. Suggester settings keep their defaults; only the
	// embedding side matters for reembedding.
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Create reembedding config
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	// Open database with the new embedding model
	db, err := clippings.NewDatabase(dbPath, clippings.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	reembedder, err := db.NewReembedder(
		reembed.WithConfig(reembedConfig),
		reembed.WithProgress(os.Stderr),
	)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	// Run reembedding
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	counts, err := reembedder.Run(ctx)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	if counts.Failed > 0 {
		return fmt.Errorf("%d notes failed to re-embed; run the command again to retry them", counts.Failed)
	}

	return nil
}

// contentFromArgsOrStdin returns the note body: argument text when present,
// otherwise whatever was piped in. An interactive terminal yields an empty
// string rather than blocking on a read.
func contentFromArgsOrStdin(c *cli.Context) (string, error) {
	if c.Args().Len() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}

	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}
	if stat.Mode()&os.ModeCharDevice != 0 {
		return "", nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func printScoredNotes(results []*core.ScoredNote) {
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	for i, hit := range results {
		fmt.Printf("%2d. [%0.3f] %s  (%s)\n", i+1, hit.Score, noteLabel(hit.Note), hit.Note.Id)
		if len(hit.Note.Tags) > 0 {
			fmt.Printf("            tags: %s\n", strings.Join(hit.Note.Tags, ", "))
		}
	}
}

// noteLabel picks a display name for a note: title, then URL, then the
// first line of content.
func noteLabel(note *core.Note) string {
	switch {
	case note.Title != "":
		return note.Title
	case note.URL != "":
		return note.URL
	}

	label := strings.TrimSpace(note.Content)
	if i := strings.IndexByte(label, '\n'); i >= 0 {
		label = strings.TrimSpace(label[:i])
	}
	if runes := []rune(label); len(runes) > 60 {
		label = string(runes[:60]) + "..."
	}
	return label
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
