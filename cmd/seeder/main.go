package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/clippings"
	"github.com/poiesic/clippings/capture"
)

var samples = []capture.Request{
	{
		Title:   "Go Concurrency Patterns: Pipelines",
		URL:     "https://go.dev/blog/pipelines",
		Content: "Fan-out, fan-in, and explicit cancellation with done channels. The section on bounded parallelism is the one to reread.",
		Tags:    []string{"go", "concurrency"},
	},
	{
		Title:   "SQLite: When To Use",
		URL:     "https://www.sqlite.org/whentouse.html",
		Content: "Single-writer local storage is fine for almost everything below serious write contention. Network filesystems are the main trap.",
		Tags:    []string{"databases", "sqlite"},
	},
	{
		Title:   "The Log: What every software engineer should know",
		URL:     "https://engineering.linkedin.com/distributed-systems/log-what-every-software-engineer-should-know-about-real-time-datas-unifying",
		Content: "Logs as the unifying abstraction for replication, stream processing, and data integration.",
		Tags:    []string{"distributed-systems", "architecture"},
	},
	{
		Title: "Raft consensus visualization",
		URL:   "https://thesecretlivesofdata.com/raft/",
		Tags:  []string{"distributed-systems", "visualization"},
	},
	{
		Content: "Idea: weekly digest of everything captured with the research tag, grouped by domain.",
		Tags:    []string{"idea"},
	},
	{
		Title:   "errgroup docs",
		URL:     "https://pkg.go.dev/golang.org/x/sync/errgroup",
		Content: "WithContext cancels the group on first error. SetLimit bounds concurrency without a manual semaphore.",
		Tags:    []string{"go", "concurrency"},
	},
	{
		Title:   "B-tree vs LSM-tree",
		Content: "B-trees read fast and write slow, LSM trees write fast and read slow. Compaction debt is the hidden operational cost of LSM stores.",
		Tags:    []string{"databases", "storage"},
	},
	{
		Title: "How to Do Great Work",
		URL:   "https://paulgraham.com/greatwork.html",
		Tags:  []string{"essays", "career"},
	},
	{
		Content: "Meeting note: embedding dimensions stay at 384 until the quality numbers justify a bigger model. Revisit after the relevance eval lands.",
		Tags:    []string{"work", "search"},
	},
	{
		Title:   "Designing Data-Intensive Applications",
		Content: "Chapter 3 on storage engines is the best short explanation of why databases look the way they do. Reread before any storage design.",
		Tags:    []string{"books", "databases"},
	},
	{
		Title: "jq manual",
		URL:   "https://jqlang.github.io/jq/manual/",
	},
	{
		Title:   "Vim registers cheat sheet",
		Content: "Named registers a-z, append with capital letters. The expression register evaluates before insert.",
		Tags:    []string{"vim", "reference"},
	},
	{
		Title: "Latency numbers every programmer should know",
		URL:   "https://gist.github.com/jboner/2841832",
		Tags:  []string{"performance", "reference"},
	},
	{
		Content: "Main memory reference 100ns, SSD random read 16us, round trip within a datacenter 500us. Cache locality dominates everything else.",
		Tags:    []string{"performance"},
	},
	{
		Title:   "Go Wiki: Error handling",
		URL:     "https://go.dev/wiki/Errors",
		Content: "Sentinel errors for expected states, wrapped errors for context, errors.Is and errors.As at the boundaries.",
		Tags:    []string{"go", "errors"},
	},
	{
		Title:   "Choose Boring Technology",
		URL:     "https://boringtechnology.club/",
		Content: "Innovation tokens are scarce. Spend them on the product, not the plumbing.",
		Tags:    []string{"essays", "architecture"},
	},
	{
		Content: "Recipe worth keeping: overnight oats with frozen berries, oat milk, chia. Five minutes the night before.",
		Tags:    []string{"recipes"},
	},
	{
		Title:   "BadgerDB design notes",
		URL:     "https://docs.hypermode.com/badger/overview",
		Content: "Values separated from keys in the value log, the LSM tree only holds keys and pointers. Iterators honor prefix scans without touching values.",
		Tags:    []string{"databases", "go", "storage"},
	},
	{
		Title:   "A Philosophy of Software Design",
		Content: "Modules should be deep: simple interfaces over substantial functionality. Shallow modules add interface without hiding complexity.",
		Tags:    []string{"books", "software-design"},
	},
	{
		Title: "Ollama model library",
		URL:   "https://ollama.com/library",
		Tags:  []string{"ml", "tools"},
	},
	{
		Content: "all-minilm embeds a paragraph in about ten milliseconds on the laptop. A batch of one hundred lands under a second, so batching wins at any scale.",
		Tags:    []string{"ml", "performance", "search"},
	},
	{
		Title:   "Local-first software",
		URL:     "https://www.inkandswitch.com/local-first/",
		Content: "Seven ideals: fast, multi-device, offline, collaboration, longevity, privacy, user control. Most apps trade all seven for a server.",
		Tags:    []string{"local-first", "essays"},
	},
	{
		Title:   "systemd timers instead of cron",
		Content: "OnCalendar syntax, Persistent=true for catch-up runs, systemctl list-timers to audit. Logs land in journalctl instead of mail.",
		Tags:    []string{"linux", "tools"},
	},
	{
		Title:   "The Tail at Scale",
		URL:     "https://research.google/pubs/pub40801/",
		Content: "Hedged requests and micro-partitions tame tail latency. The cheapest fix is not sending the slow request at all.",
		Tags:    []string{"performance", "distributed-systems", "papers"},
	},
	{
		Content: "Gift idea: mechanical watch repair kit.",
	},
	{
		Title:   "Cosine similarity vs dot product",
		Content: "Normalized vectors make the two identical. Store vectors normalized once at write time and use plain dot products at query time.",
		Tags:    []string{"ml", "search", "math"},
	},
}

var (
	seedFileName = flag.String("src", "", "file of seed data, one note body per line")
	dbPath       = flag.String("db", "./clippings_db", "path to the note database directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// requestsFromFile returns an iterator over capture requests built from the
// lines of a file. Blank lines are skipped.
func requestsFromFile(filename string) (iter.Seq[capture.Request], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(capture.Request) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !yield(capture.Request{Content: line}) {
				return
			}
		}
	}, nil
}

// requestsFromSlice returns an iterator over a slice of capture requests.
func requestsFromSlice(requests []capture.Request) iter.Seq[capture.Request] {
	return func(yield func(capture.Request) bool) {
		for _, req := range requests {
			if !yield(req) {
				return
			}
		}
	}
}

// captureBatched reads from a source iterator and captures notes in batches.
func captureBatched(ctx context.Context, pipeline *capture.Pipeline, source iter.Seq[capture.Request], batchSize int) error {
	batch := make([]capture.Request, 0, batchSize)

	for req := range source {
		batch = append(batch, req)
		if len(batch) == batchSize {
			if _, err := pipeline.Capture(ctx, batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	// Process any remaining requests
	if len(batch) > 0 {
		if _, err := pipeline.Capture(ctx, batch...); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	db, err := clippings.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewCapturePipeline(nil)
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[capture.Request]
	if seedFileName != nil && *seedFileName != "" {
		source, err = requestsFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = requestsFromSlice(samples)
	}

	// Capture in batches of 5
	if err := captureBatched(ctx, pipeline, source, 5); err != nil {
		panic(err)
	}

	// Let embedding and tag suggestion finish before the process exits.
	pipeline.Wait()
}
