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


package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/clippings/ai"
	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

// checkpointProcessor is the processor name under which progress
// checkpoints are stored.
const checkpointProcessor = "reembed"

// Config holds configuration for the re-embedding operation.
type Config struct {
	// BatchSize is the number of notes to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of notes)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for failed embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Counts summarizes one re-embedding run.
type Counts struct {
	Processed int // Notes examined during this run
	Embedded  int // Notes that received a fresh embedding record
	Skipped   int // Notes without content; any stale record was removed
	Failed    int // Notes in batches that failed even after retries
}

// Invalidator marks derived search state stale after embedding mutations.
type Invalidator interface {
	InvalidateCache()
}

// Reembedder rebuilds every embedding record with a new model version.
// Batches that fail after retries are counted and skipped so one bad
// stretch of notes cannot abort a long migration.
type Reembedder struct {
	notes        storage.NoteStore
	embeddings   storage.EmbeddingStore
	checkpoints  storage.CheckpointStore
	config       *Config
	modelVersion string
	progress     io.Writer
	invalidator  Invalidator
	processor    *BatchProcessor
	iterator     *NoteIterator
	logger       *slog.Logger
}

// Option configures a Reembedder.
type Option func(*Reembedder) error

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(r *Reembedder) error {
		if config != nil {
			r.config = config
		}
		return nil
	}
}

// WithProgress sets the writer receiving progress output.
// Default is io.Discard.
func WithProgress(writer io.Writer) Option {
	return func(r *Reembedder) error {
		if writer != nil {
			r.progress = writer
		}
		return nil
	}
}

// WithCheckpoints enables resumable runs. An interrupted run restarts
// from its last saved offset instead of the beginning, as long as the
// target model version matches.
func WithCheckpoints(checkpoints storage.CheckpointStore) Option {
	return func(r *Reembedder) error {
		r.checkpoints = checkpoints
		return nil
	}
}

// WithInvalidator sets the search cache to invalidate after the run.
func WithInvalidator(invalidator Invalidator) Option {
	return func(r *Reembedder) error {
		r.invalidator = invalidator
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reembedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewReembedder creates a re-embedding run targeting the given model version.
func NewReembedder(
	notes storage.NoteStore,
	embeddings storage.EmbeddingStore,
	embedder ai.Embedder,
	modelVersion string,
	opts ...Option,
) (*Reembedder, error) {
	if notes == nil {
		return nil, ErrNoteStoreRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if modelVersion == "" {
		return nil, ErrModelVersionRequired
	}

	r := &Reembedder{
		notes:        notes,
		embeddings:   embeddings,
		config:       DefaultConfig(),
		modelVersion: modelVersion,
		progress:     io.Discard,
		logger:       slog.Default().With("component", "reembed"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	r.processor = NewBatchProcessor(embeddings, embedder, modelVersion,
		r.config.MaxRetries, r.config.RetryDelay)
	r.iterator = NewNoteIterator(notes, r.config.BatchSize)

	return r, nil
}

// Run executes the re-embedding pass over every note.
// Progress is reported to the configured writer; the returned counts
// summarize the run even when it ends in an error.
func (r *Reembedder) Run(ctx context.Context) (Counts, error) {
	var counts Counts

	total, err := r.notes.CountNotes(ctx)
	if err != nil {
		return counts, fmt.Errorf("counting notes: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No notes found in database (0 notes)\n")
		return counts, nil
	}

	startOffset := r.resumeOffset(ctx)
	if startOffset > 0 {
		fmt.Fprintf(r.progress, "Resuming from note %d\n", startOffset)
	}

	fmt.Fprintf(r.progress, "Starting re-embedding of %d notes with model %s (batch size: %d)\n",
		total, r.modelVersion, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()
	tracker.Increment(startOffset)

	err = r.iterator.ForEach(ctx, startOffset, func(offset int, batch []*core.Note) error {
		embedded, skipped, processErr := r.processor.Process(ctx, batch)
		if processErr != nil && ctx.Err() != nil {
			// An aborted batch is not counted or checkpointed, so the
			// next run picks it up again.
			return ctx.Err()
		}

		counts.Processed += len(batch)
		counts.Embedded += embedded
		counts.Skipped += skipped

		if processErr != nil {
			// Count the batch as failed and move on; the summary tells
			// the operator to rerun.
			counts.Failed += len(batch) - embedded - skipped
			r.logger.Error("batch failed, continuing",
				"offset", offset, "notes", len(batch), "err", processErr)
		}

		tracker.Increment(len(batch))
		r.saveCheckpoint(ctx, offset+len(batch))
		return nil
	})
	if err != nil {
		return counts, err
	}

	tracker.Finish()
	r.clearCheckpoint(ctx)

	if r.invalidator != nil && counts.Processed > 0 {
		r.invalidator.InvalidateCache()
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Re-embedding complete. Embedded %d, skipped %d, failed %d in %v (%.1f notes/sec)\n",
		counts.Embedded, counts.Skipped, counts.Failed,
		elapsed.Round(time.Second), float64(counts.Processed)/elapsed.Seconds())

	return counts, nil
}

// resumeOffset loads the saved checkpoint, if resumption is enabled and
// the checkpoint targets the same model version.
func (r *Reembedder) resumeOffset(ctx context.Context) int {
	if r.checkpoints == nil {
		return 0
	}

	checkpoint, err := r.checkpoints.LoadCheckpoint(ctx, checkpointProcessor)
	if err != nil {
		r.logger.Warn("failed to load checkpoint, starting over", "err", err)
		return 0
	}
	if checkpoint == nil || checkpoint.ModelVersion != r.modelVersion {
		return 0
	}
	return checkpoint.Offset
}

func (r *Reembedder) saveCheckpoint(ctx context.Context, offset int) {
	if r.checkpoints == nil {
		return
	}

	checkpoint := &core.Checkpoint{
		Processor:    checkpointProcessor,
		ModelVersion: r.modelVersion,
		Offset:       offset,
	}
	if err := r.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
		r.logger.Warn("failed to save checkpoint", "offset", offset, "err", err)
	}
}

func (r *Reembedder) clearCheckpoint(ctx context.Context) {
	if r.checkpoints == nil {
		return
	}

	if err := r.checkpoints.DeleteCheckpoint(ctx, checkpointProcessor); err != nil {
		r.logger.Warn("failed to clear checkpoint", "err", err)
	}
}
