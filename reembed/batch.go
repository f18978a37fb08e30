package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/clippings/ai"
	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

// BatchProcessor rebuilds embedding records for batches of notes.
type BatchProcessor struct {
	embeddings   storage.EmbeddingStore
	embedder     ai.Embedder
	modelVersion string
	maxRetries   int
	retryDelay   time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for embedding calls
// retryDelay: base delay for exponential backoff
func NewBatchProcessor(embeddings storage.EmbeddingStore, embedder ai.Embedder, modelVersion string, maxRetries int, retryDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		embeddings:   embeddings,
		embedder:     embedder,
		modelVersion: modelVersion,
		maxRetries:   maxRetries,
		retryDelay:   retryDelay,
	}
}

// Process re-embeds one batch of notes. Notes with content get a fresh
// normalized vector stamped with the target model version; notes whose
// content is empty lose any stale embedding record and count as skipped.
func (bp *BatchProcessor) Process(ctx context.Context, notes []*core.Note) (embedded, skipped int, err error) {
	if len(notes) == 0 {
		return 0, 0, nil
	}

	var toEmbed []*core.Note
	for _, note := range notes {
		if note.Content == "" {
			if err := bp.embeddings.DeleteEmbedding(ctx, note.Id); err != nil {
				return embedded, skipped, fmt.Errorf("deleting stale embedding for note %s: %w", note.Id, err)
			}
			skipped++
			continue
		}
		toEmbed = append(toEmbed, note)
	}

	if len(toEmbed) == 0 {
		return 0, skipped, nil
	}

	texts := make([]string, len(toEmbed))
	for i, note := range toEmbed {
		texts[i] = note.Content
	}

	var vectors [][]float32
	err = RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = bp.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, bp.maxRetries, bp.retryDelay)
	if err != nil {
		return 0, skipped, fmt.Errorf("generating embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(vectors) != len(toEmbed) {
		return 0, skipped, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(toEmbed), len(vectors))
	}

	now := time.Now().UTC()
	for i, note := range toEmbed {
		record := &core.EmbeddingRecord{
			NoteId:       note.Id,
			Vector:       NormalizeVector(vectors[i]),
			ModelVersion: bp.modelVersion,
			ComputedAt:   now,
		}
		if err := bp.embeddings.SaveEmbedding(ctx, record); err != nil {
			return embedded, skipped, fmt.Errorf("saving embedding for note %s: %w", note.Id, err)
		}
		embedded++
	}

	return embedded, skipped, nil
}
