package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/clippings/ai"
	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

// embeddingProcessor generates embedding records for captured notes.
type embeddingProcessor struct {
	notes        storage.NoteStore
	embeddings   storage.EmbeddingStore
	embedder     ai.Embedder
	modelVersion string
	invalidator  Invalidator
	logger       *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(
	notes storage.NoteStore,
	embeddings storage.EmbeddingStore,
	embedder ai.Embedder,
	modelVersion string,
	invalidator Invalidator,
	logger *slog.Logger,
) (processor, error) {
	if notes == nil {
		return nil, fmt.Errorf("note store required")
	}
	if embeddings == nil {
		return nil, fmt.Errorf("embedding store required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		notes:        notes,
		embeddings:   embeddings,
		embedder:     embedder,
		modelVersion: modelVersion,
		invalidator:  invalidator,
		logger:       logger.With("processor", "embeddings"),
	}, nil
}

// process embeds the content of the given notes in one batch. A note whose
// content became empty loses its embedding record instead; it stays
// retrievable through the keyword path. The search cache is invalidated
// once, after all records are written.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing notes for embeddings", "notes", len(ids))

	slices.Sort(ids)

	notes, err := ep.notes.GetNotes(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving notes", "err", err)
		return err
	}

	var toEmbed []*core.Note
	var toDelete []core.ID
	for _, note := range notes {
		if note.Content == "" {
			toDelete = append(toDelete, note.Id)
			continue
		}
		toEmbed = append(toEmbed, note)
	}

	mutated := false
	defer func() {
		if mutated && ep.invalidator != nil {
			ep.invalidator.InvalidateCache()
		}
	}()

	var errs []error
	for _, id := range toDelete {
		if err := ep.embeddings.DeleteEmbedding(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("deleting embedding for note %s: %w", id, err))
			continue
		}
		mutated = true
	}

	if len(toEmbed) == 0 {
		return errors.Join(errs...)
	}

	texts := make([]string, len(toEmbed))
	for i, note := range toEmbed {
		texts[i] = note.Content
	}

	ep.logger.Debug("generating embeddings for notes", "notes", len(texts))
	vectors, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		errs = append(errs, err)
		return errors.Join(errs...)
	}
	if len(vectors) != len(toEmbed) {
		errs = append(errs, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(toEmbed), len(vectors)))
		return errors.Join(errs...)
	}

	now := time.Now().UTC()
	for i, note := range toEmbed {
		record := &core.EmbeddingRecord{
			NoteId:       note.Id,
			Vector:       vectors[i],
			ModelVersion: ep.modelVersion,
			ComputedAt:   now,
		}
		if err := ep.embeddings.SaveEmbedding(ctx, record); err != nil {
			errs = append(errs, fmt.Errorf("saving embedding for note %s: %w", note.Id, err))
			continue
		}
		mutated = true
	}

	return errors.Join(errs...)
}
