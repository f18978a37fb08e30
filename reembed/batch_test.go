package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/clippings/ai/mock"
	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchProcessor_EmbedsAndNormalizes(t *testing.T) {
	notes, embeddings, _ := setupReembedStores(t)
	added := addContentNotes(t, notes, 2)
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{3.0, 4.0}
		}
		return vectors, nil
	}

	processor := NewBatchProcessor(embeddings, embedder, "model-v2", 3, time.Millisecond)

	embedded, skipped, err := processor.Process(ctx, added)
	require.NoError(t, err)
	assert.Equal(t, 2, embedded)
	assert.Equal(t, 0, skipped)

	for _, note := range added {
		record, err := embeddings.GetEmbedding(ctx, note.Id)
		require.NoError(t, err)
		assert.Equal(t, "model-v2", record.ModelVersion)
		assert.False(t, record.ComputedAt.IsZero())

		require.Len(t, record.Vector, 2)
		assert.InDelta(t, 0.6, record.Vector[0], 1e-6)
		assert.InDelta(t, 0.8, record.Vector[1], 1e-6)
	}
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	_, embeddings, _ := setupReembedStores(t)

	processor := NewBatchProcessor(embeddings, mock.NewMockEmbedder(), "model-v2", 3, time.Millisecond)

	embedded, skipped, err := processor.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, embedded)
	assert.Equal(t, 0, skipped)
}

func TestBatchProcessor_SkipsNotesWithoutContent(t *testing.T) {
	notes, embeddings, _ := setupReembedStores(t)
	ctx := context.Background()

	added, err := notes.AddNotes(ctx,
		&core.Note{Title: "has content", Content: "some words"},
		&core.Note{Title: "link only", URL: "https://example.com/ref"},
	)
	require.NoError(t, err)

	// The content-free note carries a stale record from an earlier model.
	err = embeddings.SaveEmbedding(ctx, &core.EmbeddingRecord{
		NoteId:       added[1].Id,
		Vector:       []float32{1.0, 0.0},
		ModelVersion: "old-model",
	})
	require.NoError(t, err)

	processor := NewBatchProcessor(embeddings, mock.NewMockEmbedder(), "model-v2", 3, time.Millisecond)

	embedded, skipped, err := processor.Process(ctx, added)
	require.NoError(t, err)
	assert.Equal(t, 1, embedded)
	assert.Equal(t, 1, skipped)

	_, err = embeddings.GetEmbedding(ctx, added[1].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound, "stale record should be removed")

	record, err := embeddings.GetEmbedding(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "model-v2", record.ModelVersion)
}

func TestBatchProcessor_RetriesTransientFailures(t *testing.T) {
	notes, embeddings, _ := setupReembedStores(t)
	added := addContentNotes(t, notes, 1)
	ctx := context.Background()

	attempts := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("temporary outage")
		}
		return [][]float32{{0.0, 1.0}}, nil
	}

	processor := NewBatchProcessor(embeddings, embedder, "model-v2", 3, time.Millisecond)

	embedded, _, err := processor.Process(ctx, added)
	require.NoError(t, err)
	assert.Equal(t, 1, embedded)
	assert.Equal(t, 2, attempts)

	_, err = embeddings.GetEmbedding(ctx, added[0].Id)
	require.NoError(t, err)
}

func TestBatchProcessor_FailsAfterExhaustedRetries(t *testing.T) {
	notes, embeddings, _ := setupReembedStores(t)
	added := addContentNotes(t, notes, 1)
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("persistent outage")
	}

	processor := NewBatchProcessor(embeddings, embedder, "model-v2", 2, time.Millisecond)

	embedded, skipped, err := processor.Process(ctx, added)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Contains(t, err.Error(), "persistent outage")
	assert.Equal(t, 0, embedded)
	assert.Equal(t, 0, skipped)

	_, err = embeddings.GetEmbedding(ctx, added[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound, "no record should be written on failure")
}

func TestBatchProcessor_VectorCountMismatch(t *testing.T) {
	notes, embeddings, _ := setupReembedStores(t)
	added := addContentNotes(t, notes, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1.0, 0.0}}, nil
	}

	processor := NewBatchProcessor(embeddings, embedder, "model-v2", 1, time.Millisecond)

	_, _, err := processor.Process(context.Background(), added)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestBatchProcessor_ContextCancellation(t *testing.T) {
	notes, embeddings, _ := setupReembedStores(t)
	added := addContentNotes(t, notes, 1)

	ctx, cancel := context.WithCancel(context.Background())
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		cancel()
		return nil, errors.New("interrupted")
	}

	processor := NewBatchProcessor(embeddings, embedder, "model-v2", 5, time.Millisecond)

	_, _, err := processor.Process(ctx, added)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
