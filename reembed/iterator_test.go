package reembed

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
	"github.com/poiesic/clippings/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReembedStores(t *testing.T) (storage.NoteStore, storage.EmbeddingStore, storage.CheckpointStore) {
	t.Helper()

	notes, embeddings, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	return notes, embeddings, badger.NewCheckpointStore(backend)
}

// addContentNotes stores count notes with non-empty content and returns
// them in creation order.
func addContentNotes(t *testing.T, notes storage.NoteStore, count int) []*core.Note {
	t.Helper()

	batch := make([]*core.Note, count)
	for i := range batch {
		batch[i] = &core.Note{
			Title:   fmt.Sprintf("note %d", i),
			Content: fmt.Sprintf("contents of note %d", i),
		}
	}
	added, err := notes.AddNotes(context.Background(), batch...)
	require.NoError(t, err)
	require.Len(t, added, count)
	return added
}

func TestNoteIterator_VisitsEveryNote(t *testing.T) {
	notes, _, _ := setupReembedStores(t)
	added := addContentNotes(t, notes, 5)

	iter := NewNoteIterator(notes, 2)
	seen := make(map[core.ID]bool)

	err := iter.ForEach(context.Background(), 0, func(offset int, batch []*core.Note) error {
		for _, note := range batch {
			seen[note.Id] = true
		}
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, seen, 5)
	for _, note := range added {
		assert.True(t, seen[note.Id], "note %s should be visited", note.Id)
	}
}

func TestNoteIterator_BatchSizes(t *testing.T) {
	notes, _, _ := setupReembedStores(t)
	addContentNotes(t, notes, 10)

	tests := []struct {
		name          string
		batchSize     int
		expectBatches int
	}{
		{"batch size 1", 1, 10},
		{"batch size 3", 3, 4},
		{"batch size 10", 10, 1},
		{"batch size larger than store", 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iter := NewNoteIterator(notes, tt.batchSize)
			batches := 0
			total := 0

			err := iter.ForEach(context.Background(), 0, func(offset int, batch []*core.Note) error {
				batches++
				total += len(batch)
				assert.LessOrEqual(t, len(batch), tt.batchSize)
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectBatches, batches)
			assert.Equal(t, 10, total)
		})
	}
}

func TestNoteIterator_ReportsBatchOffsets(t *testing.T) {
	notes, _, _ := setupReembedStores(t)
	addContentNotes(t, notes, 7)

	iter := NewNoteIterator(notes, 3)
	var offsets []int

	err := iter.ForEach(context.Background(), 0, func(offset int, batch []*core.Note) error {
		offsets = append(offsets, offset)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 6}, offsets)
}

func TestNoteIterator_StartOffsetSkipsEarlierNotes(t *testing.T) {
	notes, _, _ := setupReembedStores(t)
	addContentNotes(t, notes, 6)

	iter := NewNoteIterator(notes, 2)
	total := 0
	var firstOffset int

	err := iter.ForEach(context.Background(), 4, func(offset int, batch []*core.Note) error {
		if total == 0 {
			firstOffset = offset
		}
		total += len(batch)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, firstOffset)
	assert.Equal(t, 2, total, "should only visit notes past the start offset")
}

func TestNoteIterator_NegativeStartOffset(t *testing.T) {
	notes, _, _ := setupReembedStores(t)
	addContentNotes(t, notes, 3)

	iter := NewNoteIterator(notes, 10)
	total := 0

	err := iter.ForEach(context.Background(), -5, func(offset int, batch []*core.Note) error {
		total += len(batch)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, total, "negative offset should behave like zero")
}

func TestNoteIterator_EmptyStore(t *testing.T) {
	notes, _, _ := setupReembedStores(t)

	iter := NewNoteIterator(notes, 10)
	called := false

	err := iter.ForEach(context.Background(), 0, func(offset int, batch []*core.Note) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called, "callback should not run for an empty store")
}

func TestNoteIterator_StopsOnCallbackError(t *testing.T) {
	notes, _, _ := setupReembedStores(t)
	addContentNotes(t, notes, 4)

	iter := NewNoteIterator(notes, 1)
	calls := 0

	err := iter.ForEach(context.Background(), 0, func(offset int, batch []*core.Note) error {
		calls++
		return assert.AnError
	})

	require.Error(t, err)
	assert.Equal(t, assert.AnError, err)
	assert.Equal(t, 1, calls, "iteration should stop on the first error")
}

func TestNoteIterator_ContextCancellation(t *testing.T) {
	notes, _, _ := setupReembedStores(t)
	addContentNotes(t, notes, 5)

	ctx, cancel := context.WithCancel(context.Background())
	iter := NewNoteIterator(notes, 1)
	calls := 0

	err := iter.ForEach(ctx, 0, func(offset int, batch []*core.Note) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls, "should stop at the batch boundary after cancellation")
}

func TestNewNoteIterator_InvalidBatchSize(t *testing.T) {
	notes, _, _ := setupReembedStores(t)

	assert.Equal(t, DefaultBatchSize, NewNoteIterator(notes, 0).batchSize)
	assert.Equal(t, DefaultBatchSize, NewNoteIterator(notes, -3).batchSize)
}
