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

	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

const (
	// DefaultBatchSize is the default number of notes fetched per batch.
	DefaultBatchSize = 100
)

// NoteIterator pages through all notes in creation order.
//
// Paging by offset over the creation-time index is stable against
// concurrent captures: new notes sort after every existing one, so they
// are either picked up by a later page or missed entirely, never able to
// shift notes across page boundaries.
type NoteIterator struct {
	notes     storage.NoteStore
	batchSize int
}

// NewNoteIterator creates a new note iterator.
// batchSize: number of notes to fetch in each batch (must be > 0)
func NewNoteIterator(notes storage.NoteStore, batchSize int) *NoteIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &NoteIterator{
		notes:     notes,
		batchSize: batchSize,
	}
}

// ForEach iterates over all notes starting at startOffset, calling fn for
// each batch with the batch's offset. Iteration stops on the first error
// from fn or when all notes are exhausted. Context cancellation is checked
// between batches.
func (it *NoteIterator) ForEach(ctx context.Context, startOffset int, fn func(offset int, batch []*core.Note) error) error {
	if startOffset < 0 {
		startOffset = 0
	}

	offset := startOffset
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := it.notes.ListNotes(ctx, storage.ListOptions{
			Limit:   it.batchSize,
			Offset:  offset,
			OrderBy: storage.OrderByCreated,
		})
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		if err := fn(offset, batch); err != nil {
			return err
		}

		offset += len(batch)
		if len(batch) < it.batchSize {
			return nil
		}
	}
}
