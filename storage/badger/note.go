package badger

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

// NoteStore implements storage.NoteStore for BadgerDB.
type NoteStore struct {
	backend *Backend
}

var _ storage.NoteStore = (*NoteStore)(nil)

// NewNoteStore creates a new NoteStore over the shared backend.
func NewNoteStore(backend *Backend) (*NoteStore, error) {
	return &NoteStore{
		backend: backend,
	}, nil
}

// Close releases store-level resources. The shared backend is closed by its owner.
func (r *NoteStore) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *NoteStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddNotes adds one or more notes to storage.
func (r *NoteStore) AddNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, note := range notes {
			if note.Id == "" {
				note.Id = core.NewID()
			}

			key := makeNoteKey(note.Id)
			existing, err := r.readNote(tx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: note %s already exists", storage.ErrDuplicateKey, note.Id)
			}

			rawTags := note.Tags
			note.Tags = core.NormalizeTags(rawTags)
			note.CreatedAt = time.Now().UTC()
			note.UpdatedAt = note.CreatedAt
			note.RecalculateCounts()

			// Claim the URL index entry before writing the record
			if note.URL != "" {
				if err := r.setURLIndex(tx, note.URL, note.Id); err != nil {
					return err
				}
			}

			// Store primary record
			if err := tx.Set(key, storage.MarshalNote(note)); err != nil {
				return err
			}

			// Update creation-time index
			timeKey := makeNoteTimeKey(note.CreatedAt, note.Id)
			if err := tx.Set(timeKey, storage.MarshalID(note.Id)); err != nil {
				return err
			}

			// Update tag usage counts
			if err := incrementTagCounts(tx, rawTags, nil); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return notes, err
}

// UpdateNotes updates existing notes.
func (r *NoteStore) UpdateNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, note := range notes {
			key := makeNoteKey(note.Id)

			// Read old note to detect changes
			old, err := r.readNote(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			rawTags := note.Tags
			note.Tags = core.NormalizeTags(rawTags)
			note.CreatedAt = old.CreatedAt
			note.UpdatedAt = time.Now().UTC()
			note.RecalculateCounts()

			// Update URL index if the URL changed
			if old.URL != note.URL {
				if old.URL != "" {
					if err := tx.Delete(makeNoteURLKey(old.URL)); err != nil {
						return err
					}
				}
				if note.URL != "" {
					if err := r.setURLIndex(tx, note.URL, note.Id); err != nil {
						return err
					}
				}
			}

			// Store updated record. The creation-time index is keyed on
			// CreatedAt, which is preserved, so it needs no rewrite.
			if err := tx.Set(key, storage.MarshalNote(note)); err != nil {
				return err
			}

			// Adjust tag usage counts for removed and added tags only, so
			// unchanged tags keep their first-seen display form.
			oldSet := tagSet(old.Tags)
			newSet := tagSet(note.Tags)
			for _, name := range old.Tags {
				if _, kept := newSet[name]; !kept {
					if err := decrementTagCount(tx, name); err != nil {
						return err
					}
				}
			}
			if err := incrementTagCounts(tx, rawTags, oldSet); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return notes, err
}

// DeleteNotes removes notes by their IDs.
func (r *NoteStore) DeleteNotes(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeNoteKey(id)

			// Read note to get metadata for index cleanup
			note, err := r.readNote(tx, key)
			if err != nil {
				return err
			}
			if note == nil {
				return storage.ErrNotFound
			}

			// Delete from creation-time index
			timeKey := makeNoteTimeKey(note.CreatedAt, note.Id)
			if err := tx.Delete(timeKey); err != nil {
				return err
			}

			// Delete from URL index
			if note.URL != "" {
				if err := tx.Delete(makeNoteURLKey(note.URL)); err != nil {
					return err
				}
			}

			// Release tag usage counts
			for _, name := range note.Tags {
				if err := decrementTagCount(tx, name); err != nil {
					return err
				}
			}

			// Drop any stored embedding alongside the note
			if err := tx.Delete(makeEmbeddingKey(id)); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetNote retrieves a single note by ID.
func (r *NoteStore) GetNote(ctx context.Context, id core.ID) (*core.Note, error) {
	var result *core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeNoteKey(id)
		var err error
		result, err = r.readNote(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetNotes retrieves multiple notes by their IDs.
func (r *NoteStore) GetNotes(ctx context.Context, ids ...core.ID) ([]*core.Note, error) {
	var result []*core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeNoteKey(id)
			note, err := r.readNote(tx, key)
			if err != nil {
				return err
			}
			if note != nil {
				result = append(result, note)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetNoteByURL retrieves the note captured from the given source URL.
func (r *NoteStore) GetNoteByURL(ctx context.Context, url string) (*core.Note, error) {
	var result *core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, err := readIndexID(tx, makeNoteURLKey(url))
		if err != nil {
			return err
		}
		if id == "" {
			return storage.ErrNotFound
		}

		result, err = r.readNote(tx, makeNoteKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListNotes retrieves notes according to the given pagination and ordering options.
func (r *NoteStore) ListNotes(ctx context.Context, opts storage.ListOptions) ([]*core.Note, error) {
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, fmt.Errorf("%w: negative limit or offset", storage.ErrInvalidQuery)
	}

	if opts.OrderBy == storage.OrderByCreated {
		return r.listByCreationTime(opts)
	}
	return r.listSorted(opts)
}

// CountNotes returns the number of stored notes.
func (r *NoteStore) CountNotes(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		iterOpts.Prefix = []byte(notePrefix + ":")
		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// listByCreationTime walks the creation-time index so ordering comes from
// the key layout instead of an in-memory sort.
func (r *NoteStore) listByCreationTime(opts storage.ListOptions) ([]*core.Note, error) {
	var results []*core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Reverse = opts.Descending

		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		prefix := []byte(noteTimePrefix + ":")
		startKey := prefix
		if opts.Descending {
			// Seek past the last possible index key so the reverse
			// iterator starts at the newest entry.
			startKey = makePartialNoteTimeKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		}

		skipped := 0
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}
			if skipped < opts.Offset {
				skipped++
				continue
			}
			if opts.Limit > 0 && len(results) >= opts.Limit {
				break
			}

			// Read the ID from the index
			var noteID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				noteID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full record
			note, err := r.readNote(tx, makeNoteKey(noteID))
			if err != nil {
				return err
			}
			if note != nil {
				results = append(results, note)
			}
		}
		return nil
	}, false)

	return results, err
}

// listSorted loads all notes and sorts in memory. Only creation order is
// index-backed; update-time and title orderings are served this way, which
// is fine at this system's scale.
func (r *NoteStore) listSorted(opts storage.ListOptions) ([]*core.Note, error) {
	notes, err := r.scanAllNotes()
	if err != nil {
		return nil, err
	}

	less := func(a, b *core.Note) bool {
		switch opts.OrderBy {
		case storage.OrderByTitle:
			ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if ta != tb {
				return ta < tb
			}
		default: // OrderByUpdated
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		}
		return a.Id < b.Id
	}
	sort.SliceStable(notes, func(i, j int) bool {
		if opts.Descending {
			return less(notes[j], notes[i])
		}
		return less(notes[i], notes[j])
	})

	if opts.Offset >= len(notes) {
		return nil, nil
	}
	notes = notes[opts.Offset:]
	if opts.Limit > 0 && len(notes) > opts.Limit {
		notes = notes[:opts.Limit]
	}
	return notes, nil
}

// scanAllNotes reads every note record.
func (r *NoteStore) scanAllNotes() ([]*core.Note, error) {
	var notes []*core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte(notePrefix + ":")
		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var note *core.Note
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				note, unmarshalErr = storage.UnmarshalNote(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			if note != nil {
				notes = append(notes, note)
			}
		}
		return nil
	}, false)
	return notes, err
}

// Helper methods

// readNote reads a note from the transaction.
// Returns nil, nil when the key is absent.
func (r *NoteStore) readNote(tx *badger.Txn, key []byte) (*core.Note, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var note *core.Note
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		note, unmarshalErr = storage.UnmarshalNote(val)
		return unmarshalErr
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// setURLIndex claims the URL index entry for a note, rejecting URLs already
// owned by a different note.
func (r *NoteStore) setURLIndex(tx *badger.Txn, url string, id core.ID) error {
	urlKey := makeNoteURLKey(url)
	owner, err := readIndexID(tx, urlKey)
	if err != nil {
		return err
	}
	if owner != "" && owner != id {
		return fmt.Errorf("%w: url already captured by note %s", storage.ErrDuplicateKey, owner)
	}
	return tx.Set(urlKey, storage.MarshalID(id))
}

// readIndexID reads an ID value from an index key.
// Returns "" with no error when the key is absent.
func readIndexID(tx *badger.Txn, key []byte) (core.ID, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return "", nil
		}
		return "", err
	}

	var id core.ID
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		id, unmarshalErr = storage.UnmarshalID(val)
		return unmarshalErr
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// tagSet builds a membership set from canonical tag names.
func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, name := range tags {
		set[name] = struct{}{}
	}
	return set
}

// incrementTagCounts bumps usage counts for the canonical forms of rawTags,
// skipping names in the skip set and duplicates within rawTags. Raw forms
// supply the display name for tags seen for the first time.
func incrementTagCounts(tx *badger.Txn, rawTags []string, skip map[string]struct{}) error {
	seen := make(map[string]struct{}, len(rawTags))
	for _, raw := range rawTags {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, skipped := skip[name]; skipped {
			continue
		}

		tag, err := readTag(tx, makeTagKey(name))
		if err != nil {
			return err
		}
		if tag == nil {
			tag = &core.Tag{Name: name, DisplayName: strings.TrimSpace(raw)}
		}
		tag.Count++
		if err := tx.Set(makeTagKey(name), storage.MarshalTag(tag)); err != nil {
			return err
		}
	}
	return nil
}

// decrementTagCount lowers the usage count for a tag, removing the tag
// record once no notes carry it.
func decrementTagCount(tx *badger.Txn, name string) error {
	tag, err := readTag(tx, makeTagKey(name))
	if err != nil {
		return err
	}
	if tag == nil {
		return nil
	}

	tag.Count--
	if tag.Count <= 0 {
		return tx.Delete(makeTagKey(name))
	}
	return tx.Set(makeTagKey(name), storage.MarshalTag(tag))
}
