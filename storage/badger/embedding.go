package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

// EmbeddingStore implements storage.EmbeddingStore for BadgerDB.
type EmbeddingStore struct {
	backend *Backend
}

var _ storage.EmbeddingStore = (*EmbeddingStore)(nil)

// NewEmbeddingStore creates a new EmbeddingStore over the shared backend.
func NewEmbeddingStore(backend *Backend) (*EmbeddingStore, error) {
	return &EmbeddingStore{
		backend: backend,
	}, nil
}

// Close releases store-level resources. The shared backend is closed by its owner.
func (r *EmbeddingStore) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EmbeddingStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveEmbedding stores an embedding record, replacing any existing record
// for the same note.
func (r *EmbeddingStore) SaveEmbedding(ctx context.Context, record *core.EmbeddingRecord) error {
	if err := core.ValidateEmbeddingRecord(record); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if record.ComputedAt.IsZero() {
			record.ComputedAt = time.Now().UTC()
		}

		key := makeEmbeddingKey(record.NoteId)
		if err := tx.Set(key, storage.MarshalEmbeddingRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEmbedding retrieves the embedding record for a note.
func (r *EmbeddingStore) GetEmbedding(ctx context.Context, id core.ID) (*core.EmbeddingRecord, error) {
	var result *core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalEmbeddingRecord(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// GetAllEmbeddings retrieves every embedding record, keyed by note ID.
func (r *EmbeddingStore) GetAllEmbeddings(ctx context.Context) (map[core.ID]*core.EmbeddingRecord, error) {
	result := make(map[core.ID]*core.EmbeddingRecord)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte(embeddingPrefix + ":")
		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.EmbeddingRecord
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				record, unmarshalErr = storage.UnmarshalEmbeddingRecord(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			if record != nil {
				result[record.NoteId] = record
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteEmbedding removes the embedding record for a note.
// Deleting a missing record is not an error.
func (r *EmbeddingStore) DeleteEmbedding(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeEmbeddingKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// CountEmbeddings returns the number of stored embedding records.
func (r *EmbeddingStore) CountEmbeddings(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		iterOpts.Prefix = []byte(embeddingPrefix + ":")
		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}
