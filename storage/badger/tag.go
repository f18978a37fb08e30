package badger

import (
	"context"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

// TagStore implements storage.TagStore for BadgerDB.
// Tag records themselves are written by the note store's tag-count
// maintenance; this store only reads them.
type TagStore struct {
	backend *Backend
}

var _ storage.TagStore = (*TagStore)(nil)

// NewTagStore creates a new TagStore over the shared backend.
func NewTagStore(backend *Backend) (*TagStore, error) {
	return &TagStore{
		backend: backend,
	}, nil
}

// Close releases store-level resources. The shared backend is closed by its owner.
func (r *TagStore) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *TagStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// GetTag retrieves a tag record by its canonical (lowercase) name.
func (r *TagStore) GetTag(ctx context.Context, name string) (*core.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	var result *core.Tag
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readTag(tx, makeTagKey(name))
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

// ListTags retrieves all tag records, ordered by usage count descending,
// then name.
func (r *TagStore) ListTags(ctx context.Context) ([]*core.Tag, error) {
	var tags []*core.Tag
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte(tagPrefix + ":")
		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var tag *core.Tag
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				tag, unmarshalErr = storage.UnmarshalTag(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			if tag != nil && tag.Count > 0 {
				tags = append(tags, tag)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})
	return tags, nil
}

// readTag reads a tag record from the transaction.
// Returns nil, nil when the key is absent.
func readTag(tx *badger.Txn, key []byte) (*core.Tag, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var tag *core.Tag
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		tag, unmarshalErr = storage.UnmarshalTag(val)
		return unmarshalErr
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}
