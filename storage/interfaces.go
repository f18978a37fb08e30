package storage

import (
	"context"

	"github.com/poiesic/clippings/core"
)

// NoteOrder selects the ordering for ListNotes.
type NoteOrder int

const (
	// OrderByCreated orders notes by creation time. Served from the
	// creation-time index, so it is the cheapest ordering.
	OrderByCreated NoteOrder = iota
	// OrderByUpdated orders notes by last-update time.
	OrderByUpdated
	// OrderByTitle orders notes lexicographically by title.
	OrderByTitle
)

// ListOptions controls pagination and ordering for note listings.
type ListOptions struct {
	Limit      int // Maximum notes to return; 0 means no limit
	Offset     int // Notes to skip before returning results
	OrderBy    NoteOrder
	Descending bool
}

// Store provides common storage operations shared across all stores.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases store-level resources. The shared backing database
	// is closed separately by its owner.
	Close() error
}

// NoteStore provides operations for managing notes.
type NoteStore interface {
	Store
	// AddNotes adds one or more notes to storage.
	// Sets CreatedAt/UpdatedAt timestamps and derived counts, writes the
	// URL and creation-time indexes, and increments tag usage counts.
	// Returns the notes with timestamps and counts populated.
	AddNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error)

	// UpdateNotes updates existing notes.
	// Preserves CreatedAt, bumps UpdatedAt, recomputes derived counts,
	// and rewrites indexes and tag usage counts to match the new state.
	// Returns ErrNotFound if any note doesn't exist.
	UpdateNotes(ctx context.Context, notes ...*core.Note) ([]*core.Note, error)

	// DeleteNotes removes notes by their IDs, along with their indexes,
	// tag usage counts, and any stored embedding.
	// Returns ErrNotFound if any note doesn't exist.
	DeleteNotes(ctx context.Context, ids ...core.ID) error

	// GetNote retrieves a single note by ID.
	// Returns ErrNotFound if the note doesn't exist.
	GetNote(ctx context.Context, id core.ID) (*core.Note, error)

	// GetNotes retrieves multiple notes by their IDs.
	// Returns only the notes that exist (no error for missing notes).
	GetNotes(ctx context.Context, ids ...core.ID) ([]*core.Note, error)

	// GetNoteByURL retrieves the note captured from the given source URL.
	// Returns ErrNotFound if no note has that URL.
	GetNoteByURL(ctx context.Context, url string) (*core.Note, error)

	// ListNotes retrieves notes according to the given pagination and
	// ordering options.
	ListNotes(ctx context.Context, opts ListOptions) ([]*core.Note, error)

	// CountNotes returns the number of stored notes.
	CountNotes(ctx context.Context) (int, error)
}

// EmbeddingStore provides operations for managing embedding records.
//
// An embedding record exists for a note exactly when that note had non-empty
// content at its last save; the capture path maintains this, the store does
// not enforce it.
type EmbeddingStore interface {
	Store
	// SaveEmbedding stores an embedding record, replacing any existing
	// record for the same note.
	SaveEmbedding(ctx context.Context, record *core.EmbeddingRecord) error

	// GetEmbedding retrieves the embedding record for a note.
	// Returns ErrNotFound if the note has no embedding.
	GetEmbedding(ctx context.Context, id core.ID) (*core.EmbeddingRecord, error)

	// GetAllEmbeddings retrieves every embedding record, keyed by note ID.
	GetAllEmbeddings(ctx context.Context) (map[core.ID]*core.EmbeddingRecord, error)

	// DeleteEmbedding removes the embedding record for a note.
	// Deleting a missing record is not an error.
	DeleteEmbedding(ctx context.Context, id core.ID) error

	// CountEmbeddings returns the number of stored embedding records.
	CountEmbeddings(ctx context.Context) (int, error)
}

// TagStore provides read access to tag records.
// Tag records are maintained by the note write path, not directly.
type TagStore interface {
	Store
	// GetTag retrieves a tag record by its canonical (lowercase) name.
	// Returns ErrNotFound if the tag doesn't exist.
	GetTag(ctx context.Context, name string) (*core.Tag, error)

	// ListTags retrieves all tag records with a non-zero usage count,
	// ordered by usage count descending, then name.
	ListTags(ctx context.Context) ([]*core.Tag, error)
}

// CheckpointStore persists progress markers for long-running processors.
type CheckpointStore interface {
	// SaveCheckpoint persists a checkpoint for a processor.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a processor.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, processor string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for a processor.
	// Deleting a missing checkpoint is not an error.
	DeleteCheckpoint(ctx context.Context, processor string) error
}
