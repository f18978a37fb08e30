package core

import (
	"encoding/hex"
	"time"
	"unicode/utf8"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is a unique identifier for domain entities.
// It is either randomly generated or derived from a source URL.
type ID string

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// IDFromURL derives a deterministic ID from a source URL using BLAKE2b hashing.
// Capturing the same URL twice converges on the same note record.
func IDFromURL(url string) ID {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(url))
	return ID(hex.EncodeToString(h.Sum(nil)))
}

// Note represents a captured note or bookmark.
// Tags are stored lowercase, trimmed, and unique within the note.
type Note struct {
	Id        ID
	Title     string
	URL       string // Optional source URL; dedup key when present
	Content   string
	Tags      []string
	CreatedAt time.Time // When the note was first persisted
	UpdatedAt time.Time // When the note was last updated
	WordCount int       // Derived from Content on save
	CharCount int       // Derived from Content on save
}

// RecalculateCounts refreshes the derived word and character counts
// from the current Content.
func (n *Note) RecalculateCounts() {
	n.WordCount = CountWords(n.Content)
	n.CharCount = utf8.RuneCountInString(n.Content)
}

// EmbeddingRecord holds the embedding vector computed from a note's content.
// One-to-one with notes: present only when the note had non-empty content at
// its last save. A missing record excludes the note from semantic ranking but
// never fails retrieval.
type EmbeddingRecord struct {
	NoteId       ID
	Vector       []float32
	ModelVersion string    // Model that produced the vector
	ComputedAt   time.Time // When the vector was computed
}

// Tag tracks a tag's canonical name, the display form it was first seen
// with, and how many notes currently carry it.
type Tag struct {
	Name        string // Lowercase canonical key
	DisplayName string
	Count       int
}

// ScoredNote pairs a note with its relevance score for one query.
type ScoredNote struct {
	Note  *Note
	Score float32
}

// Checkpoint records how far a long-running processor has advanced, so an
// interrupted run can resume instead of starting over.
type Checkpoint struct {
	Processor    string // Processor name, e.g. "reembed"
	ModelVersion string // Model version the pass is producing
	Offset       int    // Notes already processed, in listing order
	UpdatedAt    time.Time
}
