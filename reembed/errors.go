package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrModelVersionRequired is returned when no target model version is given.
	ErrModelVersionRequired = errors.New("model version required")

	// ErrNoteStoreRequired is returned when a note store is not provided.
	ErrNoteStoreRequired = errors.New("note store required")

	// ErrEmbeddingStoreRequired is returned when an embedding store is not provided.
	ErrEmbeddingStoreRequired = errors.New("embedding store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
