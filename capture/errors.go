package capture

import "errors"

var (
	// ErrNoteStoreRequired is returned when a note store is not provided.
	ErrNoteStoreRequired = errors.New("note store required")

	// ErrEmbeddingStoreRequired is returned when an embedding store is not provided.
	ErrEmbeddingStoreRequired = errors.New("embedding store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyRequest is returned for a capture request with no title,
	// URL, or content.
	ErrEmptyRequest = errors.New("capture request needs a title, url, or content")
)
