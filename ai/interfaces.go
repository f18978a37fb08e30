package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error wrapping ErrUnavailable if the embedding service
	// cannot be reached.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TagSuggester proposes tags for a captured note based on its text.
// Implementations must be thread-safe for concurrent use.
type TagSuggester interface {
	// SuggestTags analyzes a note's title and content and returns suggested
	// tag names, most relevant first. Tags are lowercase and deduplicated.
	// Returns an empty slice if nothing useful can be suggested.
	SuggestTags(ctx context.Context, title, content string) ([]string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and TagSuggester instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// TagSuggester returns the tag suggestion service.
	// The returned TagSuggester is safe for concurrent use.
	TagSuggester() TagSuggester

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
