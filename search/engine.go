package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/clippings/ai"
	"github.com/poiesic/clippings/storage"
)

// DefaultLimit is the result count used when a caller passes no limit.
const DefaultLimit = 20

// defaultKeywordScanLimit bounds how many notes the lexical paths scan.
// Collections larger than this get partial keyword coverage; semantic search
// still covers everything because the vector cache holds all embeddings.
const defaultKeywordScanLimit = 1000

// Engine provides semantic, keyword, tag, and hybrid search over notes.
// It owns the vector cache; all scoring reads go through it.
type Engine struct {
	notes      storage.NoteStore
	embeddings storage.EmbeddingStore
	embedder   ai.Embedder
	cache      *VectorCache
	weights    Weights
	monitor    Monitor
	scanLimit  int
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithEmbedder sets the embedder used by Query to vectorize raw query text.
// Without one, every non-tag query takes the keyword-only path.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(e *Engine) error {
		e.embedder = embedder
		return nil
	}
}

// WithWeights replaces the default ranking weights.
func WithWeights(weights Weights) Option {
	return func(e *Engine) error {
		e.weights = weights
		return nil
	}
}

// WithMonitor sets a monitor receiving query lifecycle callbacks.
// Default is a no-op monitor.
func WithMonitor(monitor Monitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithKeywordScanLimit overrides the bounded note scan used by the keyword
// and tag paths.
func WithKeywordScanLimit(limit int) Option {
	return func(e *Engine) error {
		if limit > 0 {
			e.scanLimit = limit
		}
		return nil
	}
}

// New creates a search engine over the given stores.
func New(notes storage.NoteStore, embeddings storage.EmbeddingStore, opts ...Option) (*Engine, error) {
	if notes == nil {
		return nil, ErrNoteStoreRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingStoreRequired
	}

	e := &Engine{
		notes:      notes,
		embeddings: embeddings,
		cache:      NewVectorCache(embeddings),
		weights:    DefaultWeights(),
		monitor:    &noopMonitor{},
		scanLimit:  defaultKeywordScanLimit,
		logger:     slog.Default().With("component", "search"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Cache returns the engine's vector cache.
func (e *Engine) Cache() *VectorCache {
	return e.cache
}

// InvalidateCache marks the vector cache stale. Any write path that adds,
// updates, or deletes an embedding must call this.
func (e *Engine) InvalidateCache() {
	e.cache.Invalidate()
}

// WarmUp pre-loads the vector cache so the first search is fast.
func (e *Engine) WarmUp(ctx context.Context) error {
	return e.cache.WarmUp(ctx)
}

// CacheStats reports the vector cache's current state.
func (e *Engine) CacheStats() CacheStats {
	return e.cache.Stats()
}

// ensureFreshCache rebuilds the cache when stale and notifies the monitor.
func (e *Engine) ensureFreshCache(ctx context.Context) error {
	refreshed, err := e.cache.EnsureFresh(ctx)
	if err != nil {
		return err
	}
	if refreshed {
		e.monitor.CacheRefreshed(e.cache.Stats().Size)
	}
	return nil
}
