package search

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

// Rough per-entry bookkeeping on top of the raw vector payload: map bucket,
// key string, slice header.
const cacheEntryOverheadBytes = 64

// CacheStats describes the vector cache's current state.
type CacheStats struct {
	// Valid is false when the cache has been invalidated (or never loaded)
	// and the next search will rebuild it.
	Valid bool

	// Size is the number of cached vectors.
	Size int

	// MemoryBytes estimates the cache's memory footprint.
	MemoryBytes int64
}

// VectorCache is an in-memory mirror of all stored embedding vectors, rebuilt
// wholesale from the embedding store on demand. It exists so similarity
// scoring can scan vectors without touching storage per query.
//
// The cache is owned by one Engine. Write paths that add, update, or remove
// embeddings must call Invalidate through an explicit reference to the cache
// or its engine; the next read-dependent operation then rebuilds it. There
// is no incremental update path: full reloads are cheap at this system's
// scale of hundreds to low thousands of notes.
type VectorCache struct {
	store  storage.EmbeddingStore
	logger *slog.Logger

	mu          sync.RWMutex
	vectors     map[core.ID][]float32
	valid       bool
	memoryBytes int64
}

// NewVectorCache creates an empty, invalid cache over store. The first
// EnsureFresh or Refresh populates it.
func NewVectorCache(store storage.EmbeddingStore) *VectorCache {
	return &VectorCache{
		store:  store,
		logger: slog.Default().With("component", "vector-cache"),
	}
}

// Refresh reads every embedding record from the store and replaces the
// in-memory mapping wholesale. On failure the previous contents (and
// validity state) are left untouched.
func (c *VectorCache) Refresh(ctx context.Context) error {
	records, err := c.store.GetAllEmbeddings(ctx)
	if err != nil {
		c.logger.Warn("cache refresh failed", "err", err)
		return err
	}

	vectors := make(map[core.ID][]float32, len(records))
	var bytes int64
	for id, record := range records {
		vectors[id] = record.Vector
		bytes += int64(4*len(record.Vector) + cacheEntryOverheadBytes)
	}

	c.mu.Lock()
	c.vectors = vectors
	c.valid = true
	c.memoryBytes = bytes
	c.mu.Unlock()

	c.logger.Debug("vector cache refreshed", "size", len(vectors))
	return nil
}

// Invalidate marks the cache stale without clearing it. Readers that only
// need a best-effort snapshot may keep using the old contents; operations
// that require freshness rebuild first via EnsureFresh.
func (c *VectorCache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

// EnsureFresh refreshes the cache if it is stale. It reports whether a
// refresh was performed. Concurrent callers may both observe staleness and
// both refresh; the wholesale swap makes that harmless.
func (c *VectorCache) EnsureFresh(ctx context.Context) (bool, error) {
	c.mu.RLock()
	valid := c.valid
	c.mu.RUnlock()
	if valid {
		return false, nil
	}
	if err := c.Refresh(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// WarmUp pre-loads the cache so the user's first search does not pay the
// rebuild cost. Idempotent: a valid cache is left alone.
func (c *VectorCache) WarmUp(ctx context.Context) error {
	_, err := c.EnsureFresh(ctx)
	return err
}

// Stats returns the cache's current state.
func (c *VectorCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Valid:       c.valid,
		Size:        len(c.vectors),
		MemoryBytes: c.memoryBytes,
	}
}

// Snapshot returns the current vector map for scoring. The map is replaced,
// never mutated in place, on refresh, so callers may iterate it without
// holding any lock; they must not modify it.
func (c *VectorCache) Snapshot() map[core.ID][]float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vectors
}
