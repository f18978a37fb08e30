package ai

import (
	"context"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/go-crypt/x/blake2b"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingEmbedder wraps an Embedder with an LRU cache of computed vectors.
// It is meant for query traffic, where the same search text is often embedded
// repeatedly within a session. Entries are keyed by a content hash plus the
// model version, so a model change never serves stale vectors.
type CachingEmbedder struct {
	inner        Embedder
	modelVersion string
	cache        *lru.Cache[string, []float32]
	logger       *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

var _ Embedder = (*CachingEmbedder)(nil)

// NewCachingEmbedder creates a caching wrapper around inner holding up to
// size entries.
func NewCachingEmbedder(inner Embedder, modelVersion string, size int) (*CachingEmbedder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachingEmbedder{
		inner:        inner,
		modelVersion: modelVersion,
		cache:        cache,
		logger:       slog.Default().With("component", "embedding-cache"),
	}, nil
}

// EmbedText returns the cached vector for text if present, otherwise embeds
// through the inner embedder and caches the result. Returned slices are
// copies; callers may mutate them freely.
func (c *CachingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)
	if vector, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return cloneVector(vector), nil
	}

	vector, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	c.misses.Add(1)
	c.cache.Add(key, cloneVector(vector))
	return vector, nil
}

// EmbedTexts embeds a batch, serving individual items from the cache where
// possible and batching only the misses through the inner embedder.
func (c *CachingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vector, ok := c.cache.Get(c.cacheKey(text)); ok {
			c.hits.Add(1)
			results[i] = cloneVector(vector)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return results, nil
	}

	embedded, err := c.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(embedded) != len(missing) {
		c.logger.Warn("embedder returned unexpected batch size",
			"requested", len(missing),
			"returned", len(embedded))
	}
	for i, vector := range embedded {
		if i >= len(missingIdx) {
			break
		}
		c.misses.Add(1)
		c.cache.Add(c.cacheKey(missing[i]), cloneVector(vector))
		results[missingIdx[i]] = vector
	}
	return results, nil
}

// Stats returns cumulative cache hit and miss counts.
func (c *CachingEmbedder) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Purge empties the cache. Used after re-embedding with a new model.
func (c *CachingEmbedder) Purge() {
	c.cache.Purge()
}

func (c *CachingEmbedder) cacheKey(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(c.modelVersion))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
