package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingEmbedder_ServesRepeatsFromCache(t *testing.T) {
	inner := &countingEmbedder{}
	cache, err := NewCachingEmbedder(inner, "v1", 16)
	require.NoError(t, err)

	ctx := context.Background()

	first, err := cache.EmbedText(ctx, "vector databases")
	require.NoError(t, err)

	second, err := cache.EmbedText(ctx, "vector databases")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.textCalls.Load())

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCachingEmbedder_DefensiveCopies(t *testing.T) {
	inner := &countingEmbedder{}
	cache, err := NewCachingEmbedder(inner, "v1", 16)
	require.NoError(t, err)

	ctx := context.Background()

	first, err := cache.EmbedText(ctx, "mutate me")
	require.NoError(t, err)
	first[0] = 99

	second, err := cache.EmbedText(ctx, "mutate me")
	require.NoError(t, err)
	assert.Equal(t, float32(0.1), second[0])
}

func TestCachingEmbedder_BatchPartialHits(t *testing.T) {
	inner := &countingEmbedder{}
	cache, err := NewCachingEmbedder(inner, "v1", 16)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = cache.EmbedText(ctx, "cached")
	require.NoError(t, err)

	vectors, err := cache.EmbedTexts(ctx, []string{"cached", "fresh"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.NotNil(t, vectors[0])
	assert.NotNil(t, vectors[1])

	// Only the miss goes to the inner embedder.
	inner.mu.Lock()
	lastBatch := inner.lastBatch
	inner.mu.Unlock()
	assert.Equal(t, []string{"fresh"}, lastBatch)
}

func TestCachingEmbedder_ErrorNotCached(t *testing.T) {
	inner := &countingEmbedder{}
	cache, err := NewCachingEmbedder(inner, "v1", 16)
	require.NoError(t, err)

	ctx := context.Background()
	innerErr := errors.New("transient failure")

	inner.setErr(innerErr)
	_, err = cache.EmbedText(ctx, "flaky")
	require.ErrorIs(t, err, innerErr)

	inner.setErr(nil)
	vector, err := cache.EmbedText(ctx, "flaky")
	require.NoError(t, err)
	assert.NotEmpty(t, vector)
	assert.Equal(t, int32(2), inner.textCalls.Load())
}

func TestCachingEmbedder_Purge(t *testing.T) {
	inner := &countingEmbedder{}
	cache, err := NewCachingEmbedder(inner, "v1", 16)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = cache.EmbedText(ctx, "text")
	require.NoError(t, err)

	cache.Purge()

	_, err = cache.EmbedText(ctx, "text")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.textCalls.Load())
}
