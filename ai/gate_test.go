package ai

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder is a minimal in-package stub. The ai/mock package cannot
// be used here because it imports ai.
type countingEmbedder struct {
	textCalls  atomic.Int32
	batchCalls atomic.Int32

	mu        sync.Mutex
	lastBatch []string
	err       error
}

func (s *countingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	s.textCalls.Add(1)
	s.mu.Lock()
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (s *countingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	s.batchCalls.Add(1)
	s.mu.Lock()
	s.lastBatch = append([]string(nil), texts...)
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (s *countingEmbedder) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func TestGate_LoadsOnce(t *testing.T) {
	inner := &countingEmbedder{}
	var loads atomic.Int32
	gate := NewGate(inner, func(ctx context.Context) error {
		loads.Add(1)
		return nil
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := gate.EmbedText(ctx, "hello")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, int32(3), inner.textCalls.Load())
	assert.True(t, gate.Loaded())
}

func TestGate_RetriesAfterFailedLoad(t *testing.T) {
	inner := &countingEmbedder{}
	var loads atomic.Int32
	loadErr := errors.New("model not ready")
	gate := NewGate(inner, func(ctx context.Context) error {
		if loads.Add(1) == 1 {
			return loadErr
		}
		return nil
	})

	ctx := context.Background()

	_, err := gate.EmbedText(ctx, "hello")
	require.ErrorIs(t, err, loadErr)
	assert.False(t, gate.Loaded())
	assert.Equal(t, int32(0), inner.textCalls.Load())

	_, err = gate.EmbedText(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, gate.Loaded())
	assert.Equal(t, int32(2), loads.Load())
}

func TestGate_ConcurrentCallersShareLoad(t *testing.T) {
	inner := &countingEmbedder{}
	var loads atomic.Int32
	gate := NewGate(inner, func(ctx context.Context) error {
		loads.Add(1)
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gate.EmbedText(ctx, "hello")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, int32(8), inner.textCalls.Load())
}

func TestGate_DefaultProbe(t *testing.T) {
	inner := &countingEmbedder{}
	gate := NewGate(inner, nil)

	_, err := gate.EmbedText(context.Background(), "hello")
	require.NoError(t, err)

	// One probe call plus the actual request.
	assert.Equal(t, int32(2), inner.textCalls.Load())
	assert.True(t, gate.Loaded())
}

func TestGate_EmbedTexts(t *testing.T) {
	inner := &countingEmbedder{}
	var loads atomic.Int32
	gate := NewGate(inner, func(ctx context.Context) error {
		loads.Add(1)
		return nil
	})

	vectors, err := gate.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, int32(1), inner.batchCalls.Load())
}
