package ai

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Gate wraps an Embedder and ensures the backing model is loaded before the
// first real request goes through. Local inference servers load the model
// lazily on first use, so an unguarded burst of initial requests would each
// trigger a load. The gate runs a single probe inference instead: concurrent
// first callers share one in-flight load, and after a failed load the next
// caller retries it.
type Gate struct {
	inner  Embedder
	load   func(ctx context.Context) error
	group  singleflight.Group
	loaded atomic.Bool
	logger *slog.Logger
}

var _ Embedder = (*Gate)(nil)

// NewGate creates a gate around inner. If load is nil, a default probe that
// embeds a short fixed string is used.
func NewGate(inner Embedder, load func(ctx context.Context) error) *Gate {
	g := &Gate{
		inner:  inner,
		load:   load,
		logger: slog.Default().With("component", "embedding-gate"),
	}
	if g.load == nil {
		g.load = func(ctx context.Context) error {
			_, err := inner.EmbedText(ctx, "warmup")
			return err
		}
	}
	return g
}

// Loaded reports whether the model load has completed successfully.
func (g *Gate) Loaded() bool {
	return g.loaded.Load()
}

// EmbedText ensures the model is loaded, then delegates to the inner embedder.
func (g *Gate) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := g.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return g.inner.EmbedText(ctx, text)
}

// EmbedTexts ensures the model is loaded, then delegates to the inner embedder.
func (g *Gate) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := g.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return g.inner.EmbedTexts(ctx, texts)
}

func (g *Gate) ensureLoaded(ctx context.Context) error {
	if g.loaded.Load() {
		return nil
	}

	// The leader's context drives the shared load. Followers that arrive
	// while a load is in flight receive its outcome; a canceled leader
	// therefore fails its followers too, and they retry on their next call.
	_, err, shared := g.group.Do("load", func() (any, error) {
		if g.loaded.Load() {
			return nil, nil
		}
		g.logger.Debug("loading embedding model")
		if err := g.load(ctx); err != nil {
			g.logger.Warn("embedding model load failed", "err", err)
			return nil, err
		}
		g.loaded.Store(true)
		g.logger.Debug("embedding model loaded")
		return nil, nil
	})
	if err != nil && shared {
		g.logger.Debug("shared model load failed", "err", err)
	}
	return err
}
