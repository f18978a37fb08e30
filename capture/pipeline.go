package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/clippings/ai"
	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

// Pipeline orchestrates note capture: synchronous persistence with URL
// deduplication, then asynchronous enrichment (embedding generation and
// optional tag suggestion) on a worker pool.
type Pipeline struct {
	notes         storage.NoteStore
	embeddings    storage.EmbeddingStore
	pool          *ants.Pool
	embeddingProc processor
	tagProc       processor
	invalidator   Invalidator
	autoTag       bool
	modelVersion  string
	wg            sync.WaitGroup
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for async enrichment.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithInvalidator sets the search cache to invalidate after embedding
// writes. Without one, searches keep serving the stale cache until
// something else invalidates it.
func WithInvalidator(invalidator Invalidator) Option {
	return func(p *Pipeline) error {
		p.invalidator = invalidator
		return nil
	}
}

// WithAutoTag enables tag suggestion for notes captured without tags.
func WithAutoTag(enabled bool) Option {
	return func(p *Pipeline) error {
		p.autoTag = enabled
		return nil
	}
}

// WithModelVersion sets the model version stamped on embedding records.
// Default matches the default embedding model.
func WithModelVersion(version string) Option {
	return func(p *Pipeline) error {
		if version != "" {
			p.modelVersion = version
		}
		return nil
	}
}

// NewPipeline creates a new capture pipeline.
func NewPipeline(
	notes storage.NoteStore,
	embeddings storage.EmbeddingStore,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if notes == nil {
		return nil, ErrNoteStoreRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		notes:        notes,
		embeddings:   embeddings,
		pool:         pool,
		modelVersion: ai.DefaultConfig().EmbeddingModel,
		logger:       slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create processors after options are applied (so they get final config)
	embeddingProc, err := newEmbeddingProcessor(notes, embeddings,
		provider.Embedder(), p.modelVersion, p.invalidator, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	tagProc, err := newTagProcessor(notes, provider.TagSuggester(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.embeddingProc = embeddingProc
	p.tagProc = tagProc

	return p, nil
}

// Request describes one note to capture.
type Request struct {
	Title   string
	URL     string
	Content string
	Tags    []string
}

func (r Request) empty() bool {
	return r.Title == "" && r.URL == "" && r.Content == ""
}

// Capture persists the requested notes and queues async enrichment.
//
// A request whose URL already belongs to a stored note updates that note
// in place: title, content, and tags are replaced while the id and
// CreatedAt survive, so re-capturing a URL converges on one record. New
// URL-keyed notes get a deterministic id derived from the URL; notes
// without a URL get a random one.
//
// Enrichment failures are logged, never returned: a note whose embedding
// failed still exists and is reachable through keyword search.
func (p *Pipeline) Capture(ctx context.Context, requests ...Request) ([]*core.Note, error) {
	for i, req := range requests {
		if req.empty() {
			return nil, fmt.Errorf("request %d: %w", i, ErrEmptyRequest)
		}
	}

	captured := make([]*core.Note, 0, len(requests))
	for i, req := range requests {
		note, err := p.persist(ctx, req)
		if err != nil {
			return captured, fmt.Errorf("request %d: %w", i, err)
		}
		captured = append(captured, note)
	}

	if len(captured) == 0 {
		return captured, nil
	}

	// Extract IDs for async processing
	ids := make([]core.ID, len(captured))
	untagged := make([]core.ID, 0, len(captured))
	for i, note := range captured {
		ids[i] = note.Id
		if len(note.Tags) == 0 {
			untagged = append(untagged, note.Id)
		}
	}

	p.submit(func() {
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "err", err)
		}
	})

	if p.autoTag && len(untagged) > 0 {
		p.submit(func() {
			if err := p.tagProc.process(context.Background(), untagged...); err != nil {
				p.logger.Error("error processing tag suggestions", "err", err)
			}
		})
	}

	return captured, nil
}

// persist stores one request, either as a fresh note or as an update of
// the note already holding its URL.
func (p *Pipeline) persist(ctx context.Context, req Request) (*core.Note, error) {
	if req.URL != "" {
		existing, err := p.notes.GetNoteByURL(ctx, req.URL)
		switch {
		case err == nil:
			existing.Title = req.Title
			existing.Content = req.Content
			existing.Tags = req.Tags
			updated, updateErr := p.notes.UpdateNotes(ctx, existing)
			if updateErr != nil {
				return nil, updateErr
			}
			return updated[0], nil
		case !errors.Is(err, storage.ErrNotFound):
			return nil, err
		}
	}

	note := &core.Note{
		Id:      core.NewID(),
		Title:   req.Title,
		URL:     req.URL,
		Content: req.Content,
		Tags:    req.Tags,
	}
	if req.URL != "" {
		note.Id = core.IDFromURL(req.URL)
	}

	added, err := p.notes.AddNotes(ctx, note)
	if err != nil {
		return nil, err
	}
	return added[0], nil
}

// submit queues fn on the pool, tracking it for Wait. If the pool rejects
// the task it runs inline; enrichment must not be lost.
func (p *Pipeline) submit(fn func()) {
	p.wg.Add(1)
	wrapped := func() {
		defer p.wg.Done()
		fn()
	}
	if err := p.pool.Submit(wrapped); err != nil {
		p.logger.Warn("worker pool rejected task, running inline", "err", err)
		wrapped()
	}
}

// Wait blocks until all queued enrichment work has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Release frees the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
