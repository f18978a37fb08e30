// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package clippings

import (
	"log/slog"

	"github.com/poiesic/clippings/ai"
	"github.com/poiesic/clippings/ai/openai"
	"github.com/poiesic/clippings/capture"
	"github.com/poiesic/clippings/reembed"
	"github.com/poiesic/clippings/search"
	"github.com/poiesic/clippings/storage"
	"github.com/poiesic/clippings/storage/badger"
)

// Database bundles the badger backend, the stores over it, and the AI
// provider into one handle with factory methods for the higher layers.
type Database struct {
	backend       *badger.Backend
	notes         storage.NoteStore
	embeddings    storage.EmbeddingStore
	tags          storage.TagStore
	checkpoints   storage.CheckpointStore
	provider      ai.Provider
	gate          *ai.Gate
	queryEmbedder *ai.CachingEmbedder
	config        *ai.Config
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig replaces the default AI service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithInMemory keeps all data in memory instead of on disk.
// The path argument to NewDatabase is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger used by the database and everything it creates.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens the note database at filePath and connects the AI
// services. The embedder is wrapped in a load gate, so concurrent first
// requests trigger a single model load, and query embeddings go through
// an LRU cache keyed by model version.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	notes, err := badger.NewNoteStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embeddings, err := badger.NewEmbeddingStore(backend)
	if err != nil {
		notes.Close()
		backend.Close()
		return nil, err
	}

	tags, err := badger.NewTagStore(backend)
	if err != nil {
		embeddings.Close()
		notes.Close()
		backend.Close()
		return nil, err
	}

	checkpoints := badger.NewCheckpointStore(backend)

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		tags.Close()
		embeddings.Close()
		notes.Close()
		backend.Close()
		return nil, err
	}

	gate := ai.NewGate(provider.Embedder(), nil)
	queryEmbedder, err := ai.NewCachingEmbedder(gate, options.aiConfig.EmbeddingModel, options.aiConfig.QueryCacheSize)
	if err != nil {
		provider.Close()
		tags.Close()
		embeddings.Close()
		notes.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:       backend,
		notes:         notes,
		embeddings:    embeddings,
		tags:          tags,
		checkpoints:   checkpoints,
		provider:      provider,
		gate:          gate,
		queryEmbedder: queryEmbedder,
		config:        options.aiConfig,
		logger:        options.logger,
	}, nil
}

// Close releases the AI provider, the stores, and the backing database.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.tags.Close(); err != nil {
		db.logger.Error("error closing tag store", "err", err)
		return err
	}
	if err := db.embeddings.Close(); err != nil {
		db.logger.Error("error closing embedding store", "err", err)
		return err
	}
	if err := db.notes.Close(); err != nil {
		db.logger.Error("error closing note store", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// NoteStore returns the note store.
func (db *Database) NoteStore() storage.NoteStore {
	return db.notes
}

// EmbeddingStore returns the embedding store.
func (db *Database) EmbeddingStore() storage.EmbeddingStore {
	return db.embeddings
}

// TagStore returns the tag store.
func (db *Database) TagStore() storage.TagStore {
	return db.tags
}

// CheckpointStore returns the checkpoint store.
func (db *Database) CheckpointStore() storage.CheckpointStore {
	return db.checkpoints
}

// Provider returns the AI provider.
func (db *Database) Provider() ai.Provider {
	return db.provider
}

// QueryCacheStats reports cumulative hit and miss counts for the query
// embedding cache.
func (db *Database) QueryCacheStats() (hits, misses int64) {
	return db.queryEmbedder.Stats()
}

// NewSearchEngine creates a search engine over this database. The engine
// embeds query text through the shared gated, cached embedder.
func (db *Database) NewSearchEngine(opts ...search.Option) (*search.Engine, error) {
	base := []search.Option{
		search.WithEmbedder(db.queryEmbedder),
		search.WithLogger(db.logger),
	}
	return search.New(db.notes, db.embeddings, append(base, opts...)...)
}

// NewCapturePipeline creates a capture pipeline over this database.
// When engine is non-nil its vector cache is invalidated after every
// embedding mutation, so searches see new captures without a restart.
func (db *Database) NewCapturePipeline(engine *search.Engine, opts ...capture.Option) (*capture.Pipeline, error) {
	base := []capture.Option{
		capture.WithModelVersion(db.config.EmbeddingModel),
		capture.WithLogger(db.logger),
	}
	if engine != nil {
		base = append(base, capture.WithInvalidator(engine))
	}
	provider := &gatedProvider{Provider: db.provider, embedder: db.gate}
	return capture.NewPipeline(db.notes, db.embeddings, provider, append(base, opts...)...)
}

// NewReembedder creates a re-embedding run targeting this database's
// configured embedding model. Checkpointing is wired in, so interrupted
// runs resume where they stopped.
func (db *Database) NewReembedder(opts ...reembed.Option) (*reembed.Reembedder, error) {
	base := []reembed.Option{
		reembed.WithCheckpoints(db.checkpoints),
		reembed.WithLogger(db.logger),
	}
	return reembed.NewReembedder(db.notes, db.embeddings, db.gate, db.config.EmbeddingModel, append(base, opts...)...)
}

// gatedProvider serves the shared load-gated embedder in place of the
// provider's raw one, so every embedding path funnels through one gate.
type gatedProvider struct {
	ai.Provider
	embedder ai.Embedder
}

func (p *gatedProvider) Embedder() ai.Embedder {
	return p.embedder
}
