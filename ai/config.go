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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// SuggesterHost is the base URL for the tag suggestion service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	SuggesterHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string

	// SuggesterModel is the model identifier to use for tag suggestion.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	SuggesterModel string

	// EmbeddingDimensions is the expected vector length produced by
	// EmbeddingModel. Stored vectors and query vectors must agree on this.
	// Default: 384 (all-minilm)
	EmbeddingDimensions int

	// MinConfidence is the minimum confidence score (1-10) for suggested tags.
	// Suggestions with confidence below this threshold are discarded.
	// Default: 6
	MinConfidence int

	// MaxTags caps the number of tags returned per suggestion call.
	// Default: 5
	MaxTags int

	// QueryCacheSize is the number of query embeddings kept in the LRU cache.
	// Default: 512
	QueryCacheSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithSuggesterHost sets the tag suggestion service host URL.
func WithSuggesterHost(host string) ConfigOption {
	return func(c *Config) {
		c.SuggesterHost = host
	}
}

// WithHost sets both embedding and suggester hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.SuggesterHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithSuggesterModel sets the tag suggestion model identifier.
func WithSuggesterModel(model string) ConfigOption {
	return func(c *Config) {
		c.SuggesterModel = model
	}
}

// WithEmbeddingDimensions sets the expected embedding vector length.
func WithEmbeddingDimensions(dim int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingDimensions = dim
	}
}

// WithMinConfidence sets the minimum confidence threshold for tag suggestions.
func WithMinConfidence(min int) ConfigOption {
	return func(c *Config) {
		c.MinConfidence = min
	}
}

// WithMaxTags sets the cap on tags returned per suggestion call.
func WithMaxTags(max int) ConfigOption {
	return func(c *Config) {
		c.MaxTags = max
	}
}

// WithQueryCacheSize sets the query embedding cache capacity.
func WithQueryCacheSize(size int) ConfigOption {
	return func(c *Config) {
		c.QueryCacheSize = size
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and suggester use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:       defaultHost,
		SuggesterHost:       defaultHost,
		EmbeddingModel:      "all-minilm",
		SuggesterModel:      "qwen2.5:3b",
		EmbeddingDimensions: 384,
		MinConfidence:       6,
		MaxTags:             5,
		QueryCacheSize:      512,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithEmbeddingModel("text-embedding-3-small"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.SuggesterHost != "" && !strings.HasSuffix(c.SuggesterHost, "/v1") {
		c.SuggesterHost = strings.TrimSuffix(c.SuggesterHost, "/")
		c.SuggesterHost = c.SuggesterHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.SuggesterHost == "" {
		return errors.New("ai config: SuggesterHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.SuggesterModel == "" {
		return errors.New("ai config: SuggesterModel is required")
	}
	if c.EmbeddingDimensions < 1 {
		return errors.New("ai config: EmbeddingDimensions must be positive")
	}
	if c.MinConfidence < 1 || c.MinConfidence > 10 {
		return errors.New("ai config: MinConfidence must be between 1 and 10")
	}
	if c.MaxTags < 1 {
		return errors.New("ai config: MaxTags must be positive")
	}
	if c.QueryCacheSize < 1 {
		return errors.New("ai config: QueryCacheSize must be positive")
	}
	return nil
}
