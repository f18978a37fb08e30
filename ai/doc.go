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


// Package ai provides abstractions for AI services used in Clippings.
//
// This package defines interfaces for AI operations including text embeddings
// and tag suggestion. It follows the dependency inversion principle, allowing
// the core domain and business logic to depend on abstractions rather than
// concrete implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - TagSuggester: Proposes tags for captured notes
//   - Provider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Decorators
//
// Two Embedder decorators live in this package and compose around any
// implementation:
//
//   - Gate: shares a single model-load probe between concurrent first
//     callers, so a cold local inference server is warmed exactly once
//   - CachingEmbedder: LRU cache of query vectors keyed by content hash
//     and model version
//
// The intended stacking for the query path is cache outside gate, so a
// cache hit never touches the model at all:
//
//	embedder, err := ai.NewCachingEmbedder(
//	    ai.NewGate(provider.Embedder(), nil),
//	    cfg.EmbeddingModel,
//	    cfg.QueryCacheSize,
//	)
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.Provider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockTagSuggester)
// return CONCRETE types to enable test assertions and behavior injection via
// the mock's public fields and methods (CallCount, function fields, Reset).
//
// # Unavailability
//
// Errors from an unreachable service are wrapped with ErrUnavailable. The
// search query path checks for it with errors.Is and degrades to keyword
// matching instead of surfacing a failure to the user.
//
// # Usage Example
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "vector databases in go")
//	tags, err := provider.TagSuggester().SuggestTags(ctx, "Badger internals", articleText)
package ai
