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


// Package search provides semantic, keyword, tag, and hybrid search over
// captured notes.
//
// The Engine type owns an in-memory vector cache of note embeddings and
// offers several ranking paths:
//   - Search scores a query vector against every cached embedding by
//     cosine similarity.
//   - KeywordSearch and TagSearch match lexically, with no model needed.
//   - HybridSearch merges the semantic and keyword signals into one
//     ranked list, weighting and positionally boosting each side.
//   - FindSimilar ranks notes near an existing note's embedding.
//
// Query is the front door: it parses raw query text (recognizing the
// "tag:" prefix), embeds it when an embedder is available, and degrades
// to keyword-only matching with a caller-visible notice when it is not.
// The cache refreshes lazily on first use after construction or
// invalidation; note mutations must invalidate it through the owning
// engine for searches to observe them.
package search
