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


package search

import "errors"

var (
	// ErrNoteStoreRequired is returned when a note store is not provided.
	ErrNoteStoreRequired = errors.New("note store required")

	// ErrEmbeddingStoreRequired is returned when an embedding store is not provided.
	ErrEmbeddingStoreRequired = errors.New("embedding store required")

	// ErrDimensionMismatch is returned when comparing vectors of unequal length.
	// It indicates stored vectors from a different model version than the query
	// vector and must propagate to the caller rather than being coerced.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
