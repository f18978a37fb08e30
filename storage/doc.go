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


// Package storage provides the storage abstraction layer for clippings.
//
// This package defines store interfaces that decouple storage implementation
// from business logic. It allows for different storage backends (BadgerDB,
// in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple storage backend
// implementations:
//
//	notes, err := badger.NewNoteStore(backend)  // returns storage.NoteStore interface
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to BadgerDB specifics
//   - Swappability: Easy to add alternative backends (SQLite, in-memory, etc.)
//   - Testing: Consumers can use mock implementations without modification
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Store: common transaction and lifecycle operations
//   - NoteStore: operations for note records, their secondary indexes, and
//     tag usage counts
//   - EmbeddingStore: operations for embedding records
//   - TagStore: read access to tag records
//   - CheckpointStore: progress markers for long-running processors
//
// # Usage
//
// Create stores over a shared backend:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	notes, err := badger.NewNoteStore(backend)
//
// Use in tests with in-memory storage:
//
//	notes, embeddings, tags, backend, err := badger.NewMemoryStores()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All store implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All store methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific
// timeout requirements.
package storage
