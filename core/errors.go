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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidNote indicates a Note failed validation.
	ErrInvalidNote = errors.New("invalid note")

	// ErrInvalidEmbedding indicates an EmbeddingRecord failed validation.
	ErrInvalidEmbedding = errors.New("invalid embedding record")

	// ErrInvalidTag indicates a Tag failed validation.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrEmptyID indicates a record identifier is missing.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyNote indicates a note has neither title nor content.
	ErrEmptyNote = errors.New("note must have a title or content")

	// ErrEmptyVector indicates an embedding record has no vector.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrEmptyModelVersion indicates an embedding record lacks a model version.
	ErrEmptyModelVersion = errors.New("model version cannot be empty")

	// ErrEmptyTagName indicates a tag record has no canonical name.
	ErrEmptyTagName = errors.New("tag name cannot be empty")
)
