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

import (
	"fmt"
	"strings"
)

// ValidateNote validates a Note according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - At least one of Title and Content must be non-empty
//
// NOT validated (populated by the store or processors):
//   - Timestamps (set on save)
//   - WordCount/CharCount (derived on save)
//   - Tags (normalized by the capture path, not rejected here)
func ValidateNote(note *Note) error {
	if note == nil {
		return fmt.Errorf("%w: note is nil", ErrInvalidNote)
	}

	if note.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidNote, ErrEmptyID)
	}

	if note.Title == "" && note.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidNote, ErrEmptyNote)
	}

	return nil
}

// ValidateEmbeddingRecord validates an EmbeddingRecord according to domain rules.
//
// Validation rules:
//   - NoteId must not be empty
//   - Vector must not be empty
//   - ModelVersion must not be empty
func ValidateEmbeddingRecord(rec *EmbeddingRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidEmbedding)
	}

	if rec.NoteId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyID)
	}

	if len(rec.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyVector)
	}

	if rec.ModelVersion == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyModelVersion)
	}

	return nil
}

// ValidateTag validates a Tag according to domain rules.
func ValidateTag(tag *Tag) error {
	if tag == nil {
		return fmt.Errorf("%w: tag is nil", ErrInvalidTag)
	}

	if tag.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTag, ErrEmptyTagName)
	}

	return nil
}

// NormalizeTags lowercases and trims tags, drops empties, and removes
// duplicates while preserving first-seen order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}

	if len(normalized) == 0 {
		return nil
	}
	return normalized
}

// CountWords counts whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
