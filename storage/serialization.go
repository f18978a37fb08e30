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


package storage

import (
	"fmt"

	"github.com/poiesic/clippings/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return "", fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalNote serializes a Note to bytes.
func MarshalNote(note *core.Note) []byte {
	buf := make([]byte, core.NoteMUS.Size(*note))
	core.NoteMUS.Marshal(*note, buf)
	return buf
}

// UnmarshalNote deserializes a Note from bytes.
func UnmarshalNote(data []byte) (*core.Note, error) {
	note, _, err := core.NoteMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: note: %w", ErrSerializationFailed, err)
	}
	return &note, nil
}

// MarshalEmbeddingRecord serializes an EmbeddingRecord to bytes.
func MarshalEmbeddingRecord(record *core.EmbeddingRecord) []byte {
	buf := make([]byte, core.EmbeddingRecordMUS.Size(*record))
	core.EmbeddingRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalEmbeddingRecord deserializes an EmbeddingRecord from bytes.
func UnmarshalEmbeddingRecord(data []byte) (*core.EmbeddingRecord, error) {
	record, _, err := core.EmbeddingRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding record: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalTag serializes a Tag to bytes.
func MarshalTag(tag *core.Tag) []byte {
	buf := make([]byte, core.TagMUS.Size(*tag))
	core.TagMUS.Marshal(*tag, buf)
	return buf
}

// UnmarshalTag deserializes a Tag from bytes.
func UnmarshalTag(data []byte) (*core.Tag, error) {
	tag, _, err := core.TagMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: tag: %w", ErrSerializationFailed, err)
	}
	return &tag, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: checkpoint: %w", ErrSerializationFailed, err)
	}
	return &checkpoint, nil
}
