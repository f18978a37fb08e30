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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted record types. Written by hand against
// mus-go's primitive serializers; field order below is the wire format, so
// reordering fields breaks existing databases. Timestamps travel as Unix
// microseconds, vectors as fixed-width float32s.
var (
	IDMUS              = idMUS{}
	NoteMUS            = noteMUS{}
	EmbeddingRecordMUS = embeddingRecordMUS{}
	TagMUS             = tagMUS{}
	CheckpointMUS      = checkpointMUS{}

	stringSliceMUS = ord.NewSliceSer[string](ord.String)
	vectorMUS      = ord.NewSliceSer[float32](raw.Float32)
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	s, n, err := ord.String.Unmarshal(bs)
	return ID(s), n, err
}

func (idMUS) Size(v ID) (size int) {
	return ord.String.Size(string(v))
}

type noteMUS struct{}

func (noteMUS) Marshal(v Note, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += stringSliceMUS.Marshal(v.Tags, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	n += varint.Int.Marshal(v.WordCount, bs[n:])
	n += varint.Int.Marshal(v.CharCount, bs[n:])
	return
}

func (noteMUS) Unmarshal(bs []byte) (v Note, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.URL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Tags, n1, err = stringSliceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.WordCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CharCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return
}

func (noteMUS) Size(v Note) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.URL)
	size += ord.String.Size(v.Content)
	size += stringSliceMUS.Size(v.Tags)
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.UpdatedAt)
	size += varint.Int.Size(v.WordCount)
	size += varint.Int.Size(v.CharCount)
	return
}

type embeddingRecordMUS struct{}

func (embeddingRecordMUS) Marshal(v EmbeddingRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.NoteId, bs)
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += ord.String.Marshal(v.ModelVersion, bs[n:])
	n += marshalTime(v.ComputedAt, bs[n:])
	return
}

func (embeddingRecordMUS) Unmarshal(bs []byte) (v EmbeddingRecord, n int, err error) {
	var n1 int
	v.NoteId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ModelVersion, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ComputedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (embeddingRecordMUS) Size(v EmbeddingRecord) (size int) {
	size = IDMUS.Size(v.NoteId)
	size += vectorMUS.Size(v.Vector)
	size += ord.String.Size(v.ModelVersion)
	size += sizeTime(v.ComputedAt)
	return
}

type tagMUS struct{}

func (tagMUS) Marshal(v Tag, bs []byte) (n int) {
	n = ord.String.Marshal(v.Name, bs)
	n += ord.String.Marshal(v.DisplayName, bs[n:])
	n += varint.Int.Marshal(v.Count, bs[n:])
	return
}

func (tagMUS) Unmarshal(bs []byte) (v Tag, n int, err error) {
	var n1 int
	v.Name, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.DisplayName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return
}

func (tagMUS) Size(v Tag) (size int) {
	size = ord.String.Size(v.Name)
	size += ord.String.Size(v.DisplayName)
	size += varint.Int.Size(v.Count)
	return
}

type checkpointMUS struct{}

func (checkpointMUS) Marshal(v Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(v.Processor, bs)
	n += ord.String.Marshal(v.ModelVersion, bs[n:])
	n += varint.Int.Marshal(v.Offset, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return
}

func (checkpointMUS) Unmarshal(bs []byte) (v Checkpoint, n int, err error) {
	var n1 int
	v.Processor, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.ModelVersion, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Offset, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (checkpointMUS) Size(v Checkpoint) (size int) {
	size = ord.String.Size(v.Processor)
	size += ord.String.Size(v.ModelVersion)
	size += varint.Int.Size(v.Offset)
	size += sizeTime(v.UpdatedAt)
	return
}

func marshalTime(t time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) (size int) {
	return varint.Int64.Size(t.UnixMicro())
}
