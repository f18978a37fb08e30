package core

import (
	"testing"
	"time"
)

func TestNoteMUS_RoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 26, 53, 589000, time.UTC)
	note := Note{
		Id:        IDFromURL("https://example.com/reading"),
		Title:     "Reading list",
		URL:       "https://example.com/reading",
		Content:   "A long list of things to read about embedded databases.",
		Tags:      []string{"reading", "databases"},
		CreatedAt: created,
		UpdatedAt: created.Add(42 * time.Minute),
		WordCount: 10,
		CharCount: 55,
	}

	bs := make([]byte, NoteMUS.Size(note))
	n := NoteMUS.Marshal(note, bs)
	if n != len(bs) {
		t.Fatalf("Marshal wrote %d bytes, Size predicted %d", n, len(bs))
	}

	got, n, err := NoteMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if n != len(bs) {
		t.Errorf("Unmarshal consumed %d bytes, want %d", n, len(bs))
	}

	if got.Id != note.Id || got.Title != note.Title || got.URL != note.URL || got.Content != note.Content {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, note)
	}
	if len(got.Tags) != len(note.Tags) {
		t.Fatalf("Tags length = %d, want %d", len(got.Tags), len(note.Tags))
	}
	for i := range note.Tags {
		if got.Tags[i] != note.Tags[i] {
			t.Errorf("Tags[%d] = %q, want %q", i, got.Tags[i], note.Tags[i])
		}
	}
	if !got.CreatedAt.Equal(note.CreatedAt) || !got.UpdatedAt.Equal(note.UpdatedAt) {
		t.Errorf("timestamps drifted: got %v/%v, want %v/%v",
			got.CreatedAt, got.UpdatedAt, note.CreatedAt, note.UpdatedAt)
	}
	if got.WordCount != note.WordCount || got.CharCount != note.CharCount {
		t.Errorf("counts drifted: got %d/%d, want %d/%d",
			got.WordCount, got.CharCount, note.WordCount, note.CharCount)
	}
}

func TestNoteMUS_ZeroValue(t *testing.T) {
	var note Note

	bs := make([]byte, NoteMUS.Size(note))
	NoteMUS.Marshal(note, bs)

	got, _, err := NoteMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Id != "" || got.Title != "" || got.Content != "" {
		t.Errorf("zero note round trip produced non-zero fields: %+v", got)
	}
	if len(got.Tags) != 0 {
		t.Errorf("zero note round trip produced tags: %v", got.Tags)
	}
}

func TestEmbeddingRecordMUS_RoundTrip(t *testing.T) {
	rec := EmbeddingRecord{
		NoteId:       NewID(),
		Vector:       []float32{0.25, -0.5, 0.125, 1},
		ModelVersion: "embeddinggemma",
		ComputedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	bs := make([]byte, EmbeddingRecordMUS.Size(rec))
	n := EmbeddingRecordMUS.Marshal(rec, bs)
	if n != len(bs) {
		t.Fatalf("Marshal wrote %d bytes, Size predicted %d", n, len(bs))
	}

	got, _, err := EmbeddingRecordMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got.NoteId != rec.NoteId || got.ModelVersion != rec.ModelVersion {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, rec)
	}
	if len(got.Vector) != len(rec.Vector) {
		t.Fatalf("Vector length = %d, want %d", len(got.Vector), len(rec.Vector))
	}
	for i := range rec.Vector {
		if got.Vector[i] != rec.Vector[i] {
			t.Errorf("Vector[%d] = %v, want %v", i, got.Vector[i], rec.Vector[i])
		}
	}
	if !got.ComputedAt.Equal(rec.ComputedAt) {
		t.Errorf("ComputedAt = %v, want %v", got.ComputedAt, rec.ComputedAt)
	}
}

func TestTagMUS_RoundTrip(t *testing.T) {
	tag := Tag{Name: "machine-learning", DisplayName: "Machine-Learning", Count: 17}

	bs := make([]byte, TagMUS.Size(tag))
	TagMUS.Marshal(tag, bs)

	got, _, err := TagMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got != tag {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, tag)
	}
}

func TestMUS_UnmarshalTruncated(t *testing.T) {
	note := Note{Id: "abc", Title: "truncated"}

	bs := make([]byte, NoteMUS.Size(note))
	NoteMUS.Marshal(note, bs)

	_, _, err := NoteMUS.Unmarshal(bs[:2])
	if err == nil {
		t.Errorf("Unmarshal of truncated buffer succeeded, want error")
	}
}
