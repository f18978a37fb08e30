package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

func TestNoteBasics(t *testing.T) {
	notes, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	note := &core.Note{
		Title:   "Vector search in Go",
		Content: "Cosine similarity over a cached embedding map.",
		Tags:    []string{" Go ", "Search", "go"},
	}

	added, err := notes.AddNotes(ctx, note)
	if err != nil {
		t.Fatalf("Failed to add note: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 note, got %d", len(added))
	}
	if added[0].Id == "" {
		t.Fatal("Expected generated ID")
	}
	if added[0].CreatedAt.IsZero() || added[0].UpdatedAt.IsZero() {
		t.Fatal("Expected timestamps to be set")
	}
	if added[0].WordCount != 7 {
		t.Errorf("WordCount = %d, want 7", added[0].WordCount)
	}

	retrieved, err := notes.GetNote(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get note: %v", err)
	}
	if retrieved.Title != "Vector search in Go" {
		t.Errorf("Title = %q", retrieved.Title)
	}
	wantTags := []string{"go", "search"}
	if len(retrieved.Tags) != len(wantTags) {
		t.Fatalf("Tags = %v, want %v", retrieved.Tags, wantTags)
	}
	for i := range wantTags {
		if retrieved.Tags[i] != wantTags[i] {
			t.Errorf("Tags[%d] = %q, want %q", i, retrieved.Tags[i], wantTags[i])
		}
	}
}

func TestAddNotes_KeepsCallerID(t *testing.T) {
	notes, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	id := core.IDFromURL("https://example.com/post")

	_, err = notes.AddNotes(ctx, &core.Note{
		Id:    id,
		Title: "Linked post",
		URL:   "https://example.com/post",
	})
	if err != nil {
		t.Fatalf("Failed to add note: %v", err)
	}

	retrieved, err := notes.GetNote(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get note by caller-provided ID: %v", err)
	}
	if retrieved.Id != id {
		t.Errorf("Id = %s, want %s", retrieved.Id, id)
	}
}

func TestAddNotes_DuplicateID(t *testing.T) {
	notes, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	id := core.NewID()

	if _, err := notes.AddNotes(ctx, &core.Note{Id: id, Title: "first"}); err != nil {
		t.Fatalf("Failed to add note: %v", err)
	}

	_, err = notes.AddNotes(ctx, &core.Note{Id: id, Title: "second"})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestAddNotes_DuplicateURL(t *testing.T) {
	notes, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	url := "https://example.com/unique"

	if _, err := notes.AddNotes(ctx, &core.Note{Title: "first", URL: url}); err != nil {
		t.Fatalf("Failed to add note: %v", err)
	}

	_, err = notes.AddNotes(ctx, &core.Note{Title: "second", URL: url})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for reused URL, got %v", err)
	}
}

func TestGetNoteByURL(t *testing.T) {
	notes, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	url := "https://blog.example.com/badger-keys"

	added, err := notes.AddNotes(ctx, &core.Note{Title: "Badger keys", URL: url})
	if err != nil {
		t.Fatalf("Failed to add note: %v", err)
	}

	found, err := notes.GetNoteByURL(ctx, url)
	if err != nil {
		t.Fatalf("Failed to get note by URL: %v", err)
	}
	if found.Id != added[0].Id {
		t.Errorf("Id = %s, want %s", found.Id, added[0].Id)
	}

	_, err = notes.GetNoteByURL(ctx, "https://example.com/other")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown URL, got %v", err)
	}
}

func TestUpdateNotes(t *testing.T) {
	notes, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	added, err := notes.AddNotes(ctx, &core.Note{Title: "draft", Content: "one two"})
	if err != nil {
		t.Fatalf("Failed to add note: %v", err)
	}
	created := added[0].CreatedAt

	time.Sleep(2 * time.Millisecond)

	added[0].Content = "one two three four"
	updated, err := notes.UpdateNotes(ctx, added[0])
	if err != nil {
		t.Fatalf("Failed to update note: %v", err)
	}

	if !updated[0].CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed on update: %v vs %v", updated[0].CreatedAt, created)
	}
	if !updated[0].UpdatedAt.After(created) {
		t.Errorf("UpdatedAt not bumped: %v", updated[0].UpdatedAt)
	}
	if updated[0].WordCount != 4 {
		t.Errorf("WordCount = %d, want 4", updated[0].WordCount)
	}

	_, err = notes.UpdateNotes(ctx, &core.Note{Id: core.NewID(), Title: "ghost"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing note, got %v", err)
	}
}

func TestDeleteNotes(t *testing.T) {
	notes, embeddings, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	url := "https://example.com/doomed"

	added, err := notes.AddNotes(ctx, &core.Note{Title: "doomed", URL: url, Content: "bye"})
	if err != nil {
		t.Fatalf("Failed to add note: %v", err)
	}
	id := added[0].Id

	err = embeddings.SaveEmbedding(ctx, &core.EmbeddingRecord{
		NoteId:       id,
		Vector:       []float32{0.1, 0.2},
		ModelVersion: "test",
	})
	if err != nil {
		t.Fatalf("Failed to save embedding: %v", err)
	}

	if err := notes.DeleteNotes(ctx, id); err != nil {
		t.Fatalf("Failed to delete note: %v", err)
	}

	if _, err := notes.GetNote(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if _, err := notes.GetNoteByURL(ctx, url); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected URL index entry to be removed, got %v", err)
	}
	if _, err := embeddings.GetEmbedding(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected embedding to be dropped with the note, got %v", err)
	}

	if err := notes.DeleteNotes(ctx, core.NewID()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting missing note, got %v", err)
	}
}

func TestGetNotes_SkipsMissing(t *testing.T) {
	notes, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	added, err := notes.AddNotes(ctx,
		&core.Note{Title: "a"},
		&core.Note{Title: "b"},
	)
	if err != nil {
		t.Fatalf("Failed to add notes: %v", err)
	}

	got, err := notes.GetNotes(ctx, added[0].Id, core.NewID(), added[1].Id)
	if err != nil {
		t.Fatalf("Failed to get notes: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 notes with missing id skipped, got %d", len(got))
	}
}

func addNotesSpaced(t *testing.T, ctx context.Context, store storage.NoteStore, titles ...string) []*core.Note {
	t.Helper()
	var all []*core.Note
	for _, title := range titles {
		added, err := store.AddNotes(ctx, &core.Note{Title: title, Content: "content for " + title})
		if err != nil {
			t.Fatalf("Failed to add note %q: %v", title, err)
		}
		all = append(all, added[0])
		// Keep creation timestamps distinct at microsecond resolution
		time.Sleep(2 * time.Millisecond)
	}
	return all
}

func TestListNotes_CreatedOrder(t *testing.T) {
	notes, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	added := addNotesSpaced(t, ctx, notes, "first", "second", "third")

	asc, err := notes.ListNotes(ctx, storage.ListOptions{OrderBy: storage.OrderByCreated})
	if err != nil {
		t.Fatalf("ListNotes asc failed: %v", err)
	}
	if len(asc) != 3 {
		t.Fatalf("Expected 3 notes, got %d", len(asc))
	}
	if asc[0].Id != added[0].Id || asc[2].Id != added[2].Id {
		t.Errorf("Ascending order wrong: got %s..%s", asc[0].Title, asc[2].Title)
	}

	desc, err := notes.ListNotes(ctx, storage.ListOptions{OrderBy: storage.OrderByCreated, Descending: true})
	if err != nil {
		t.Fatalf("ListNotes desc failed: %v", err)
	}
	if desc[0].Id != added[2].Id {
		t.Errorf("Descending order wrong: got %s first", desc[0].Title)
	}

	page, err := notes.ListNotes(ctx, storage.ListOptions{OrderBy: storage.OrderByCreated, Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("ListNotes page failed: %v", err)
	}
	if len(page) != 1 || page[0].Id != added[1].Id {
		t.Errorf("Paged listing wrong: %+v", page)
	}
}

func TestListNotes_TitleOrder(t *testing.T) {
	notes, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	addNotesSpaced(t, ctx, notes, "banana", "Apple", "cherry")

	got, err := notes.ListNotes(ctx, storage.ListOptions{OrderBy: storage.OrderByTitle})
	if err != nil {
		t.Fatalf("ListNotes by title failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 notes, got %d", len(got))
	}
	if got[0].Title != "Apple" || got[1].Title != "banana" || got[2].Title != "cherry" {
		t.Errorf("Title order wrong: %s, %s, %s", got[0].Title, got[1].Title, got[2].Title)
	}
}

func TestListNotes_UpdatedOrder(t *testing.T) {
	notes, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	added := addNotesSpaced(t, ctx, notes, "older", "newer")

	// Touch the first note so it becomes the most recently updated
	added[0].Content = "touched"
	if _, err := notes.UpdateNotes(ctx, added[0]); err != nil {
		t.Fatalf("Failed to update note: %v", err)
	}

	got, err := notes.ListNotes(ctx, storage.ListOptions{OrderBy: storage.OrderByUpdated, Descending: true})
	if err != nil {
		t.Fatalf("ListNotes by updated failed: %v", err)
	}
	if got[0].Id != added[0].Id {
		t.Errorf("Expected touched note first, got %q", got[0].Title)
	}
}

func TestListNotes_InvalidOptions(t *testing.T) {
	notes, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	_, err = notes.ListNotes(context.Background(), storage.ListOptions{Limit: -1})
	if !errors.Is(err, storage.ErrInvalidQuery) {
		t.Errorf("Expected ErrInvalidQuery, got %v", err)
	}
}

func TestCountNotes(t *testing.T) {
	notes, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	count, err := notes.CountNotes(ctx)
	if err != nil {
		t.Fatalf("CountNotes failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 notes, got %d", count)
	}

	addNotesSpaced(t, ctx, notes, "one", "two")

	count, err = notes.CountNotes(ctx)
	if err != nil {
		t.Fatalf("CountNotes failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 notes, got %d", count)
	}
}
