package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/clippings/core"
)

func TestTagSearch_ExactMatchBeatsSubstring(t *testing.T) {
	engine, notes, _ := newTestEngine(t)

	exact := addNote(t, notes, &core.Note{
		Id:      "exact",
		Title:   "JS",
		Content: "notes on the language",
		Tags:    []string{"javascript"},
	})
	partial := addNote(t, notes, &core.Note{
		Id:      "partial",
		Title:   "Frameworks",
		Content: "notes on frameworks",
		Tags:    []string{"javascript-frameworks"},
	})

	results, err := engine.TagSearch(context.Background(), []string{"javascript"}, 20)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, exact.Id, results[0].Note.Id)
	assert.Equal(t, partial.Id, results[1].Note.Id)
	assert.Equal(t, float32(2), results[0].Score)
	assert.Equal(t, float32(1), results[1].Score)
}

func TestTagSearch_EmptyTerms(t *testing.T) {
	engine, notes, _ := newTestEngine(t)

	addNote(t, notes, &core.Note{Id: "a", Title: "Note", Content: "content", Tags: []string{"go"}})

	results, err := engine.TagSearch(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTagSearch_MultipleTermsAccumulate(t *testing.T) {
	engine, notes, _ := newTestEngine(t)

	both := addNote(t, notes, &core.Note{Id: "both", Title: "Tooling", Content: "x", Tags: []string{"go", "cli"}})
	one := addNote(t, notes, &core.Note{Id: "one", Title: "Language", Content: "x", Tags: []string{"go"}})

	results, err := engine.TagSearch(context.Background(), []string{"go", "cli"}, 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, both.Id, results[0].Note.Id)
	assert.Equal(t, float32(4), results[0].Score)
	assert.Equal(t, one.Id, results[1].Note.Id)
	assert.Equal(t, float32(2), results[1].Score)
}

func TestTagSearch_NoNormalization(t *testing.T) {
	engine, notes, _ := newTestEngine(t)

	addNote(t, notes, &core.Note{Id: "a", Title: "Note", Content: "x", Tags: []string{"go"}})

	// A second unmatched term must not dilute the score.
	results, err := engine.TagSearch(context.Background(), []string{"go", "zzz"}, 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, float32(2), results[0].Score)
}

func TestTagSearch_CaseInsensitive(t *testing.T) {
	engine, notes, _ := newTestEngine(t)

	a := addNote(t, notes, &core.Note{Id: "a", Title: "Note", Content: "x", Tags: []string{"Golang"}})

	results, err := engine.TagSearch(context.Background(), []string{"GOLANG"}, 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, a.Id, results[0].Note.Id)
	assert.Equal(t, float32(2), results[0].Score)
}

func TestTagSearch_IgnoresContent(t *testing.T) {
	engine, notes, _ := newTestEngine(t)

	addNote(t, notes, &core.Note{Id: "a", Title: "Golang", Content: "all about golang"})

	results, err := engine.TagSearch(context.Background(), []string{"golang"}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTagSearch_RespectsLimit(t *testing.T) {
	engine, notes, _ := newTestEngine(t)

	addNote(t, notes, &core.Note{Id: "a", Title: "One", Content: "x", Tags: []string{"shared"}})
	addNote(t, notes, &core.Note{Id: "b", Title: "Two", Content: "x", Tags: []string{"shared"}})
	addNote(t, notes, &core.Note{Id: "c", Title: "Three", Content: "x", Tags: []string{"shared"}})

	results, err := engine.TagSearch(context.Background(), []string{"shared"}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
