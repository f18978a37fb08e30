package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

// KeywordSearch scores notes by lexical term matches over title, content,
// and tags. It needs no embedding model, which makes it the fallback path
// when the embedder is unavailable.
//
// Each term contributes its occurrence count in the note text, plus
// TitleBonus when it appears in the title and TagBonus when any tag
// contains it. Scores are normalized by term count so single-term and
// multi-term queries produce comparable magnitudes for downstream merging.
func (e *Engine) KeywordSearch(ctx context.Context, terms []string, limit int) ([]*core.ScoredNote, error) {
	if len(terms) == 0 {
		return []*core.ScoredNote{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	notes, err := e.scanNotes(ctx)
	if err != nil {
		return nil, err
	}

	lowered := make([]string, len(terms))
	for i, term := range terms {
		lowered[i] = strings.ToLower(term)
	}

	results := make([]*core.ScoredNote, 0, len(notes))
	for _, note := range notes {
		score := scoreKeywords(note, lowered, e.weights)
		if score > 0 {
			results = append(results, &core.ScoredNote{Note: note, Score: score})
		}
	}

	sortScoredNotes(results)
	if len(results) > limit {
		results = results[:limit]
	}

	norm := float32(len(terms))
	for _, result := range results {
		result.Score /= norm
	}
	return results, nil
}

// scanNotes lists the notes covered by the lexical paths, newest first.
// Collections larger than the scan limit get partial coverage of older
// notes; see defaultKeywordScanLimit.
func (e *Engine) scanNotes(ctx context.Context) ([]*core.Note, error) {
	notes, err := e.notes.ListNotes(ctx, storage.ListOptions{
		Limit:      e.scanLimit,
		OrderBy:    storage.OrderByCreated,
		Descending: true,
	})
	if err != nil {
		return nil, fmt.Errorf("listing notes for lexical scan: %w", err)
	}
	return notes, nil
}

func scoreKeywords(note *core.Note, terms []string, weights Weights) float32 {
	title := strings.ToLower(note.Title)
	blob := title + "\n" + strings.ToLower(note.Content) + "\n" + strings.ToLower(strings.Join(note.Tags, "\n"))

	var score float32
	for _, term := range terms {
		if term == "" {
			continue
		}
		occurrences := strings.Count(blob, term)
		if occurrences == 0 {
			continue
		}
		score += float32(occurrences)
		if strings.Contains(title, term) {
			score += weights.TitleBonus
		}
		for _, tag := range note.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				score += weights.TagBonus
				break
			}
		}
	}
	return score
}

// sortScoredNotes orders by score descending, breaking ties by note id so
// rankings are deterministic for a fixed input set.
func sortScoredNotes(results []*core.ScoredNote) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Note.Id < results[j].Note.Id
	})
}
