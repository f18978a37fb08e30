package search

import (
	"context"
	"strings"

	"github.com/poiesic/clippings/core"
)

// TagSearch scores notes purely by tag matches, for queries explicitly
// scoped to tags. An exact tag match earns TagExactBonus, a tag merely
// containing the term earns TagSubstringBonus, summed over every
// term/tag pair. Scores stay unnormalized; they are small integers and
// never merge with other signal sources.
func (e *Engine) TagSearch(ctx context.Context, terms []string, limit int) ([]*core.ScoredNote, error) {
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
		score := scoreTags(note, lowered, e.weights)
		if score > 0 {
			results = append(results, &core.ScoredNote{Note: note, Score: score})
		}
	}

	sortScoredNotes(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func scoreTags(note *core.Note, terms []string, weights Weights) float32 {
	var score float32
	for _, term := range terms {
		if term == "" {
			continue
		}
		for _, tag := range note.Tags {
			lowered := strings.ToLower(tag)
			switch {
			case lowered == term:
				score += weights.TagExactBonus
			case strings.Contains(lowered, term):
				score += weights.TagSubstringBonus
			}
		}
	}
	return score
}
