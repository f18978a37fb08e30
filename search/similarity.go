package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

// CosineSimilarity computes the cosine of the angle between two vectors.
// Vectors of unequal length fail with ErrDimensionMismatch wrapped with both
// lengths. When either vector has zero norm the result is exactly 0; that is
// a deliberate policy for degenerate vectors, not an error.
func CosineSimilarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	// Accumulate in float64; summing many float32 products loses precision.
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}

// SearchOptions controls a semantic search pass.
type SearchOptions struct {
	// Limit caps the result count. Zero or negative selects DefaultLimit.
	Limit int

	// Threshold is the minimum cosine score to keep. Exactly zero selects
	// the default from the engine's weights; negative thresholds are honored
	// literally for callers that want the full score range.
	Threshold float32

	// TagFilter, when non-empty, keeps only notes where any tag contains any
	// filter term (case-insensitive).
	TagFilter []string

	// ExcludeIds removes specific notes from consideration before scoring.
	ExcludeIds []core.ID
}

func (o SearchOptions) withDefaults(w Weights) SearchOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Threshold == 0 {
		o.Threshold = w.SimilarityThreshold
	}
	return o
}

type scoredId struct {
	id    core.ID
	score float32
}

// Search ranks all cached vectors against queryVector and resolves the
// survivors to full notes. An empty result is valid, never an error. Ids
// whose notes no longer exist are dropped silently; the divergence heals on
// the next cache refresh.
func (e *Engine) Search(ctx context.Context, queryVector []float32, opts SearchOptions) ([]*core.ScoredNote, error) {
	opts = opts.withDefaults(e.weights)

	if err := e.ensureFreshCache(ctx); err != nil {
		return nil, err
	}

	exclude := make(map[core.ID]bool, len(opts.ExcludeIds))
	for _, id := range opts.ExcludeIds {
		exclude[id] = true
	}

	snapshot := e.cache.Snapshot()
	candidates := make([]scoredId, 0, len(snapshot))
	for id, vector := range snapshot {
		if exclude[id] {
			continue
		}
		score, err := CosineSimilarity(queryVector, vector)
		if err != nil {
			return nil, fmt.Errorf("scoring note %s: %w", id, err)
		}
		if score >= opts.Threshold {
			candidates = append(candidates, scoredId{id: id, score: score})
		}
	}

	sortByScore(candidates)
	if len(candidates) > opts.Limit {
		candidates = candidates[:opts.Limit]
	}

	return e.resolve(ctx, candidates, opts.TagFilter)
}

// FindSimilar returns notes similar to an existing note, excluding the note
// itself. A note without a stored embedding has no basis for similarity and
// yields an empty list, not an error.
func (e *Engine) FindSimilar(ctx context.Context, noteId core.ID, limit int) ([]*core.ScoredNote, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	record, err := e.embeddings.GetEmbedding(ctx, noteId)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []*core.ScoredNote{}, nil
		}
		return nil, err
	}

	// Request one extra: self-exclusion is by id, not by count adjustment.
	results, err := e.Search(ctx, record.Vector, SearchOptions{
		Limit:      limit + 1,
		Threshold:  e.weights.SimilarThreshold,
		ExcludeIds: []core.ID{noteId},
	})
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// resolve maps scored ids to full notes, preserving order, dropping ids the
// note store no longer knows and notes that fail the tag filter.
func (e *Engine) resolve(ctx context.Context, candidates []scoredId, tagFilter []string) ([]*core.ScoredNote, error) {
	if len(candidates) == 0 {
		return []*core.ScoredNote{}, nil
	}

	ids := make([]core.ID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	notes, err := e.notes.GetNotes(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byId := make(map[core.ID]*core.Note, len(notes))
	for _, note := range notes {
		byId[note.Id] = note
	}

	results := make([]*core.ScoredNote, 0, len(candidates))
	for _, c := range candidates {
		note, ok := byId[c.id]
		if !ok {
			continue
		}
		if !matchesTagFilter(note.Tags, tagFilter) {
			continue
		}
		results = append(results, &core.ScoredNote{Note: note, Score: c.score})
	}
	return results, nil
}

// matchesTagFilter reports whether any note tag contains any filter term,
// case-insensitively. An empty filter matches everything.
func matchesTagFilter(tags []string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, term := range filter {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		for _, tag := range tags {
			if strings.Contains(tag, term) {
				return true
			}
		}
	}
	return false
}

// sortByScore orders candidates by descending score, ties broken by id so
// ranking is deterministic for a fixed cache snapshot.
func sortByScore(candidates []scoredId) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})
}
