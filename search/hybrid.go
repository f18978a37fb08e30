package search

import (
	"context"

	"github.com/poiesic/clippings/core"
)

// HybridOptions controls a hybrid (semantic + keyword) search pass.
// Zero-valued fields select defaults from the engine's weights.
type HybridOptions struct {
	Limit          int
	SemanticWeight float32
	KeywordWeight  float32
	Threshold      float32
}

func (o HybridOptions) withDefaults(w Weights) HybridOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.SemanticWeight == 0 {
		o.SemanticWeight = w.SemanticWeight
	}
	if o.KeywordWeight == 0 {
		o.KeywordWeight = w.KeywordWeight
	}
	if o.Threshold == 0 {
		o.Threshold = w.SimilarityThreshold
	}
	return o
}

// HybridSearch merges semantic and lexical signal into one ranked list.
// Both paths are asked for twice the requested limit to allow for merge
// attrition. A note appearing in both lists accumulates both contributions;
// hybrid evidence should outrank single-signal evidence even when each raw
// score was moderate. This also degrades cleanly: with no semantic hits the
// ranking is purely lexical, and vice versa.
func (e *Engine) HybridSearch(ctx context.Context, queryVector []float32, keywordTerms []string, opts HybridOptions) ([]*core.ScoredNote, error) {
	opts = opts.withDefaults(e.weights)

	semantic, err := e.Search(ctx, queryVector, SearchOptions{
		Limit:     2 * opts.Limit,
		Threshold: opts.Threshold,
	})
	if err != nil {
		return nil, err
	}

	lexical, err := e.KeywordSearch(ctx, keywordTerms, 2*opts.Limit)
	if err != nil {
		return nil, err
	}

	type entry struct {
		note  *core.Note
		score float32
	}
	combined := make(map[core.ID]*entry, len(semantic)+len(lexical))

	// Semantic contribution: raw similarity, weighted, with a small
	// positional boost so higher-ranked matches pull slightly ahead of
	// equal-scored stragglers. The boost swings at most PositionalBoostFactor.
	for rank, hit := range semantic {
		boost := 1 - (float32(rank)/float32(len(semantic)))*e.weights.PositionalBoostFactor
		contribution := hit.Score * opts.SemanticWeight * boost
		combined[hit.Note.Id] = &entry{note: hit.Note, score: contribution}
	}

	// Keyword contribution: purely rank-based, since lexical scores do not
	// share a scale with cosine similarity.
	for rank, hit := range lexical {
		contribution := (1 - float32(rank)/float32(len(lexical))) * opts.KeywordWeight
		if existing, ok := combined[hit.Note.Id]; ok {
			existing.score += contribution
		} else {
			combined[hit.Note.Id] = &entry{note: hit.Note, score: contribution}
		}
	}

	results := make([]*core.ScoredNote, 0, len(combined))
	for _, en := range combined {
		results = append(results, &core.ScoredNote{Note: en.note, Score: en.score})
	}
	sortScoredNotes(results)
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}
