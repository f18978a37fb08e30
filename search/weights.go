package search

// Weights collects the ranking constants used across the search paths.
// The defaults are tuned heuristics; they are exposed as a struct so callers
// can experiment without recompiling, but relative result ordering is only
// guaranteed for the default values.
type Weights struct {
	// SemanticWeight scales the vector-similarity contribution in hybrid ranking.
	SemanticWeight float32

	// KeywordWeight scales the lexical contribution in hybrid ranking.
	KeywordWeight float32

	// SimilarityThreshold is the default minimum cosine score for Search.
	SimilarityThreshold float32

	// SimilarThreshold is the minimum cosine score for FindSimilar, stricter
	// than plain search because related-note suggestions tolerate less noise.
	SimilarThreshold float32

	// TitleBonus is added per keyword term found in a note's title.
	TitleBonus float32

	// TagBonus is added per keyword term contained in any of a note's tags.
	TagBonus float32

	// TagExactBonus is awarded in tag search when a tag equals a term.
	TagExactBonus float32

	// TagSubstringBonus is awarded in tag search when a tag merely contains a term.
	TagSubstringBonus float32

	// PositionalBoostFactor caps how much semantic rank position can swing a
	// hybrid score. 0.1 means the lowest-ranked semantic hit keeps 90% of its
	// weighted score.
	PositionalBoostFactor float32
}

// DefaultWeights returns the standard ranking constants.
func DefaultWeights() Weights {
	return Weights{
		SemanticWeight:        0.7,
		KeywordWeight:         0.3,
		SimilarityThreshold:   0.3,
		SimilarThreshold:      0.5,
		TitleBonus:            2,
		TagBonus:              1.5,
		TagExactBonus:         2,
		TagSubstringBonus:     1,
		PositionalBoostFactor: 0.1,
	}
}
