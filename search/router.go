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


package search

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/clippings/core"
)

// QueryKind classifies a parsed query.
type QueryKind int

const (
	// KindEmpty means the query had no usable content.
	KindEmpty QueryKind = iota
	// KindTag means the query was explicitly scoped to tags.
	KindTag
	// KindHybrid means the query takes the semantic plus keyword path.
	KindHybrid
)

func (k QueryKind) String() string {
	switch k {
	case KindTag:
		return "tag"
	case KindHybrid:
		return "hybrid"
	default:
		return "empty"
	}
}

// tagQueryRe matches queries explicitly scoped to tags, e.g. "tag: go cli".
var tagQueryRe = regexp.MustCompile(`(?i)^tag:\s*(.+)$`)

// Query is raw query text parsed into a routing decision.
type Query struct {
	Kind  QueryKind
	Terms []string
	Raw   string
}

// ParseQuery classifies raw query text. Queries prefixed with "tag:"
// (case-insensitive) become tag queries over the remaining terms.
// Everything else becomes a hybrid query, split on whitespace with
// single-character tokens discarded as noise. A hybrid query may end up
// with no keyword terms at all; the semantic side still runs on the raw
// text.
func ParseQuery(raw string) Query {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Query{Kind: KindEmpty, Raw: raw}
	}

	if m := tagQueryRe.FindStringSubmatch(trimmed); m != nil {
		terms := strings.Fields(m[1])
		if len(terms) == 0 {
			return Query{Kind: KindEmpty, Raw: raw}
		}
		return Query{Kind: KindTag, Terms: terms, Raw: raw}
	}

	var terms []string
	for _, token := range strings.Fields(trimmed) {
		if utf8.RuneCountInString(token) > 1 {
			terms = append(terms, token)
		}
	}
	return Query{Kind: KindHybrid, Terms: terms, Raw: raw}
}

// FallbackNotice is set on QueryResult.Notice when semantic search was
// unavailable and results came from the keyword path alone.
const FallbackNotice = "semantic search unavailable; results are keyword matches only"

// QueryResult carries the outcome of a routed query.
type QueryResult struct {
	Notes []*core.ScoredNote
	Kind  QueryKind
	// Notice is a human-readable degradation message, empty when the
	// query ran at full capability.
	Notice string
}

// Query parses raw query text, routes it to the right search path, and
// returns scored notes.
//
// Tag queries search tags only. Anything else attempts hybrid search,
// embedding the full raw text for the semantic side. When no embedder is
// configured, or the embedder reports itself unavailable, the query
// degrades to keyword-only matching and the result carries a notice;
// embedder absence is never an error.
func (e *Engine) Query(ctx context.Context, raw string, limit int) (*QueryResult, error) {
	parsed := ParseQuery(raw)
	e.monitor.QueryStarted(parsed.Kind, raw)
	start := time.Now()

	result, err := e.dispatch(ctx, parsed, limit)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	e.monitor.QueryCompleted(parsed.Kind, len(result.Notes), elapsed)
	e.logger.Debug("query handled",
		"kind", parsed.Kind.String(),
		"results", len(result.Notes),
		"elapsed", elapsed)
	return result, nil
}

func (e *Engine) dispatch(ctx context.Context, parsed Query, limit int) (*QueryResult, error) {
	switch parsed.Kind {
	case KindEmpty:
		return &QueryResult{Kind: KindEmpty, Notes: []*core.ScoredNote{}}, nil

	case KindTag:
		notes, err := e.TagSearch(ctx, parsed.Terms, limit)
		if err != nil {
			return nil, err
		}
		return &QueryResult{Kind: KindTag, Notes: notes}, nil
	}

	vector, err := e.embedQuery(ctx, parsed.Raw)
	if err != nil {
		return nil, err
	}
	if vector == nil {
		e.monitor.Fallback("embedder unavailable")
		notes, err := e.KeywordSearch(ctx, parsed.Terms, limit)
		if err != nil {
			return nil, err
		}
		return &QueryResult{Kind: KindHybrid, Notes: notes, Notice: FallbackNotice}, nil
	}

	notes, err := e.HybridSearch(ctx, vector, parsed.Terms, HybridOptions{Limit: limit})
	if err != nil {
		return nil, err
	}
	return &QueryResult{Kind: KindHybrid, Notes: notes}, nil
}

// embedQuery vectorizes raw query text. A nil vector with nil error means
// the semantic path is unavailable and the caller should fall back to
// keyword matching. Caller cancellation still surfaces as an error.
func (e *Engine) embedQuery(ctx context.Context, raw string) ([]float32, error) {
	if e.embedder == nil {
		return nil, nil
	}

	vector, err := e.embedder.EmbedText(ctx, raw)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("query embedding failed, falling back to keyword search", "error", err)
		return nil, nil
	}
	if len(vector) == 0 {
		return nil, nil
	}
	return vector, nil
}
