package mock

import (
	"context"
	"strings"
)

// MockTagSuggester is a test double for ai.TagSuggester.
// It allows custom behavior injection via function fields.
type MockTagSuggester struct {
	// SuggestTagsFunc is called by SuggestTags if set.
	// If nil, uses default simple word extraction.
	SuggestTagsFunc func(ctx context.Context, title, content string) ([]string, error)

	callCount int
}

// NewMockTagSuggester creates a mock tag suggester with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockTagSuggester() *MockTagSuggester {
	return &MockTagSuggester{}
}

// SuggestTags extracts simple mock tags from the note text.
// Default behavior: the first few distinct words longer than four
// characters, lowercased. Deterministic and offline.
func (m *MockTagSuggester) SuggestTags(ctx context.Context, title, content string) ([]string, error) {
	m.callCount++

	if m.SuggestTagsFunc != nil {
		return m.SuggestTagsFunc(ctx, title, content)
	}

	words := strings.Fields(strings.ToLower(title + " " + content))
	seen := make(map[string]bool)
	tags := make([]string, 0, 3)
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if len(word) <= 4 || seen[word] {
			continue
		}
		seen[word] = true
		tags = append(tags, word)
		if len(tags) == 3 {
			break
		}
	}
	return tags, nil
}

// CallCount returns the number of times SuggestTags was called.
func (m *MockTagSuggester) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockTagSuggester) Reset() {
	m.callCount = 0
	m.SuggestTagsFunc = nil
}
