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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/clippings/ai"
	"github.com/poiesic/clippings/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Content beyond this many runes adds cost without improving tag quality.
const maxSuggestionInputRunes = 4000

// TagSuggester implements ai.TagSuggester using OpenAI-compatible chat APIs.
type TagSuggester struct {
	client        llms.Model
	minConfidence int
	maxTags       int
	logger        *slog.Logger
}

// suggestion is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type suggestion struct {
	Tag        string `json:"tag"`
	Confidence int    `json:"confidence"`
}

// suggestionList is the wrapper structure for the LLM's JSON response.
type suggestionList struct {
	Tags []suggestion `json:"tags"`
}

// newTagSuggester is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTagSuggester(config *ai.Config) (*TagSuggester, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/suggestion
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.SuggesterHost),
		openai.WithToken("none"),
		openai.WithModel(config.SuggesterModel),
	)
	if err != nil {
		return nil, err
	}

	return &TagSuggester{
		client:        client,
		minConfidence: config.MinConfidence,
		maxTags:       config.MaxTags,
		logger:        slog.Default().With("component", "openai-suggester"),
	}, nil
}

// NewTagSuggester creates a new tag suggester using the provided configuration.
//
// Returns ai.TagSuggester interface to enforce abstraction.
func NewTagSuggester(config *ai.Config) (ai.TagSuggester, error) {
	return newTagSuggester(config)
}

// SuggestTags proposes tags for a note using an LLM. Suggestions below the
// configured confidence threshold are discarded and the result is capped at
// the configured maximum, highest confidence first.
func (s *TagSuggester) SuggestTags(ctx context.Context, title, content string) ([]string, error) {
	input := buildSuggestionInput(title, content)
	if input == "" {
		return nil, ai.ErrEmptyInput
	}

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt(s.maxTags)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(input),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result suggestionList
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := s.client.GenerateContent(ctx, messages, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			s.logger.Warn("failed to generate suggestions", "attempt", attempt+1, "err", err)
			return nil, classifyErr(ctx, err)
		}

		if len(response.Choices) < 1 {
			s.logger.Debug("no choices returned from model")
			return []string{}, nil
		}

		responseText := stripCodeFences(response.Choices[0].Content)
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			s.logger.Warn("error parsing suggester response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		s.logger.Warn("failed to parse suggester response after retries", "err", lastErr)
		return nil, lastErr
	}

	// Filter by confidence, most confident first.
	kept := make([]suggestion, 0, len(result.Tags))
	for _, sg := range result.Tags {
		if sg.Confidence >= s.minConfidence {
			kept = append(kept, sg)
		}
	}
	slices.SortStableFunc(kept, func(a, b suggestion) int {
		return b.Confidence - a.Confidence
	})
	if len(kept) > s.maxTags {
		kept = kept[:s.maxTags]
	}

	names := make([]string, 0, len(kept))
	for _, sg := range kept {
		names = append(names, sg.Tag)
	}
	names = core.NormalizeTags(names)

	s.logger.Debug("suggested tags",
		"total", len(result.Tags),
		"kept", len(names))

	return names, nil
}

// buildSuggestionInput assembles the user message the model sees. The title
// always rides along, even when empty, so the model's input shape is stable.
func buildSuggestionInput(title, content string) string {
	title = collapseWhitespace(title)
	content = clipText(strings.TrimSpace(content), maxSuggestionInputRunes)
	if title == "" && content == "" {
		return ""
	}
	return "Title: " + title + "\n" + content
}
