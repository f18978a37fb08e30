package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/clippings/ai"
	"github.com/poiesic/clippings/core"
	"github.com/poiesic/clippings/storage"
)

// tagProcessor suggests tags for notes captured without any.
type tagProcessor struct {
	notes     storage.NoteStore
	suggester ai.TagSuggester
	logger    *slog.Logger
}

var _ processor = (*tagProcessor)(nil)

// newTagProcessor creates a new tag suggestion processor.
func newTagProcessor(notes storage.NoteStore, suggester ai.TagSuggester, logger *slog.Logger) (processor, error) {
	if notes == nil {
		return nil, fmt.Errorf("note store required")
	}
	if suggester == nil {
		return nil, fmt.Errorf("tag suggester required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &tagProcessor{
		notes:     notes,
		suggester: suggester,
		logger:    logger.With("processor", "tags"),
	}, nil
}

// process asks the suggester for tags on every untagged note and persists
// the suggestions. Suggestion failures skip the note; the others still get
// their tags.
func (tp *tagProcessor) process(ctx context.Context, ids ...core.ID) error {
	tp.logger.Info("processing notes for tag suggestions", "notes", len(ids))

	slices.Sort(ids)

	notes, err := tp.notes.GetNotes(ctx, ids...)
	if err != nil {
		return err
	}

	var suggestionErrors []error
	var tagged []*core.Note
	for i, note := range notes {
		if len(note.Tags) > 0 || note.Content == "" {
			continue
		}

		suggestions, err := tp.suggester.SuggestTags(ctx, note.Title, note.Content)
		if err != nil {
			suggestionErrors = append(suggestionErrors, fmt.Errorf("note %d suggestion failed: %w", i, err))
			continue
		}
		if len(suggestions) == 0 {
			continue
		}

		note.Tags = suggestions
		tagged = append(tagged, note)
	}

	if len(tagged) > 0 {
		if _, err := tp.notes.UpdateNotes(ctx, tagged...); err != nil {
			suggestionErrors = append(suggestionErrors, fmt.Errorf("updating tagged notes failed: %w", err))
		}
	}

	if len(suggestionErrors) > 0 {
		return errors.Join(suggestionErrors...)
	}

	return nil
}
