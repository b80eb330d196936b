package domain

import (
	"time"

	"github.com/jadrxma/presentation-go/internal/constants"
	"github.com/jadrxma/presentation-go/internal/util"
)

// GenerationRecord is one row of the generation history, kept for the
// history panel in the UI. Prompt fields hold excerpts, not full text.
type GenerationRecord struct {
	ID             int64     `json:"id"`
	DeckID         string    `json:"deck_id"`
	Style          DeckStyle `json:"style"`
	Title          string    `json:"title"`
	FormatExcerpt  string    `json:"format_excerpt"`
	ContentExcerpt string    `json:"content_excerpt"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	SlideCount     int       `json:"slide_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewGenerationRecord derives a history row from a finished deck.
func NewGenerationRecord(deck *Deck) *GenerationRecord {
	return &GenerationRecord{
		DeckID:         deck.ID,
		Style:          deck.Style,
		Title:          deck.TitleOrDefault(),
		FormatExcerpt:  util.TruncateString(deck.FormatInstructions, constants.HistoryConfig.PromptSnippet),
		ContentExcerpt: util.TruncateString(deck.ContentInstructions, constants.HistoryConfig.PromptSnippet),
		Provider:       deck.Provider,
		Model:          deck.Model,
		SlideCount:     deck.SlideCount,
		CreatedAt:      deck.CreatedAt,
	}
}
