package domain

import "time"

type DeckStyle string

const (
	DeckStylePresentation DeckStyle = "deck"
	DeckStyleReport       DeckStyle = "report"
)

func (s DeckStyle) String() string {
	return string(s)
}

func (s DeckStyle) IsValid() bool {
	switch s {
	case DeckStylePresentation, DeckStyleReport:
		return true
	default:
		return false
	}
}

// Deck is one generated document held server-side between the generate and
// export steps. HTML is always a complete self-contained document.
type Deck struct {
	ID                  string     `json:"id"`
	Style               DeckStyle  `json:"style"`
	Title               string     `json:"title"`
	HTML                string     `json:"-"`
	FormatInstructions  string     `json:"format_instructions"`
	ContentInstructions string     `json:"content_instructions"`
	Provider            string     `json:"provider"`
	Model               string     `json:"model"`
	UsedFallback        bool       `json:"used_fallback"`
	SlideCount          int        `json:"slide_count"`
	Slides              *SlideDeck `json:"slides,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	ExpiresAt           time.Time  `json:"expires_at"`
}

func (d *Deck) Expired(now time.Time) bool {
	if d == nil {
		return true
	}
	return !d.ExpiresAt.IsZero() && now.After(d.ExpiresAt)
}

func (d *Deck) TitleOrDefault() string {
	if d == nil || d.Title == "" {
		return "Untitled presentation"
	}
	return d.Title
}

// SuggestedFilename returns the default download name, presentation_YYYYMMDD_HHMM.pdf.
func (d *Deck) SuggestedFilename(now time.Time) string {
	return "presentation_" + now.Format("20060102_1504") + ".pdf"
}
