package domain

import "strings"

// SlideDeck is the structured slide list consumed by the vector PDF
// builder. It is either decoded from a model reply in JSON mode or
// extracted from generated HTML.
type SlideDeck struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Author   string  `json:"author,omitempty"`
	Date     string  `json:"date,omitempty"`
	Slides   []Slide `json:"slides"`
}

type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Notes   string   `json:"notes,omitempty"`
}

// Normalize trims all text fields and drops slides left with neither a
// title nor bullets.
func (d *SlideDeck) Normalize() {
	if d == nil {
		return
	}
	d.Title = strings.TrimSpace(d.Title)
	d.Subtitle = strings.TrimSpace(d.Subtitle)
	d.Author = strings.TrimSpace(d.Author)
	d.Date = strings.TrimSpace(d.Date)

	slides := make([]Slide, 0, len(d.Slides))
	for _, slide := range d.Slides {
		slide.Title = strings.TrimSpace(slide.Title)
		slide.Notes = strings.TrimSpace(slide.Notes)

		bullets := make([]string, 0, len(slide.Bullets))
		for _, bullet := range slide.Bullets {
			if trimmed := strings.TrimSpace(bullet); trimmed != "" {
				bullets = append(bullets, trimmed)
			}
		}
		slide.Bullets = bullets

		if slide.Title == "" && len(slide.Bullets) == 0 {
			continue
		}
		slides = append(slides, slide)
	}
	d.Slides = slides
}

func (d *SlideDeck) IsEmpty() bool {
	return d == nil || len(d.Slides) == 0
}

func (d *SlideDeck) SlideCount() int {
	if d == nil {
		return 0
	}
	return len(d.Slides)
}
