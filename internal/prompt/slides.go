package prompt

import "fmt"

// SlidesVars holds variables for the structured slide-list prompt template
type SlidesVars struct {
	FormatInstructions  string
	ContentInstructions string
}

// BuildSlidesSystem builds the system prompt for JSON slide-list output
func BuildSlidesSystem() string {
	return `You are a presentation writer. Produce the outline of a slide deck as JSON and nothing else.

## Response Format (JSON ONLY):
{
  "title": "Deck title",
  "subtitle": "One-line subtitle",
  "date": "Human-readable date",
  "slides": [
    {
      "title": "Slide heading",
      "bullets": ["short point", "short point"],
      "notes": "optional speaker note"
    }
  ]
}

**Rules**:
- 4 to 10 slides, first slide content goes into the top-level title/subtitle, not the slides array.
- Bullets are short phrases (max ~12 words), 3 to 6 per slide.
- No markdown, no HTML, no commentary outside the JSON object.`
}

// BuildSlidesUser builds the user prompt wrapping the two instruction boxes
func BuildSlidesUser(vars SlidesVars) string {
	return fmt.Sprintf(`Desired presentation structure and format:
%s

Content requirements:
%s`,
		vars.FormatInstructions,
		vars.ContentInstructions,
	)
}
