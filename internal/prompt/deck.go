package prompt

import "fmt"

// DeckVars holds variables for the presentation prompt template
type DeckVars struct {
	FormatInstructions  string
	ContentInstructions string
}

// BuildDeckSystem builds the system prompt for slide-deck style HTML
func BuildDeckSystem() string {
	return `You are an expert in HTML/CSS presentation design. Return a COMPLETE, self-contained HTML5 document that looks like a polished slide deck. Use these style rules:
- First slide: full-screen hero style with large centered title, subtitle, and date.
- Subsequent slides: alternating background colors for contrast.
- Large headings (2.5rem+), bold typography, clean sans-serif system font.
- Generous padding and spacing; centered or grid-based layout.
- Use CSS variables in :root for --accent, --accent2, --bg, --text.
- Cards for key metrics with big numbers and labels.
- Inline SVG icons for sections and metrics (minimal style, no external files).
- Ensure each slide prints on its own PDF page (@page breaks, break-after: page).
Return only HTML, no explanations.`
}

// BuildDeckUser builds the user prompt wrapping the two instruction boxes
func BuildDeckUser(vars DeckVars) string {
	return fmt.Sprintf(`Desired presentation layout and format:
%s

Content requirements:
%s

Constraints:
- Use semantic HTML and minimal, clean CSS in a single <style> block.
- Each slide/section should be a distinct block that will print as its own page.
- Use system fonts only and avoid external scripts/assets.
- Keep the HTML self-contained.`,
		vars.FormatInstructions,
		vars.ContentInstructions,
	)
}
