package prompt

import "fmt"

// ReportVars holds variables for the report prompt template
type ReportVars struct {
	FormatInstructions  string
	ContentInstructions string
}

// BuildReportSystem builds the system prompt for report-style HTML
func BuildReportSystem() string {
	return `You are an expert in HTML/CSS document design. Return a COMPLETE, self-contained HTML5 document styled as a professional written report. Use these style rules:
- Cover page: report title, subtitle, author placeholder, and date, centered.
- Numbered sections with clear headings and short paragraphs, not slides.
- Print-friendly serif or system typography, comfortable line height, restrained color.
- Use CSS variables in :root for --accent, --bg, --text.
- Tables or definition lists for figures; inline SVG only, no external files.
- Start each top-level section on a new PDF page (@page breaks, break-before: page).
Return only HTML, no explanations.`
}

// BuildReportUser builds the user prompt wrapping the two instruction boxes
func BuildReportUser(vars ReportVars) string {
	return fmt.Sprintf(`Desired report layout and format:
%s

Content requirements:
%s

Constraints:
- Use semantic HTML and minimal, clean CSS in a single <style> block.
- Each top-level section should print cleanly across pages.
- Use system fonts only and avoid external scripts/assets.
- Keep the HTML self-contained.`,
		vars.FormatInstructions,
		vars.ContentInstructions,
	)
}
