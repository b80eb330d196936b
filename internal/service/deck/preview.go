package deck

import (
	"html"
	"strings"

	"github.com/jadrxma/presentation-go/internal/domain"
)

// PreviewHTML synthesizes a plain self-contained document from a
// structured slide list, so slides-mode decks still preview in the iframe
// and can run through the browser backends. Styling stays deliberately
// simple, the vector backend is the canonical renderer for these decks.
func PreviewHTML(slides *domain.SlideDeck) string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(slides.Title))
	b.WriteString("</title>\n<style>\n")
	b.WriteString(`:root { --accent: #2563eb; --bg: #ffffff; --text: #111827; --muted: #6b7280; }
* { box-sizing: border-box; }
body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; color: var(--text); background: var(--bg); }
section { min-height: 100vh; padding: 8vh 10vw; break-after: page; }
section:nth-child(even) { background: #f3f6fb; }
section.cover { display: flex; flex-direction: column; justify-content: center; text-align: center; border-top: 10px solid var(--accent); }
h1 { font-size: 3rem; margin: 0 0 1rem; }
h2 { font-size: 2.5rem; margin: 0 0 1.5rem; border-bottom: 3px solid var(--accent); padding-bottom: 0.5rem; display: inline-block; }
p.subtitle { font-size: 1.3rem; color: var(--muted); }
p.byline { color: var(--muted); margin-top: 3rem; }
ul { font-size: 1.2rem; line-height: 1.9; }
p.notes { color: var(--muted); font-style: italic; margin-top: 2rem; }
`)
	b.WriteString("</style>\n</head>\n<body>\n")

	b.WriteString("<section class=\"cover\">\n<h1>")
	b.WriteString(html.EscapeString(slides.Title))
	b.WriteString("</h1>\n")
	if slides.Subtitle != "" {
		b.WriteString("<p class=\"subtitle\">")
		b.WriteString(html.EscapeString(slides.Subtitle))
		b.WriteString("</p>\n")
	}
	byline := slides.Author
	if slides.Date != "" {
		if byline != "" {
			byline += " · "
		}
		byline += slides.Date
	}
	if byline != "" {
		b.WriteString("<p class=\"byline\">")
		b.WriteString(html.EscapeString(byline))
		b.WriteString("</p>\n")
	}
	b.WriteString("</section>\n")

	for _, slide := range slides.Slides {
		b.WriteString("<section>\n")
		if slide.Title != "" {
			b.WriteString("<h2>")
			b.WriteString(html.EscapeString(slide.Title))
			b.WriteString("</h2>\n")
		}
		if len(slide.Bullets) > 0 {
			b.WriteString("<ul>\n")
			for _, bullet := range slide.Bullets {
				b.WriteString("<li>")
				b.WriteString(html.EscapeString(bullet))
				b.WriteString("</li>\n")
			}
			b.WriteString("</ul>\n")
		}
		if slide.Notes != "" {
			b.WriteString("<p class=\"notes\">")
			b.WriteString(html.EscapeString(slide.Notes))
			b.WriteString("</p>\n")
		}
		b.WriteString("</section>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}
