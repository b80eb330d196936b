package deck

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jadrxma/presentation-go/internal/constants"
	"github.com/jadrxma/presentation-go/internal/domain"
	"github.com/jadrxma/presentation-go/internal/util"
	apperrors "github.com/jadrxma/presentation-go/pkg/errors"
)

const outlineBulletRunes = 240

// documentTitle pulls a display title out of generated HTML: the <title>
// element first, the first heading otherwise.
func documentTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	title := util.CollapseSpaces(doc.Find("title").First().Text())
	if title == "" {
		title = util.CollapseSpaces(doc.Find("h1").First().Text())
	}
	return util.TruncateString(title, constants.DeckLimits.MaxTitleLength)
}

// countSlideBlocks estimates how many pages the document will print to.
// Models follow the prompt and emit one <section> (or .slide block) per
// slide; anything else counts as a single page.
func countSlideBlocks(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	if n := doc.Find("section").Length(); n > 0 {
		return n
	}
	if n := doc.Find(".slide").Length(); n > 0 {
		return n
	}
	if util.CollapseSpaces(doc.Find("body").Text()) != "" {
		return 1
	}
	return 0
}

// Outline extracts a structured slide list from a deck that was generated
// as HTML, so the vector backend can render it. Sections map to slides with
// their heading and list items; documents without sections collapse into a
// single slide built from paragraph text.
func Outline(deck *domain.Deck) (*domain.SlideDeck, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(deck.HTML))
	if err != nil {
		return nil, apperrors.NewServiceError("deck HTML is not parseable", "deck", "outline", err)
	}

	outline := &domain.SlideDeck{Title: deck.TitleOrDefault()}

	blocks := doc.Find("section")
	if blocks.Length() == 0 {
		blocks = doc.Find(".slide")
	}
	blocks.Each(func(_ int, block *goquery.Selection) {
		outline.Slides = append(outline.Slides, slideFromBlock(block))
	})

	if len(outline.Slides) == 0 {
		if slide := slideFromBody(doc); slide != nil {
			outline.Slides = append(outline.Slides, *slide)
		}
	}

	outline.Normalize()
	if outline.IsEmpty() {
		return nil, apperrors.NewServiceError("deck HTML has no extractable outline", "deck", "outline", nil)
	}
	return outline, nil
}

func slideFromBlock(block *goquery.Selection) domain.Slide {
	slide := domain.Slide{
		Title: util.CollapseSpaces(block.Find("h1, h2, h3").First().Text()),
	}

	block.Find("li").Each(func(_ int, item *goquery.Selection) {
		if len(slide.Bullets) >= constants.DeckLimits.MaxBulletsPerSlide {
			return
		}
		if text := util.CollapseSpaces(item.Text()); text != "" {
			slide.Bullets = append(slide.Bullets, util.TruncateString(text, outlineBulletRunes))
		}
	})
	if len(slide.Bullets) > 0 {
		return slide
	}

	// No list items, fall back to the section's paragraphs.
	block.Find("p").Each(func(_ int, para *goquery.Selection) {
		if len(slide.Bullets) >= constants.DeckLimits.MaxBulletsPerSlide {
			return
		}
		if text := util.CollapseSpaces(para.Text()); text != "" {
			slide.Bullets = append(slide.Bullets, util.TruncateString(text, outlineBulletRunes))
		}
	})
	return slide
}

func slideFromBody(doc *goquery.Document) *domain.Slide {
	slide := &domain.Slide{
		Title: util.CollapseSpaces(doc.Find("h1").First().Text()),
	}
	doc.Find("p, li").Each(func(_ int, node *goquery.Selection) {
		if len(slide.Bullets) >= constants.DeckLimits.MaxBulletsPerSlide {
			return
		}
		if text := util.CollapseSpaces(node.Text()); text != "" {
			slide.Bullets = append(slide.Bullets, util.TruncateString(text, outlineBulletRunes))
		}
	})
	if slide.Title == "" && len(slide.Bullets) == 0 {
		return nil
	}
	return slide
}

// resolveFilename sanitizes the requested download name, falling back to the
// deck's suggested one.
func resolveFilename(requested string, deck *domain.Deck) string {
	return util.SanitizeFilename(requested, deck.SuggestedFilename(time.Now()))
}
