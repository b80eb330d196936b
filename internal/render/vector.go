package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/constants"
	"github.com/jadrxma/presentation-go/internal/domain"
	"github.com/jadrxma/presentation-go/internal/util"
	apperrors "github.com/jadrxma/presentation-go/pkg/errors"
)

// slidePalette is the fixed color scheme for vector decks. RGB because the
// drawing API works in device RGB.
var slidePalette = struct {
	Accent     [3]int
	AccentSoft [3]int
	PageTint   [3]int
	Text       [3]int
	Muted      [3]int
}{
	Accent:     [3]int{37, 99, 235},
	AccentSoft: [3]int{14, 165, 233},
	PageTint:   [3]int{243, 246, 251},
	Text:       [3]int{17, 24, 39},
	Muted:      [3]int{107, 114, 128},
}

// slideLayout collects the page metrics in millimeters.
var slideLayout = struct {
	Margin       float64
	FooterRoom   float64
	HeadingSize  float64
	BodySize     float64
	NotesSize    float64
	LineHeight   float64
	BulletIndent float64
	BulletGap    float64
}{
	Margin:       18,
	FooterRoom:   16,
	HeadingSize:  22,
	BodySize:     12,
	NotesSize:    9.5,
	LineHeight:   7,
	BulletIndent: 7,
	BulletGap:    2.5,
}

// VectorRenderer draws slide pages directly with vector primitives from the
// structured slide list. It needs no browser or external binary, at the cost
// of ignoring the generated HTML styling.
type VectorRenderer struct {
	logger *zap.Logger
}

func NewVectorRenderer(logger *zap.Logger) *VectorRenderer {
	return &VectorRenderer{logger: logger}
}

func (r *VectorRenderer) Backend() domain.RenderBackend {
	return domain.RenderBackendSlides
}

func (r *VectorRenderer) Available(_ context.Context) bool {
	return true
}

func (r *VectorRenderer) Render(ctx context.Context, job Job) ([]byte, error) {
	if job.Slides.IsEmpty() {
		return nil, apperrors.NewRenderError("slide deck is empty", "slides", "input", nil)
	}

	start := time.Now()
	deck := *job.Slides
	if len(deck.Slides) > constants.DeckLimits.MaxSlideCount {
		r.logger.Warn("Slide count clamped",
			zap.Int("slides", len(deck.Slides)),
			zap.Int("max", constants.DeckLimits.MaxSlideCount))
		deck.Slides = deck.Slides[:constants.DeckLimits.MaxSlideCount]
	}

	doc := newSlideDocument(job.Options)
	doc.addCover(coverTitle(job, &deck), deck.Subtitle, deck.Author, deck.Date)
	for i, slide := range deck.Slides {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewRenderError("render cancelled", "slides", "draw", err)
		}
		doc.addSlide(i, slide)
	}

	var buf bytes.Buffer
	if err := doc.pdf.Output(&buf); err != nil {
		return nil, apperrors.NewRenderError("pdf encoding failed", "slides", "encode", err)
	}

	r.logger.Info("PDF rendered",
		zap.String("backend", "slides"),
		zap.Int("slides", len(deck.Slides)),
		zap.Int("pdf_bytes", buf.Len()),
		zap.Duration("took", time.Since(start)))

	return buf.Bytes(), nil
}

func coverTitle(job Job, deck *domain.SlideDeck) string {
	title := deck.Title
	if title == "" {
		title = job.Title
	}
	if title == "" {
		title = "Untitled presentation"
	}
	return util.TruncateString(title, constants.DeckLimits.MaxTitleLength)
}

// slideDocument wraps the PDF handle with the page state needed while
// laying out one deck.
type slideDocument struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	pageW  float64
	pageH  float64
	tinted bool
}

func newSlideDocument(opts domain.RenderOptions) *slideDocument {
	orientation := "P"
	if opts.Orientation == domain.OrientationLandscape {
		orientation = "L"
	}

	pdf := fpdf.New(orientation, "mm", opts.PageSize.String(), "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")

	doc := &slideDocument{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
	doc.pageW, doc.pageH = pdf.GetPageSize()

	// Page numbers on every slide page, the cover stays clean.
	pdf.SetFooterFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(slidePalette.Muted[0], slidePalette.Muted[1], slidePalette.Muted[2])
		pdf.CellFormat(0, 6, fmt.Sprintf("%d / {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	return doc
}

func (d *slideDocument) contentWidth() float64 {
	return d.pageW - 2*slideLayout.Margin
}

func (d *slideDocument) addCover(title, subtitle, author, date string) {
	d.pdf.AddPage()

	d.pdf.SetFillColor(slidePalette.Accent[0], slidePalette.Accent[1], slidePalette.Accent[2])
	d.pdf.Rect(0, 0, d.pageW, 9, "F")
	d.pdf.SetFillColor(slidePalette.AccentSoft[0], slidePalette.AccentSoft[1], slidePalette.AccentSoft[2])
	d.pdf.Rect(0, d.pageH-5, d.pageW, 5, "F")

	d.pdf.SetFont("Helvetica", "B", 30)
	d.pdf.SetTextColor(slidePalette.Text[0], slidePalette.Text[1], slidePalette.Text[2])
	d.pdf.SetXY(slideLayout.Margin, d.pageH*0.34)
	d.pdf.MultiCell(d.contentWidth(), 13, d.tr(title), "", "C", false)

	if subtitle != "" {
		d.pdf.Ln(4)
		d.pdf.SetFont("Helvetica", "", 15)
		d.pdf.SetTextColor(slidePalette.Muted[0], slidePalette.Muted[1], slidePalette.Muted[2])
		d.pdf.SetX(slideLayout.Margin)
		d.pdf.MultiCell(d.contentWidth(), 8, d.tr(subtitle), "", "C", false)
	}

	byline := author
	if date != "" {
		if byline != "" {
			byline += "  ·  "
		}
		byline += date
	}
	if byline != "" {
		d.pdf.SetFont("Helvetica", "", 11)
		d.pdf.SetTextColor(slidePalette.Muted[0], slidePalette.Muted[1], slidePalette.Muted[2])
		d.pdf.SetXY(slideLayout.Margin, d.pageH-28)
		d.pdf.CellFormat(d.contentWidth(), 7, d.tr(byline), "", 0, "C", false, 0, "")
	}
}

func (d *slideDocument) addSlide(index int, slide domain.Slide) {
	d.tinted = index%2 == 1
	title := util.TruncateString(slide.Title, constants.DeckLimits.MaxTitleLength)
	d.startSlidePage(title, false)

	bullets := slide.Bullets
	if len(bullets) > constants.DeckLimits.MaxBulletsPerSlide {
		bullets = bullets[:constants.DeckLimits.MaxBulletsPerSlide]
	}
	for _, bullet := range bullets {
		d.writeBullet(title, bullet)
	}
	if slide.Notes != "" {
		d.writeNotes(title, slide.Notes)
	}
}

// startSlidePage opens a fresh page with the background tint and heading.
// Continuation pages repeat the heading so overflowing slides stay readable.
func (d *slideDocument) startSlidePage(title string, continuation bool) {
	d.pdf.AddPage()
	if d.tinted {
		d.pdf.SetFillColor(slidePalette.PageTint[0], slidePalette.PageTint[1], slidePalette.PageTint[2])
		d.pdf.Rect(0, 0, d.pageW, d.pageH, "F")
	}

	heading := title
	if heading == "" {
		heading = "Slide"
	}
	if continuation {
		heading += " (cont.)"
	}

	d.pdf.SetFont("Helvetica", "B", slideLayout.HeadingSize)
	d.pdf.SetTextColor(slidePalette.Text[0], slidePalette.Text[1], slidePalette.Text[2])
	d.pdf.SetXY(slideLayout.Margin, slideLayout.Margin)
	d.pdf.MultiCell(d.contentWidth(), 10, d.tr(heading), "", "", false)

	d.pdf.SetFillColor(slidePalette.Accent[0], slidePalette.Accent[1], slidePalette.Accent[2])
	d.pdf.Rect(slideLayout.Margin, d.pdf.GetY()+2, 34, 1.4, "F")
	d.pdf.SetY(d.pdf.GetY() + 10)
}

// fits reports whether a block of the given height still fits above the
// footer area.
func (d *slideDocument) fits(height float64) bool {
	return d.pdf.GetY()+height <= d.pageH-slideLayout.FooterRoom
}

func (d *slideDocument) writeBullet(slideTitle, text string) {
	d.pdf.SetFont("Helvetica", "", slideLayout.BodySize)
	translated := d.tr(text)
	width := d.contentWidth() - slideLayout.BulletIndent
	lines := d.pdf.SplitText(translated, width)
	needed := float64(len(lines))*slideLayout.LineHeight + slideLayout.BulletGap
	if !d.fits(needed) {
		d.startSlidePage(slideTitle, true)
		d.pdf.SetFont("Helvetica", "", slideLayout.BodySize)
	}

	d.pdf.SetTextColor(slidePalette.Text[0], slidePalette.Text[1], slidePalette.Text[2])
	d.pdf.SetX(slideLayout.Margin)
	d.pdf.CellFormat(slideLayout.BulletIndent, slideLayout.LineHeight, d.tr("•"), "", 0, "", false, 0, "")
	d.pdf.MultiCell(width, slideLayout.LineHeight, translated, "", "", false)
	d.pdf.SetY(d.pdf.GetY() + slideLayout.BulletGap)
}

func (d *slideDocument) writeNotes(slideTitle, notes string) {
	d.pdf.SetFont("Helvetica", "I", slideLayout.NotesSize)
	translated := d.tr("Notes: " + notes)
	lines := d.pdf.SplitText(translated, d.contentWidth())
	needed := float64(len(lines))*5.5 + 4
	if !d.fits(needed) {
		d.startSlidePage(slideTitle, true)
		d.pdf.SetFont("Helvetica", "I", slideLayout.NotesSize)
	}

	d.pdf.SetY(d.pdf.GetY() + 4)
	d.pdf.SetTextColor(slidePalette.Muted[0], slidePalette.Muted[1], slidePalette.Muted[2])
	d.pdf.SetX(slideLayout.Margin)
	d.pdf.MultiCell(d.contentWidth(), 5.5, translated, "", "", false)
}
