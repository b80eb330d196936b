package render

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/domain"
	apperrors "github.com/jadrxma/presentation-go/pkg/errors"
)

const wkhtmltopdfBinary = "wkhtmltopdf"

// WkhtmltopdfRenderer lays out documents through the wkhtmltopdf engine.
// The engine predates modern CSS grid and flex gaps, so heavily styled decks
// render more faithfully through the chromium backend; this one needs no
// browser on the host.
type WkhtmltopdfRenderer struct {
	binaryPath string
	logger     *zap.Logger
}

func NewWkhtmltopdfRenderer(binaryPath string, logger *zap.Logger) *WkhtmltopdfRenderer {
	if binaryPath != "" {
		wkhtmltopdf.SetPath(binaryPath)
	}
	return &WkhtmltopdfRenderer{
		binaryPath: binaryPath,
		logger:     logger,
	}
}

func (r *WkhtmltopdfRenderer) Backend() domain.RenderBackend {
	return domain.RenderBackendWkhtmltopdf
}

func (r *WkhtmltopdfRenderer) Available(_ context.Context) bool {
	if r.binaryPath != "" {
		_, err := os.Stat(r.binaryPath)
		return err == nil
	}
	_, err := exec.LookPath(wkhtmltopdfBinary)
	return err == nil
}

func (r *WkhtmltopdfRenderer) Render(ctx context.Context, job Job) ([]byte, error) {
	if job.HTML == "" {
		return nil, apperrors.NewRenderError("document HTML is empty", "wkhtmltopdf", "input", nil)
	}

	start := time.Now()

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, apperrors.NewRenderError("wkhtmltopdf binary not found", "wkhtmltopdf", "locate-binary", err)
	}

	pdfg.PageSize.Set(pageSizeFlag(job.Options.PageSize))
	pdfg.Orientation.Set(orientationFlag(job.Options.Orientation))
	pdfg.MarginTop.Set(0)
	pdfg.MarginBottom.Set(0)
	pdfg.MarginLeft.Set(0)
	pdfg.MarginRight.Set(0)
	if job.Title != "" {
		pdfg.Title.Set(job.Title)
	}

	htmlPage := wkhtmltopdf.NewPageReader(strings.NewReader(job.HTML))
	htmlPage.Encoding.Set("utf-8")
	if job.Options.Media == domain.MediaTypePrint {
		htmlPage.PrintMediaType.Set(true)
	}
	pdfg.AddPage(htmlPage)

	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, apperrors.NewRenderError("wkhtmltopdf conversion failed", "wkhtmltopdf", "convert", err)
	}

	pdf := pdfg.Bytes()
	r.logger.Info("PDF rendered",
		zap.String("backend", "wkhtmltopdf"),
		zap.String("media", job.Options.Media.String()),
		zap.Int("pdf_bytes", len(pdf)),
		zap.Duration("took", time.Since(start)))

	return pdf, nil
}

func pageSizeFlag(size domain.PageSize) string {
	if size == domain.PageSizeLetter {
		return wkhtmltopdf.PageSizeLetter
	}
	return wkhtmltopdf.PageSizeA4
}

func orientationFlag(orientation domain.Orientation) string {
	if orientation == domain.OrientationLandscape {
		return wkhtmltopdf.OrientationLandscape
	}
	return wkhtmltopdf.OrientationPortrait
}
