package render

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/domain"
	apperrors "github.com/jadrxma/presentation-go/pkg/errors"
)

// chromiumCandidates are probed in order when no binary path is configured.
var chromiumCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

// ChromiumRenderer prints documents through a headless browser over the
// DevTools protocol.
type ChromiumRenderer struct {
	execPath  string
	noSandbox bool
	logger    *zap.Logger
}

func NewChromiumRenderer(execPath string, noSandbox bool, logger *zap.Logger) *ChromiumRenderer {
	return &ChromiumRenderer{
		execPath:  execPath,
		noSandbox: noSandbox,
		logger:    logger,
	}
}

func (r *ChromiumRenderer) Backend() domain.RenderBackend {
	return domain.RenderBackendChromium
}

func (r *ChromiumRenderer) Available(_ context.Context) bool {
	if r.execPath != "" {
		_, err := os.Stat(r.execPath)
		return err == nil
	}
	for _, name := range chromiumCandidates {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

// Render launches a fresh browser with a clean profile for every job, so no
// state carries over between exports. The browser is torn down when the job
// context ends.
func (r *ChromiumRenderer) Render(ctx context.Context, job Job) ([]byte, error) {
	if job.HTML == "" {
		return nil, apperrors.NewRenderError("document HTML is empty", "chromium", "input", nil)
	}

	start := time.Now()

	opts := make([]chromedp.ExecAllocatorOption, 0, len(chromedp.DefaultExecAllocatorOptions)+2)
	opts = append(opts, chromedp.DefaultExecAllocatorOptions[:]...)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}
	if r.noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	paperWidth, paperHeight := job.Options.PageSize.Inches()
	landscape := job.Options.Orientation == domain.OrientationLandscape

	var pdf []byte
	stage := "launch"
	err := chromedp.Run(tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			stage = "navigate"
			return chromedp.Navigate("about:blank").Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			stage = "set-content"
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, job.HTML).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			stage = "emulate-media"
			return emulation.SetEmulatedMedia().WithMedia(job.Options.Media.String()).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			stage = "print"
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithLandscape(landscape).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, apperrors.NewRenderError("chromium render failed", "chromium", stage, err)
	}

	r.logger.Info("PDF rendered",
		zap.String("backend", "chromium"),
		zap.String("media", job.Options.Media.String()),
		zap.Int("pdf_bytes", len(pdf)),
		zap.Duration("took", time.Since(start)))

	return pdf, nil
}
