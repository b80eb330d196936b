// exportpdf converts a generated HTML document or a structured slide-list
// JSON file into PDF without running the server. Useful for checking how
// the individual backends lay a document out.
//
// Usage:
//
//	exportpdf -in deck.html -out deck.pdf -backend chromium
//	exportpdf -in slides.json -out deck.pdf -backend slides
//	exportpdf -in deck.html -out deck.pdf -backend all
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/domain"
	"github.com/jadrxma/presentation-go/internal/render"
	"github.com/jadrxma/presentation-go/internal/service/deck"
)

func main() {
	var (
		inPath      = flag.String("in", "", "input file, .html or slide-list .json")
		outPath     = flag.String("out", "out.pdf", "output PDF path (suffixed per backend with -backend all)")
		backendName = flag.String("backend", "chromium", "chromium, wkhtmltopdf, slides or all")
		media       = flag.String("media", "screen", "CSS media to emulate, screen or print")
		pageSize    = flag.String("page", "A4", "page size, A4 or Letter")
		orientation = flag.String("orientation", "portrait", "portrait or landscape")
		timeout     = flag.Duration("timeout", 90*time.Second, "per-backend render timeout")
		chromePath  = flag.String("chrome", os.Getenv("CHROME_PATH"), "chromium binary path")
		noSandbox   = flag.Bool("no-sandbox", os.Getenv("CHROME_NO_SANDBOX") == "true", "pass --no-sandbox to chromium")
		wkhtmlPath  = flag.String("wkhtmltopdf", os.Getenv("WKHTMLTOPDF_PATH"), "wkhtmltopdf binary path")
	)
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if *inPath == "" {
		logger.Fatal("missing -in flag")
	}

	job, err := loadJob(*inPath)
	if err != nil {
		logger.Fatal("failed to load input", zap.Error(err))
	}
	job.Options = domain.RenderOptions{
		Media:       domain.MediaType(*media),
		PageSize:    domain.PageSize(*pageSize),
		Orientation: domain.Orientation(*orientation),
	}
	job.Options.ApplyDefaults()

	registry := render.NewRegistry(logger,
		render.NewChromiumRenderer(*chromePath, *noSandbox, logger),
		render.NewWkhtmltopdfRenderer(*wkhtmlPath, logger),
		render.NewVectorRenderer(logger),
	)

	ctx := context.Background()

	if *backendName == "all" {
		exportAll(ctx, logger, registry, job, *outPath, *timeout)
		return
	}

	job.Options.Backend = domain.RenderBackend(*backendName)
	if err := job.Options.Validate(); err != nil {
		logger.Fatal("invalid options", zap.Error(err))
	}
	if err := exportOne(ctx, registry, job, job.Options.Backend, *outPath, *timeout); err != nil {
		logger.Fatal("export failed", zap.Error(err))
	}
	logger.Info("PDF written", zap.String("path", *outPath))
}

// exportAll runs every available backend concurrently, writing one file per
// backend next to the requested output path.
func exportAll(ctx context.Context, logger *zap.Logger, registry *render.Registry, job render.Job, outPath string, timeout time.Duration) {
	ext := filepath.Ext(outPath)
	base := strings.TrimSuffix(outPath, ext)
	if ext == "" {
		ext = ".pdf"
	}

	var (
		mu      sync.Mutex
		written []string
	)

	p := pool.New().WithMaxGoroutines(3)
	for _, status := range registry.List(ctx) {
		status := status
		if !status.Available {
			logger.Warn("Skipping unavailable backend", zap.String("backend", status.Backend.String()))
			continue
		}
		p.Go(func() {
			path := fmt.Sprintf("%s_%s%s", base, status.Backend, ext)
			if err := exportOne(ctx, registry, job, status.Backend, path, timeout); err != nil {
				logger.Error("Backend export failed",
					zap.String("backend", status.Backend.String()),
					zap.Error(err))
				return
			}
			mu.Lock()
			written = append(written, path)
			mu.Unlock()
		})
	}
	p.Wait()

	if len(written) == 0 {
		logger.Fatal("no backend produced a PDF")
	}
	logger.Info("PDFs written", zap.Strings("paths", written))
}

func exportOne(ctx context.Context, registry *render.Registry, job render.Job, backend domain.RenderBackend, outPath string, timeout time.Duration) error {
	renderer, err := registry.Get(backend)
	if err != nil {
		return err
	}

	job.Options.Backend = backend
	if backend == domain.RenderBackendSlides && job.Slides.IsEmpty() {
		outline, err := deck.Outline(&domain.Deck{Title: job.Title, HTML: job.HTML})
		if err != nil {
			return err
		}
		job.Slides = outline
	}

	renderCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pdf, err := renderer.Render(renderCtx, job)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, pdf, 0o644)
}

// loadJob reads the input file. JSON inputs are treated as a structured
// slide list and get a synthesized HTML document so the browser backends
// work on them too.
func loadJob(path string) (render.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return render.Job{}, err
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var slides domain.SlideDeck
		if err := json.Unmarshal(data, &slides); err != nil {
			return render.Job{}, fmt.Errorf("parse slide list: %w", err)
		}
		slides.Normalize()
		if slides.IsEmpty() {
			return render.Job{}, fmt.Errorf("slide list %s has no usable slides", path)
		}
		return render.Job{
			Title:  slides.Title,
			HTML:   deck.PreviewHTML(&slides),
			Slides: &slides,
		}, nil
	}

	return render.Job{
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		HTML:  string(data),
	}, nil
}
