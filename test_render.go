//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/domain"
	"github.com/jadrxma/presentation-go/internal/render"
	"github.com/jadrxma/presentation-go/internal/service/deck"
)

// Manual render check, run with: go run test_render.go
// Writes test_render_*.pdf into the working directory.
func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	sample := &domain.SlideDeck{
		Title:    "Render Check",
		Subtitle: "All three backends",
		Date:     time.Now().Format("2006-01-02"),
		Slides: []domain.Slide{
			{Title: "Vector", Bullets: []string{"Pages drawn directly", "No browser involved"}},
			{Title: "Browsers", Bullets: []string{"Chromium prints the HTML", "wkhtmltopdf lays it out"}, Notes: "Needs the binaries installed"},
		},
	}
	options := domain.RenderOptions{}
	options.ApplyDefaults()
	options.Orientation = domain.OrientationLandscape

	// Test 1: vector backend
	fmt.Println("\n=== Test 1: Vector backend ===")
	vector := render.NewVectorRenderer(logger)
	pdf, err := vector.Render(ctx, render.Job{Title: sample.Title, Slides: sample, Options: options})
	if err != nil {
		logger.Error("❌ Vector render failed", zap.Error(err))
	} else if err := os.WriteFile("test_render_slides.pdf", pdf, 0o644); err != nil {
		logger.Error("❌ Failed to write PDF", zap.Error(err))
	} else {
		fmt.Printf("✅ test_render_slides.pdf written (%d bytes)\n", len(pdf))
	}

	// Test 2: outline extraction from HTML
	fmt.Println("\n=== Test 2: Outline extraction ===")
	html := deck.PreviewHTML(sample)
	outline, err := deck.Outline(&domain.Deck{Title: sample.Title, HTML: html})
	if err != nil {
		logger.Error("❌ Outline extraction failed", zap.Error(err))
	} else {
		fmt.Printf("✅ Outline extracted: %d slides\n", outline.SlideCount())
		for i, slide := range outline.Slides {
			fmt.Printf("  Slide #%d: %s (%d bullets)\n", i+1, slide.Title, len(slide.Bullets))
		}
	}

	// Test 3: chromium backend, when a browser is installed
	fmt.Println("\n=== Test 3: Chromium backend ===")
	chromium := render.NewChromiumRenderer(os.Getenv("CHROME_PATH"), os.Getenv("CHROME_NO_SANDBOX") == "true", logger)
	if !chromium.Available(ctx) {
		fmt.Println("⚠ No browser binary found, skipping")
	} else {
		pdf, err := chromium.Render(ctx, render.Job{Title: sample.Title, HTML: html, Options: options})
		if err != nil {
			logger.Error("❌ Chromium render failed", zap.Error(err))
		} else if err := os.WriteFile("test_render_chromium.pdf", pdf, 0o644); err != nil {
			logger.Error("❌ Failed to write PDF", zap.Error(err))
		} else {
			fmt.Printf("✅ test_render_chromium.pdf written (%d bytes)\n", len(pdf))
		}
	}

	// Test 4: wkhtmltopdf backend, when the binary is installed
	fmt.Println("\n=== Test 4: wkhtmltopdf backend ===")
	wk := render.NewWkhtmltopdfRenderer(os.Getenv("WKHTMLTOPDF_PATH"), logger)
	if !wk.Available(ctx) {
		fmt.Println("⚠ wkhtmltopdf not found, skipping")
	} else {
		pdf, err := wk.Render(ctx, render.Job{Title: sample.Title, HTML: html, Options: options})
		if err != nil {
			logger.Error("❌ wkhtmltopdf render failed", zap.Error(err))
		} else if err := os.WriteFile("test_render_wkhtmltopdf.pdf", pdf, 0o644); err != nil {
			logger.Error("❌ Failed to write PDF", zap.Error(err))
		} else {
			fmt.Printf("✅ test_render_wkhtmltopdf.pdf written (%d bytes)\n", len(pdf))
		}
	}

	fmt.Println("\n=== All tests completed ===")
}
