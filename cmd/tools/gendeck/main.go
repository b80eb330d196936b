// Command gendeck generates a document from instruction files without going
// through the HTTP server, for prompt iteration from the terminal.
//
// Usage:
//
//	gendeck -style deck -content-file brief.txt -out weekly.html
//	gendeck -mode slides -out weekly.json
//
// Instruction files default to the same sample text the UI pre-fills.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/config"
	"github.com/jadrxma/presentation-go/internal/domain"
	"github.com/jadrxma/presentation-go/internal/prompt"
	"github.com/jadrxma/presentation-go/internal/service/ai"
	"github.com/jadrxma/presentation-go/internal/service/deck"
)

const (
	defaultOutput  = "deck.html"
	requestTimeout = 120 * time.Second
)

func main() {
	var style string
	var mode string
	var formatFile string
	var contentFile string
	var output string
	var openAIModel string
	var geminiModel string
	var maxOutputTokens int

	flag.StringVar(&style, "style", "deck", "document style: deck or report")
	flag.StringVar(&mode, "mode", "html", "generation mode: html or slides")
	flag.StringVar(&formatFile, "format-file", "", "file holding the format instructions")
	flag.StringVar(&contentFile, "content-file", "", "file holding the content instructions")
	flag.StringVar(&output, "out", defaultOutput, "output path (.html, or .json for slides mode)")
	flag.StringVar(&openAIModel, "model", "", "OpenAI model override")
	flag.StringVar(&geminiModel, "gemini-model", "", "Gemini model override")
	flag.IntVar(&maxOutputTokens, "max-output-tokens", 0, "maximum output tokens override (0 uses the config value)")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	openAIKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	geminiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))

	var cfg *config.Config
	if openAIKey == "" && geminiKey == "" {
		loaded, err := config.Load()
		if err != nil {
			logger.Fatal("failed to load config", zap.Error(err))
			return
		}
		cfg = loaded
		openAIKey = cfg.OpenAI.APIKey
		geminiKey = cfg.Gemini.APIKey
	}
	if openAIKey == "" && geminiKey == "" {
		logger.Fatal("OPENAI_API_KEY or GEMINI_API_KEY is not configured in environment or config")
		return
	}

	formatInstructions := readInstructions(logger, formatFile, prompt.DefaultFormatInstructions)
	contentInstructions := readInstructions(logger, contentFile, prompt.DefaultContentInstructions)

	mmCfg := ai.ModelManagerConfig{
		OpenAIAPIKey:       openAIKey,
		GeminiAPIKey:       geminiKey,
		DefaultOpenAIModel: openAIModel,
		DefaultGeminiModel: geminiModel,
		EnableFallback:     geminiKey != "",
		MaxOutputTokens:    maxOutputTokens,
	}
	if cfg != nil {
		if mmCfg.DefaultOpenAIModel == "" {
			mmCfg.DefaultOpenAIModel = cfg.OpenAI.Model
		}
		if mmCfg.DefaultGeminiModel == "" {
			mmCfg.DefaultGeminiModel = cfg.Gemini.Model
		}
		mmCfg.Temperature = cfg.Generation.Temperature
		if mmCfg.MaxOutputTokens == 0 {
			mmCfg.MaxOutputTokens = cfg.Generation.MaxOutputTokens
		}
	}

	ctx := context.Background()
	mm, err := ai.NewModelManager(ctx, mmCfg, logger)
	if err != nil {
		logger.Fatal("failed to create model manager", zap.Error(err))
	}

	genCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	start := time.Now()
	switch mode {
	case "slides":
		generateSlides(genCtx, logger, mm, formatInstructions, contentInstructions, output)
	case "html":
		generateHTML(genCtx, logger, mm, style, formatInstructions, contentInstructions, output)
	default:
		logger.Fatal("unknown mode, use html or slides", zap.String("mode", mode))
	}

	logger.Info("Generation completed",
		zap.String("out", output),
		zap.Duration("took", time.Since(start)))
}

func generateHTML(ctx context.Context, logger *zap.Logger, mm *ai.ModelManager, style, formatInstructions, contentInstructions, output string) {
	var req ai.Request
	switch style {
	case "report":
		req = ai.Request{
			System: prompt.BuildReportSystem(),
			User: prompt.BuildReportUser(prompt.ReportVars{
				FormatInstructions:  formatInstructions,
				ContentInstructions: contentInstructions,
			}),
		}
	case "deck":
		req = ai.Request{
			System: prompt.BuildDeckSystem(),
			User: prompt.BuildDeckUser(prompt.DeckVars{
				FormatInstructions:  formatInstructions,
				ContentInstructions: contentInstructions,
			}),
		}
	default:
		logger.Fatal("unknown style, use deck or report", zap.String("style", style))
		return
	}

	html, meta, err := mm.GenerateDocument(ctx, req)
	if err != nil {
		logger.Fatal("generation failed", zap.Error(err))
	}
	logger.Info("Document generated",
		zap.String("provider", meta.Provider),
		zap.String("model", meta.Model),
		zap.Bool("used_fallback", meta.UsedFallback),
		zap.Int("html_bytes", len(html)))

	if err := os.WriteFile(output, []byte(html), 0o644); err != nil {
		logger.Fatal("failed to write output", zap.Error(err))
	}
}

func generateSlides(ctx context.Context, logger *zap.Logger, mm *ai.ModelManager, formatInstructions, contentInstructions, output string) {
	req := ai.Request{
		System: prompt.BuildSlidesSystem(),
		User: prompt.BuildSlidesUser(prompt.SlidesVars{
			FormatInstructions:  formatInstructions,
			ContentInstructions: contentInstructions,
		}),
	}

	var slides domain.SlideDeck
	meta, err := mm.GenerateJSON(ctx, req, &slides)
	if err != nil {
		logger.Fatal("generation failed", zap.Error(err))
	}
	slides.Normalize()
	if slides.IsEmpty() {
		logger.Fatal("model returned no usable slides")
	}
	logger.Info("Slides generated",
		zap.String("provider", meta.Provider),
		zap.String("model", meta.Model),
		zap.Int("slides", slides.SlideCount()))

	data, err := json.MarshalIndent(&slides, "", "  ")
	if err != nil {
		logger.Fatal("failed to encode slides", zap.Error(err))
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		logger.Fatal("failed to write output", zap.Error(err))
	}

	// A preview document alongside the JSON, for a quick look in a browser.
	previewPath := strings.TrimSuffix(output, filepath.Ext(output)) + ".html"
	if err := os.WriteFile(previewPath, []byte(deck.PreviewHTML(&slides)), 0o644); err != nil {
		logger.Fatal("failed to write preview", zap.Error(err))
	}
	logger.Info("Preview written", zap.String("path", previewPath))
}

func readInstructions(logger *zap.Logger, path, fallback string) string {
	if path == "" {
		return fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("failed to read instructions file", zap.String("path", path), zap.Error(err))
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		logger.Fatal("instructions file is empty", zap.String("path", path))
	}
	return text
}
