package deck

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/domain"
	"github.com/jadrxma/presentation-go/internal/render"
	"github.com/jadrxma/presentation-go/internal/service/ai"
	"github.com/jadrxma/presentation-go/internal/service/store"
	apperrors "github.com/jadrxma/presentation-go/pkg/errors"
)

const sampleHTML = `<!DOCTYPE html>
<html><head><title>Q3 Business Review</title></head>
<body>
<section class="slide"><h1>Q3 Business Review</h1><p>Acme Co</p></section>
<section class="slide"><h2>Revenue</h2><ul><li>Up 12% quarter over quarter</li><li>Two new enterprise accounts</li></ul></section>
</body></html>`

type fakeModel struct {
	html     string
	jsonBody string
	err      error
	lastReq  ai.Request
}

func (f *fakeModel) GenerateDocument(ctx context.Context, req ai.Request) (string, *ai.GenerateMetadata, error) {
	f.lastReq = req
	if f.err != nil {
		return "", nil, f.err
	}
	return f.html, &ai.GenerateMetadata{Provider: "openai", Model: "gpt-test"}, nil
}

func (f *fakeModel) GenerateJSON(ctx context.Context, req ai.Request, dest any) (*ai.GenerateMetadata, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	if err := json.Unmarshal([]byte(f.jsonBody), dest); err != nil {
		return nil, err
	}
	return &ai.GenerateMetadata{Provider: "gemini", Model: "gemini-test", UsedFallback: true}, nil
}

type fakeHistory struct {
	records []*domain.GenerationRecord
	err     error
}

func (f *fakeHistory) Record(ctx context.Context, record *domain.GenerationRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeHistory) Recent(ctx context.Context, limit int) ([]*domain.GenerationRecord, error) {
	return f.records, nil
}

type captureRenderer struct {
	backend domain.RenderBackend
	lastJob render.Job
}

func (c *captureRenderer) Backend() domain.RenderBackend { return c.backend }

func (c *captureRenderer) Available(ctx context.Context) bool { return true }

func (c *captureRenderer) Render(ctx context.Context, job render.Job) ([]byte, error) {
	c.lastJob = job
	return []byte("%PDF-1.4 stub"), nil
}

type fakePublisher struct {
	events []domain.JobEvent
}

func (f *fakePublisher) Publish(event domain.JobEvent) {
	f.events = append(f.events, event)
}

func (f *fakePublisher) phases() []string {
	phases := make([]string, 0, len(f.events))
	for _, event := range f.events {
		phases = append(phases, event.Phase.String())
	}
	return phases
}

func newTestService(model ModelClient, history HistoryRecorder) (*Service, *store.MemoryStore, *fakePublisher) {
	logger := zap.NewNop()
	deckStore := store.NewMemoryStore(logger)
	registry := render.NewRegistry(logger, render.NewVectorRenderer(logger))
	publisher := &fakePublisher{}
	svc := NewService(Config{
		TTL:             time.Hour,
		RenderTimeout:   10 * time.Second,
		MaxPromptLength: 4000,
	}, model, deckStore, registry, history, publisher, logger)
	return svc, deckStore, publisher
}

func TestGenerateStoresDeckAndRecordsHistory(t *testing.T) {
	model := &fakeModel{html: sampleHTML}
	history := &fakeHistory{}
	svc, _, publisher := newTestService(model, history)
	ctx := context.Background()

	deck, err := svc.Generate(ctx, GenerateRequest{
		Style:               domain.DeckStylePresentation,
		FormatInstructions:  "10 slides, dark theme",
		ContentInstructions: "Q3 results for Acme Co",
	})
	if err != nil {
		t.Fatalf("expected generation to succeed, got %v", err)
	}
	if deck.Title != "Q3 Business Review" {
		t.Fatalf("expected title from document head, got %q", deck.Title)
	}
	if deck.SlideCount != 2 {
		t.Fatalf("expected 2 slide blocks, got %d", deck.SlideCount)
	}
	if deck.Provider != "openai" || deck.UsedFallback {
		t.Fatalf("unexpected provider metadata: %s fallback=%v", deck.Provider, deck.UsedFallback)
	}
	if !strings.Contains(model.lastReq.User, "10 slides, dark theme") ||
		!strings.Contains(model.lastReq.User, "Q3 results for Acme Co") {
		t.Fatal("expected both instruction prompts in the model request")
	}

	stored, err := svc.Get(ctx, deck.ID)
	if err != nil || stored == nil {
		t.Fatalf("expected deck to be retrievable, got %v %v", stored, err)
	}
	if len(history.records) != 1 || history.records[0].DeckID != deck.ID {
		t.Fatalf("expected one history record for the deck, got %+v", history.records)
	}

	phases := publisher.phases()
	if len(phases) != 2 || phases[0] != "generating" || phases[1] != "generated" {
		t.Fatalf("unexpected event phases: %v", phases)
	}
}

func TestGenerateValidation(t *testing.T) {
	scenarios := []struct {
		name string
		req  GenerateRequest
	}{
		{
			name: "missing format instructions",
			req:  GenerateRequest{ContentInstructions: "Q3 results"},
		},
		{
			name: "missing content instructions",
			req:  GenerateRequest{FormatInstructions: "10 slides"},
		},
		{
			name: "unknown style",
			req: GenerateRequest{
				Style:               "poster",
				FormatInstructions:  "10 slides",
				ContentInstructions: "Q3 results",
			},
		},
		{
			name: "unknown mode",
			req: GenerateRequest{
				Mode:                "pptx",
				FormatInstructions:  "10 slides",
				ContentInstructions: "Q3 results",
			},
		},
		{
			name: "format instructions too long",
			req: GenerateRequest{
				FormatInstructions:  strings.Repeat("a", 5000),
				ContentInstructions: "Q3 results",
			},
		},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			model := &fakeModel{html: sampleHTML}
			svc, _, _ := newTestService(model, nil)

			_, err := svc.Generate(context.Background(), scenario.req)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			appErr, ok := apperrors.AsAppError(err)
			if !ok || appErr.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected a 400 error, got %v", err)
			}
			if model.lastReq.User != "" {
				t.Fatal("expected the model to stay untouched on invalid input")
			}
		})
	}
}

func TestPromptLengthLimitCountsRunes(t *testing.T) {
	logger := zap.NewNop()
	model := &fakeModel{html: sampleHTML}
	svc := NewService(Config{
		TTL:             time.Hour,
		RenderTimeout:   10 * time.Second,
		MaxPromptLength: 10,
	}, model, store.NewMemoryStore(logger),
		render.NewRegistry(logger, render.NewVectorRenderer(logger)), nil, nil, logger)
	ctx := context.Background()

	// 10 runes but 30 bytes. The limit is on characters, not encoding size.
	_, err := svc.Generate(ctx, GenerateRequest{
		FormatInstructions:  strings.Repeat("분", 10),
		ContentInstructions: "분기 실적",
	})
	if err != nil {
		t.Fatalf("expected a 10-rune prompt to pass the limit, got %v", err)
	}

	model.lastReq = ai.Request{}
	_, err = svc.Generate(ctx, GenerateRequest{
		FormatInstructions:  strings.Repeat("분", 11),
		ContentInstructions: "분기 실적",
	})
	if err == nil {
		t.Fatal("expected an 11-rune prompt to be rejected")
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected a 400 error, got %v", err)
	}
	if model.lastReq.User != "" {
		t.Fatal("expected the model to stay untouched on invalid input")
	}
}

func TestGenerateModelFailurePublishesFailure(t *testing.T) {
	model := &fakeModel{err: errors.New("model exploded")}
	svc, _, publisher := newTestService(model, nil)

	_, err := svc.Generate(context.Background(), GenerateRequest{
		FormatInstructions:  "10 slides",
		ContentInstructions: "Q3 results",
	})
	if err == nil {
		t.Fatal("expected the model error to surface")
	}

	last := publisher.events[len(publisher.events)-1]
	if last.Phase != domain.JobPhaseFailed || !strings.Contains(last.Detail, "model exploded") {
		t.Fatalf("expected a failed event carrying the cause, got %+v", last)
	}
}

func TestGenerateSlidesMode(t *testing.T) {
	model := &fakeModel{jsonBody: `{
		"title": "Quarterly Review",
		"subtitle": "Acme Co",
		"slides": [
			{"title": "Revenue", "bullets": ["Up 12%", "  ", "Two new accounts"]},
			{"title": "", "bullets": []},
			{"title": "Next Steps", "bullets": ["Hire two engineers"], "notes": "Keep it short"}
		]
	}`}
	svc, _, _ := newTestService(model, nil)

	deck, err := svc.Generate(context.Background(), GenerateRequest{
		Mode:                GenerateModeSlides,
		FormatInstructions:  "short deck",
		ContentInstructions: "quarterly review",
	})
	if err != nil {
		t.Fatalf("expected slides generation to succeed, got %v", err)
	}
	if deck.Slides.SlideCount() != 2 {
		t.Fatalf("expected the empty slide to be dropped, got %d slides", deck.Slides.SlideCount())
	}
	if deck.Slides.Slides[0].Bullets[1] != "Two new accounts" {
		t.Fatalf("expected blank bullets to be dropped, got %v", deck.Slides.Slides[0].Bullets)
	}
	if deck.Title != "Quarterly Review" {
		t.Fatalf("unexpected deck title: %q", deck.Title)
	}
	if !strings.Contains(deck.HTML, "<section") {
		t.Fatal("expected a synthesized HTML preview")
	}
	if !deck.UsedFallback {
		t.Fatal("expected fallback metadata to be carried over")
	}
}

func TestGenerateSlidesModeRejectsEmptyReply(t *testing.T) {
	model := &fakeModel{jsonBody: `{"title": "Empty", "slides": []}`}
	svc, _, publisher := newTestService(model, nil)

	_, err := svc.Generate(context.Background(), GenerateRequest{
		Mode:                GenerateModeSlides,
		FormatInstructions:  "short deck",
		ContentInstructions: "quarterly review",
	})
	if err == nil || !strings.Contains(err.Error(), "no usable slides") {
		t.Fatalf("expected a no-usable-slides error, got %v", err)
	}

	last := publisher.events[len(publisher.events)-1]
	if last.Phase != domain.JobPhaseFailed {
		t.Fatalf("expected a failed event, got %+v", last)
	}
}

func TestGetUnknownDeckReturnsNotFound(t *testing.T) {
	svc, _, _ := newTestService(&fakeModel{html: sampleHTML}, nil)

	_, err := svc.Get(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected a not-found error")
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected a 404 error, got %v", err)
	}
}

func TestExportPDFWithVectorBackend(t *testing.T) {
	model := &fakeModel{jsonBody: `{
		"title": "Quarterly Review",
		"slides": [{"title": "Revenue", "bullets": ["Up 12%"]}]
	}`}
	svc, _, publisher := newTestService(model, nil)
	ctx := context.Background()

	deck, err := svc.Generate(ctx, GenerateRequest{
		Mode:                GenerateModeSlides,
		FormatInstructions:  "short deck",
		ContentInstructions: "quarterly review",
	})
	if err != nil {
		t.Fatalf("expected generation to succeed, got %v", err)
	}

	filename, pdf, err := svc.ExportPDF(ctx, deck.ID, domain.RenderOptions{Backend: domain.RenderBackendSlides})
	if err != nil {
		t.Fatalf("expected export to succeed, got %v", err)
	}
	if !strings.HasSuffix(filename, ".pdf") {
		t.Fatalf("expected a .pdf filename, got %q", filename)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("expected PDF bytes")
	}

	phases := publisher.phases()
	if phases[len(phases)-2] != "rendering" || phases[len(phases)-1] != "rendered" {
		t.Fatalf("expected rendering and rendered events, got %v", phases)
	}
}

func TestExportPDFOutlinesHTMLDecks(t *testing.T) {
	model := &fakeModel{html: sampleHTML}
	svc, _, _ := newTestService(model, nil)
	ctx := context.Background()

	deck, err := svc.Generate(ctx, GenerateRequest{
		FormatInstructions:  "10 slides",
		ContentInstructions: "Q3 results",
	})
	if err != nil {
		t.Fatalf("expected generation to succeed, got %v", err)
	}
	if !deck.Slides.IsEmpty() {
		t.Fatal("expected an HTML deck without a structured slide list")
	}

	_, pdf, err := svc.ExportPDF(ctx, deck.ID, domain.RenderOptions{Backend: domain.RenderBackendSlides})
	if err != nil {
		t.Fatalf("expected the outline fallback to render, got %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("expected PDF bytes")
	}
}

func TestExportPDFUnregisteredBackend(t *testing.T) {
	model := &fakeModel{html: sampleHTML}
	svc, _, _ := newTestService(model, nil)
	ctx := context.Background()

	deck, err := svc.Generate(ctx, GenerateRequest{
		FormatInstructions:  "10 slides",
		ContentInstructions: "Q3 results",
	})
	if err != nil {
		t.Fatalf("expected generation to succeed, got %v", err)
	}

	_, _, err = svc.ExportPDF(ctx, deck.ID, domain.RenderOptions{Backend: domain.RenderBackendChromium})
	if err == nil || !strings.Contains(err.Error(), "unknown render backend") {
		t.Fatalf("expected an unknown backend error, got %v", err)
	}
}

func TestExportPDFCustomFilename(t *testing.T) {
	model := &fakeModel{jsonBody: `{
		"title": "Quarterly Review",
		"slides": [{"title": "Revenue", "bullets": ["Up 12%"]}]
	}`}
	svc, _, _ := newTestService(model, nil)
	ctx := context.Background()

	deck, err := svc.Generate(ctx, GenerateRequest{
		Mode:                GenerateModeSlides,
		FormatInstructions:  "short deck",
		ContentInstructions: "quarterly review",
	})
	if err != nil {
		t.Fatalf("expected generation to succeed, got %v", err)
	}

	filename, _, err := svc.ExportPDF(ctx, deck.ID, domain.RenderOptions{
		Backend:  domain.RenderBackendSlides,
		Filename: "board meeting deck",
	})
	if err != nil {
		t.Fatalf("expected export to succeed, got %v", err)
	}
	if filename != "board_meeting_deck.pdf" {
		t.Fatalf("expected the requested name to be sanitized, got %q", filename)
	}
}

func TestExportPDFAppliesConfiguredPageDefaults(t *testing.T) {
	logger := zap.NewNop()
	capture := &captureRenderer{backend: domain.RenderBackendChromium}
	svc := NewService(Config{
		TTL:                time.Hour,
		RenderTimeout:      10 * time.Second,
		MaxPromptLength:    4000,
		DefaultPageSize:    domain.PageSizeLetter,
		DefaultOrientation: domain.OrientationLandscape,
	}, &fakeModel{html: sampleHTML}, store.NewMemoryStore(logger),
		render.NewRegistry(logger, capture), nil, nil, logger)
	ctx := context.Background()

	deck, err := svc.Generate(ctx, GenerateRequest{
		FormatInstructions:  "10 slides",
		ContentInstructions: "Q3 results",
	})
	if err != nil {
		t.Fatalf("expected generation to succeed, got %v", err)
	}

	if _, _, err := svc.ExportPDF(ctx, deck.ID, domain.RenderOptions{}); err != nil {
		t.Fatalf("expected export to succeed, got %v", err)
	}
	opts := capture.lastJob.Options
	if opts.PageSize != domain.PageSizeLetter || opts.Orientation != domain.OrientationLandscape {
		t.Fatalf("expected the configured page defaults, got %+v", opts)
	}

	if _, _, err := svc.ExportPDF(ctx, deck.ID, domain.RenderOptions{PageSize: domain.PageSizeA4}); err != nil {
		t.Fatalf("expected export to succeed, got %v", err)
	}
	if capture.lastJob.Options.PageSize != domain.PageSizeA4 {
		t.Fatalf("expected the explicit page size to win, got %+v", capture.lastJob.Options)
	}
}
