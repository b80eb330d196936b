package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/domain"
)

type fakeRenderer struct {
	backend   domain.RenderBackend
	available bool
}

func (f *fakeRenderer) Backend() domain.RenderBackend { return f.backend }

func (f *fakeRenderer) Available(_ context.Context) bool { return f.available }

func (f *fakeRenderer) Render(context.Context, Job) ([]byte, error) {
	return []byte("%PDF-fake"), nil
}

func slideOptions(orientation domain.Orientation) domain.RenderOptions {
	return domain.RenderOptions{
		Backend:     domain.RenderBackendSlides,
		Media:       domain.MediaTypeScreen,
		PageSize:    domain.PageSizeA4,
		Orientation: orientation,
	}
}

func TestRegistryGetAndList(t *testing.T) {
	chromium := &fakeRenderer{backend: domain.RenderBackendChromium, available: false}
	slides := &fakeRenderer{backend: domain.RenderBackendSlides, available: true}
	registry := NewRegistry(zap.NewNop(), chromium, nil, slides, &fakeRenderer{backend: domain.RenderBackendChromium})

	got, err := registry.Get(domain.RenderBackendSlides)
	if err != nil || got != slides {
		t.Fatalf("expected the registered slides renderer, got %v %v", got, err)
	}
	if first, _ := registry.Get(domain.RenderBackendChromium); first != chromium {
		t.Fatal("expected the first registration to win on duplicates")
	}

	_, err = registry.Get(domain.RenderBackendWkhtmltopdf)
	if err == nil || !strings.Contains(err.Error(), "unknown render backend") {
		t.Fatalf("expected an unknown backend error, got %v", err)
	}

	statuses := registry.List(context.Background())
	if len(statuses) != 2 {
		t.Fatalf("expected 2 backends, got %d", len(statuses))
	}
	if statuses[0].Backend != domain.RenderBackendChromium || statuses[0].Available {
		t.Fatalf("unexpected first status: %+v", statuses[0])
	}
	if statuses[1].Backend != domain.RenderBackendSlides || !statuses[1].Available {
		t.Fatalf("unexpected second status: %+v", statuses[1])
	}
	if statuses[1].Description == "" {
		t.Fatal("expected a backend description")
	}
}

func TestVectorRendererProducesPDF(t *testing.T) {
	renderer := NewVectorRenderer(zap.NewNop())
	job := Job{
		Title: "Quarterly Review",
		Slides: &domain.SlideDeck{
			Title:    "Quarterly Review",
			Subtitle: "Acme Co",
			Author:   "Finance Team",
			Date:     "March 2024",
			Slides: []domain.Slide{
				{Title: "Revenue", Bullets: []string{"Up 12% quarter over quarter", "Two new enterprise accounts"}},
				{Title: "Next Steps", Bullets: []string{"Hire two engineers"}, Notes: "Keep this one short"},
			},
		},
		Options: slideOptions(domain.OrientationLandscape),
	}

	pdf, err := renderer.Render(context.Background(), job)
	if err != nil {
		t.Fatalf("expected the render to succeed, got %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("expected PDF bytes")
	}
	if len(pdf) < 1000 {
		t.Fatalf("suspiciously small PDF: %d bytes", len(pdf))
	}
}

func TestVectorRendererRejectsEmptyDeck(t *testing.T) {
	renderer := NewVectorRenderer(zap.NewNop())

	_, err := renderer.Render(context.Background(), Job{
		Slides:  &domain.SlideDeck{Title: "Empty"},
		Options: slideOptions(domain.OrientationLandscape),
	})
	if err == nil || !strings.Contains(err.Error(), "slide deck is empty") {
		t.Fatalf("expected an empty deck error, got %v", err)
	}
}

func TestVectorRendererHonorsCancelledContext(t *testing.T) {
	renderer := NewVectorRenderer(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := renderer.Render(ctx, Job{
		Slides: &domain.SlideDeck{
			Title:  "Cancelled",
			Slides: []domain.Slide{{Title: "One", Bullets: []string{"bullet"}}},
		},
		Options: slideOptions(domain.OrientationLandscape),
	})
	if err == nil || !strings.Contains(err.Error(), "cancelled") {
		t.Fatalf("expected a cancellation error, got %v", err)
	}
}

func TestVectorRendererClampsOversizedDecks(t *testing.T) {
	renderer := NewVectorRenderer(zap.NewNop())
	deck := &domain.SlideDeck{Title: "Big Deck"}
	for i := 0; i < 50; i++ {
		deck.Slides = append(deck.Slides, domain.Slide{
			Title:   fmt.Sprintf("Slide %d", i+1),
			Bullets: []string{"one short bullet"},
		})
	}

	pdf, err := renderer.Render(context.Background(), Job{
		Slides:  deck,
		Options: slideOptions(domain.OrientationLandscape),
	})
	if err != nil {
		t.Fatalf("expected the render to succeed, got %v", err)
	}
	// Cover plus the 40 slide pages that survive the clamp.
	if !bytes.Contains(pdf, []byte("/Count 41")) {
		t.Fatal("expected the slide count to be clamped to the limit")
	}
}

func TestChromiumRendererRejectsEmptyHTML(t *testing.T) {
	renderer := NewChromiumRenderer("", false, zap.NewNop())

	_, err := renderer.Render(context.Background(), Job{Options: slideOptions(domain.OrientationPortrait)})
	if err == nil || !strings.Contains(err.Error(), "HTML is empty") {
		t.Fatalf("expected an input error before launching the browser, got %v", err)
	}
}

func TestChromiumRendererUnavailableWithBogusPath(t *testing.T) {
	renderer := NewChromiumRenderer("/nonexistent/bin/chrome", false, zap.NewNop())
	if renderer.Available(context.Background()) {
		t.Fatal("expected a missing binary to report unavailable")
	}
}

func TestBackendIdentifiers(t *testing.T) {
	logger := zap.NewNop()
	if NewChromiumRenderer("", false, logger).Backend() != domain.RenderBackendChromium {
		t.Fatal("unexpected chromium backend name")
	}
	if NewWkhtmltopdfRenderer("", logger).Backend() != domain.RenderBackendWkhtmltopdf {
		t.Fatal("unexpected wkhtmltopdf backend name")
	}
	if NewVectorRenderer(logger).Backend() != domain.RenderBackendSlides {
		t.Fatal("unexpected vector backend name")
	}
}
