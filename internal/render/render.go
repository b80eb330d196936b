// Package render turns generated documents into PDF bytes. Three
// interchangeable backends are provided: a headless Chromium print, the
// wkhtmltopdf engine, and a direct vector builder that draws pages from
// the structured slide list without any HTML engine.
package render

import (
	"context"

	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/domain"
	apperrors "github.com/jadrxma/presentation-go/pkg/errors"
)

// Job carries everything a backend needs for one export.
type Job struct {
	// Title labels the PDF document metadata.
	Title string
	// HTML is the self-contained document, used by the browser backends.
	HTML string
	// Slides is the structured deck, used by the vector backend.
	Slides *domain.SlideDeck
	// Options selects media, page size and orientation.
	Options domain.RenderOptions
}

// Renderer converts a job into a finished PDF.
type Renderer interface {
	Backend() domain.RenderBackend
	// Available reports whether the backend can run on this host, for
	// example whether its external binary is installed.
	Available(ctx context.Context) bool
	Render(ctx context.Context, job Job) ([]byte, error)
}

// BackendStatus describes one registered backend for API consumers.
type BackendStatus struct {
	Backend     domain.RenderBackend `json:"backend"`
	Available   bool                 `json:"available"`
	Description string               `json:"description"`
}

var backendDescriptions = map[domain.RenderBackend]string{
	domain.RenderBackendChromium:    "Headless Chromium print-to-PDF, best CSS fidelity",
	domain.RenderBackendWkhtmltopdf: "wkhtmltopdf HTML layout engine",
	domain.RenderBackendSlides:      "Vector slide builder, no HTML engine",
}

// Registry holds the configured renderers keyed by backend name.
type Registry struct {
	renderers map[domain.RenderBackend]Renderer
	order     []domain.RenderBackend
	logger    *zap.Logger
}

func NewRegistry(logger *zap.Logger, renderers ...Renderer) *Registry {
	reg := &Registry{
		renderers: make(map[domain.RenderBackend]Renderer, len(renderers)),
		logger:    logger,
	}
	for _, r := range renderers {
		if r == nil {
			continue
		}
		backend := r.Backend()
		if _, dup := reg.renderers[backend]; dup {
			continue
		}
		reg.renderers[backend] = r
		reg.order = append(reg.order, backend)
	}
	return reg
}

// Get returns the renderer for the backend, or a validation error when no
// such backend is registered.
func (r *Registry) Get(backend domain.RenderBackend) (Renderer, error) {
	renderer, ok := r.renderers[backend]
	if !ok {
		return nil, apperrors.NewValidationError("unknown render backend", "backend", backend.String())
	}
	return renderer, nil
}

// List reports every registered backend with its current availability, in
// registration order.
func (r *Registry) List(ctx context.Context) []BackendStatus {
	statuses := make([]BackendStatus, 0, len(r.order))
	for _, backend := range r.order {
		renderer := r.renderers[backend]
		statuses = append(statuses, BackendStatus{
			Backend:     backend,
			Available:   renderer.Available(ctx),
			Description: backendDescriptions[backend],
		})
	}
	return statuses
}
