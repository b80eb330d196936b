// Package deck orchestrates the generation pipeline: prompt assembly, model
// calls, HTML inspection, server-side storage, history and PDF export.
package deck

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/domain"
	"github.com/jadrxma/presentation-go/internal/prompt"
	"github.com/jadrxma/presentation-go/internal/render"
	"github.com/jadrxma/presentation-go/internal/service/ai"
	"github.com/jadrxma/presentation-go/internal/service/store"
	apperrors "github.com/jadrxma/presentation-go/pkg/errors"
)

// GenerateMode selects how the model reply is shaped.
type GenerateMode string

const (
	// GenerateModeHTML asks for a complete styled HTML document.
	GenerateModeHTML GenerateMode = "html"
	// GenerateModeSlides asks for a structured JSON slide list and
	// synthesizes a plain HTML preview from it.
	GenerateModeSlides GenerateMode = "slides"
)

// ModelClient is the slice of the model manager the service depends on.
type ModelClient interface {
	GenerateDocument(ctx context.Context, req ai.Request) (string, *ai.GenerateMetadata, error)
	GenerateJSON(ctx context.Context, req ai.Request, dest any) (*ai.GenerateMetadata, error)
}

// HistoryRecorder persists generation records. Optional, nil disables it.
type HistoryRecorder interface {
	Record(ctx context.Context, record *domain.GenerationRecord) error
	Recent(ctx context.Context, limit int) ([]*domain.GenerationRecord, error)
}

// Publisher fans job events out to connected clients. Optional.
type Publisher interface {
	Publish(event domain.JobEvent)
}

type Config struct {
	TTL             time.Duration
	RenderTimeout   time.Duration
	MaxPromptLength int
	// DefaultPageSize and DefaultOrientation apply to exports that leave
	// the page setup unset. Zero values fall through to A4 portrait.
	DefaultPageSize    domain.PageSize
	DefaultOrientation domain.Orientation
}

type Service struct {
	cfg       Config
	models    ModelClient
	store     store.DeckStore
	renderers *render.Registry
	history   HistoryRecorder
	publisher Publisher
	logger    *zap.Logger
}

func NewService(cfg Config, models ModelClient, deckStore store.DeckStore, renderers *render.Registry, history HistoryRecorder, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		cfg:       cfg,
		models:    models,
		store:     deckStore,
		renderers: renderers,
		history:   history,
		publisher: publisher,
		logger:    logger,
	}
}

// GenerateRequest carries the two instruction boxes plus the style and mode
// picked in the UI.
type GenerateRequest struct {
	Style               domain.DeckStyle
	Mode                GenerateMode
	FormatInstructions  string
	ContentInstructions string
}

func (s *Service) validateRequest(req *GenerateRequest) error {
	if req.Style == "" {
		req.Style = domain.DeckStylePresentation
	}
	if !req.Style.IsValid() {
		return apperrors.NewValidationError("unknown deck style", "style", req.Style.String())
	}
	if req.Mode == "" {
		req.Mode = GenerateModeHTML
	}
	if req.Mode != GenerateModeHTML && req.Mode != GenerateModeSlides {
		return apperrors.NewValidationError("unknown generate mode", "mode", string(req.Mode))
	}
	req.FormatInstructions = strings.TrimSpace(req.FormatInstructions)
	req.ContentInstructions = strings.TrimSpace(req.ContentInstructions)
	if req.FormatInstructions == "" {
		return apperrors.NewValidationError("format instructions are required", "format_instructions", nil)
	}
	if req.ContentInstructions == "" {
		return apperrors.NewValidationError("content instructions are required", "content_instructions", nil)
	}
	if max := s.cfg.MaxPromptLength; max > 0 {
		if n := utf8.RuneCountInString(req.FormatInstructions); n > max {
			return apperrors.NewValidationError("format instructions exceed the length limit", "format_instructions", n)
		}
		if n := utf8.RuneCountInString(req.ContentInstructions); n > max {
			return apperrors.NewValidationError("content instructions exceed the length limit", "content_instructions", n)
		}
	}
	return nil
}

// Generate produces a deck from the two instruction prompts and stores it
// under a fresh ID. The slides mode routes through the JSON pipeline.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*domain.Deck, error) {
	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}
	if req.Mode == GenerateModeSlides {
		return s.generateSlides(ctx, req)
	}

	id := uuid.NewString()
	s.publish(domain.JobEvent{JobID: id, DeckID: id, Phase: domain.JobPhaseGenerating})

	start := time.Now()
	html, meta, err := s.models.GenerateDocument(ctx, buildDocumentRequest(req))
	if err != nil {
		s.publishFailure(id, id, "", err)
		return nil, err
	}

	now := time.Now()
	deck := &domain.Deck{
		ID:                  id,
		Style:               req.Style,
		Title:               documentTitle(html),
		HTML:                html,
		FormatInstructions:  req.FormatInstructions,
		ContentInstructions: req.ContentInstructions,
		Provider:            meta.Provider,
		Model:               meta.Model,
		UsedFallback:        meta.UsedFallback,
		SlideCount:          countSlideBlocks(html),
		CreatedAt:           now,
		ExpiresAt:           now.Add(s.cfg.TTL),
	}
	deck.Title = deck.TitleOrDefault()

	if err := s.finishDeck(ctx, deck); err != nil {
		return nil, err
	}

	s.logger.Info("Deck generated",
		zap.String("deck_id", deck.ID),
		zap.String("style", deck.Style.String()),
		zap.String("provider", deck.Provider),
		zap.Bool("used_fallback", deck.UsedFallback),
		zap.Int("slide_count", deck.SlideCount),
		zap.Int("html_bytes", len(html)),
		zap.Duration("took", time.Since(start)))

	return deck, nil
}

func (s *Service) generateSlides(ctx context.Context, req GenerateRequest) (*domain.Deck, error) {
	id := uuid.NewString()
	s.publish(domain.JobEvent{JobID: id, DeckID: id, Phase: domain.JobPhaseGenerating})

	start := time.Now()
	aiReq := ai.Request{
		System: prompt.BuildSlidesSystem(),
		User: prompt.BuildSlidesUser(prompt.SlidesVars{
			FormatInstructions:  req.FormatInstructions,
			ContentInstructions: req.ContentInstructions,
		}),
	}

	var slides domain.SlideDeck
	meta, err := s.models.GenerateJSON(ctx, aiReq, &slides)
	if err != nil {
		s.publishFailure(id, id, "", err)
		return nil, err
	}
	slides.Normalize()
	if slides.IsEmpty() {
		err := apperrors.NewServiceError("model returned no usable slides", "deck", "generate_slides", nil)
		s.publishFailure(id, id, "", err)
		return nil, err
	}

	now := time.Now()
	deck := &domain.Deck{
		ID:                  id,
		Style:               req.Style,
		Title:               slides.Title,
		HTML:                PreviewHTML(&slides),
		FormatInstructions:  req.FormatInstructions,
		ContentInstructions: req.ContentInstructions,
		Provider:            meta.Provider,
		Model:               meta.Model,
		UsedFallback:        meta.UsedFallback,
		SlideCount:          slides.SlideCount(),
		Slides:              &slides,
		CreatedAt:           now,
		ExpiresAt:           now.Add(s.cfg.TTL),
	}
	deck.Title = deck.TitleOrDefault()

	if err := s.finishDeck(ctx, deck); err != nil {
		return nil, err
	}

	s.logger.Info("Slide deck generated",
		zap.String("deck_id", deck.ID),
		zap.String("provider", deck.Provider),
		zap.Int("slide_count", deck.SlideCount),
		zap.Duration("took", time.Since(start)))

	return deck, nil
}

// finishDeck persists the deck, records history best-effort and announces
// completion.
func (s *Service) finishDeck(ctx context.Context, deck *domain.Deck) error {
	if err := s.store.Save(ctx, deck); err != nil {
		s.publishFailure(deck.ID, deck.ID, "", err)
		return err
	}
	s.recordHistory(ctx, deck)
	s.publish(domain.JobEvent{
		JobID:  deck.ID,
		DeckID: deck.ID,
		Phase:  domain.JobPhaseGenerated,
		Detail: deck.Title,
	})
	return nil
}

// Get returns the stored deck or a not-found error once expired.
func (s *Service) Get(ctx context.Context, id string) (*domain.Deck, error) {
	deck, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, apperrors.NewAppError("deck not found or expired", apperrors.CodeAppError, http.StatusNotFound, map[string]interface{}{
			"deck_id": id,
		})
	}
	return deck, nil
}

// ExportPDF renders the stored deck through the selected backend and returns
// the download filename with the PDF bytes.
func (s *Service) ExportPDF(ctx context.Context, id string, opts domain.RenderOptions) (string, []byte, error) {
	deck, err := s.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}

	if opts.PageSize == "" {
		opts.PageSize = s.cfg.DefaultPageSize
	}
	if opts.Orientation == "" {
		opts.Orientation = s.cfg.DefaultOrientation
	}
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return "", nil, apperrors.NewValidationError(err.Error(), "render_options", nil)
	}

	renderer, err := s.renderers.Get(opts.Backend)
	if err != nil {
		return "", nil, err
	}

	job := render.Job{
		Title:   deck.TitleOrDefault(),
		HTML:    deck.HTML,
		Slides:  deck.Slides,
		Options: opts,
	}
	// The vector backend needs the structured list; decks generated as HTML
	// get an outline extracted from their markup.
	if opts.Backend == domain.RenderBackendSlides && job.Slides.IsEmpty() {
		outline, err := Outline(deck)
		if err != nil {
			return "", nil, err
		}
		job.Slides = outline
	}

	jobID := uuid.NewString()
	s.publish(domain.JobEvent{
		JobID:   jobID,
		DeckID:  deck.ID,
		Phase:   domain.JobPhaseRendering,
		Backend: opts.Backend.String(),
	})

	renderCtx := ctx
	if s.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, s.cfg.RenderTimeout)
		defer cancel()
	}

	pdf, err := renderer.Render(renderCtx, job)
	if err != nil {
		s.publishFailure(jobID, deck.ID, opts.Backend.String(), err)
		return "", nil, err
	}

	filename := resolveFilename(opts.Filename, deck)
	s.publish(domain.JobEvent{
		JobID:   jobID,
		DeckID:  deck.ID,
		Phase:   domain.JobPhaseRendered,
		Backend: opts.Backend.String(),
		Detail:  filename,
	})

	return filename, pdf, nil
}

// Backends lists the registered renderers with availability.
func (s *Service) Backends(ctx context.Context) []render.BackendStatus {
	return s.renderers.List(ctx)
}

// History returns recent generation records, or an empty list when no
// database is configured.
func (s *Service) History(ctx context.Context, limit int) ([]*domain.GenerationRecord, error) {
	if s.history == nil {
		return []*domain.GenerationRecord{}, nil
	}
	return s.history.Recent(ctx, limit)
}

// HistoryEnabled reports whether generation history is being recorded.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

func (s *Service) recordHistory(ctx context.Context, deck *domain.Deck) {
	if s.history == nil {
		return
	}
	record := domain.NewGenerationRecord(deck)
	if err := s.history.Record(ctx, record); err != nil {
		// History is a convenience, generation must not fail on it.
		s.logger.Warn("History record failed",
			zap.String("deck_id", deck.ID),
			zap.Error(err))
	}
}

func (s *Service) publish(event domain.JobEvent) {
	if s.publisher == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}
	s.publisher.Publish(event)
}

func (s *Service) publishFailure(jobID, deckID, backend string, err error) {
	s.publish(domain.JobEvent{
		JobID:   jobID,
		DeckID:  deckID,
		Phase:   domain.JobPhaseFailed,
		Backend: backend,
		Detail:  err.Error(),
	})
}

func buildDocumentRequest(req GenerateRequest) ai.Request {
	if req.Style == domain.DeckStyleReport {
		return ai.Request{
			System: prompt.BuildReportSystem(),
			User: prompt.BuildReportUser(prompt.ReportVars{
				FormatInstructions:  req.FormatInstructions,
				ContentInstructions: req.ContentInstructions,
			}),
		}
	}
	return ai.Request{
		System: prompt.BuildDeckSystem(),
		User: prompt.BuildDeckUser(prompt.DeckVars{
			FormatInstructions:  req.FormatInstructions,
			ContentInstructions: req.ContentInstructions,
		}),
	}
}
