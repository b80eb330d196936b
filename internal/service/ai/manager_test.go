package ai

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/genai"

	"github.com/jadrxma/presentation-go/internal/util"
)

type fakeProvider struct {
	name   string
	text   string
	model  string
	err    error
	calls  int
	system []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, req Request, _ ModelPreset, _ *GenerateOptions) (ProviderResult, error) {
	f.calls++
	f.system = append(f.system, req.System)
	if f.err != nil {
		return ProviderResult{}, f.err
	}
	return ProviderResult{Text: f.text, Model: f.model}, nil
}

func (f *fakeProvider) Ping(_ context.Context) bool { return f.err == nil }

func newTestManager(primary, fallback TextProvider) *ModelManager {
	mm := &ModelManager{
		primary: primary,
		logger:  zap.NewNop(),
	}
	if fallback != nil {
		mm.fallback = fallback
		mm.enableFallback = true
	}
	mm.circuitBreaker = util.NewCircuitBreaker(3, 50*time.Millisecond, time.Hour, func() bool { return true }, zap.NewNop())
	return mm
}

func TestGenerateDocumentUsesPrimary(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", model: "gpt-4o-2024-08-06", text: "<html><body>deck</body></html>"}
	fallback := &fakeProvider{name: "Gemini", model: "gemini-2.5-flash", text: "<html></html>"}
	mm := newTestManager(primary, fallback)

	html, meta, err := mm.GenerateDocument(context.Background(), Request{System: "sys", User: "user"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(html, "deck") {
		t.Fatalf("unexpected document %q", html)
	}
	if meta.Provider != "OpenAI" || meta.UsedFallback {
		t.Fatalf("expected primary metadata, got %+v", meta)
	}
	if fallback.calls != 0 {
		t.Fatalf("expected fallback untouched, got %d calls", fallback.calls)
	}
	if len(primary.system) != 1 || primary.system[0] != "sys" {
		t.Fatalf("expected system prompt forwarded, got %v", primary.system)
	}
}

func TestGenerateDocumentFallsBackOnServiceFailure(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", err: fmt.Errorf("503 service unavailable")}
	fallback := &fakeProvider{name: "Gemini", model: "gemini-2.5-flash", text: "<html><body>ok</body></html>"}
	mm := newTestManager(primary, fallback)

	_, meta, err := mm.GenerateDocument(context.Background(), Request{User: "user"})
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if !meta.UsedFallback || meta.Provider != "Gemini" {
		t.Fatalf("expected fallback metadata, got %+v", meta)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("expected one call each, got %d/%d", primary.calls, fallback.calls)
	}
}

func TestGenerateDocumentWithoutFallbackReturnsFriendlyServiceError(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", err: fmt.Errorf("503 service unavailable")}
	mm := newTestManager(primary, nil)

	_, _, err := mm.GenerateDocument(context.Background(), Request{User: "user"})
	if err == nil || !strings.Contains(err.Error(), "temporarily failing") {
		t.Fatalf("expected service failure message, got %v", err)
	}
}

func TestCircuitOpensAfterRepeatedServiceFailures(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", err: fmt.Errorf("503 service unavailable")}
	mm := newTestManager(primary, nil)

	for i := 0; i < 3; i++ {
		if _, _, err := mm.GenerateDocument(context.Background(), Request{User: "user"}); err == nil {
			t.Fatal("expected failure while provider is down")
		}
	}

	if mm.circuitBreaker.CanExecute() {
		t.Fatal("expected circuit to open after threshold failures")
	}

	_, _, err := mm.GenerateDocument(context.Background(), Request{User: "user"})
	if err == nil || !strings.Contains(err.Error(), "temporarily unavailable") {
		t.Fatalf("expected circuit-open error, got %v", err)
	}
	if primary.calls != 3 {
		t.Fatalf("expected no call while open, got %d", primary.calls)
	}
}

func TestGenerateDocumentKeepsClientErrorsVerbatim(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", err: fmt.Errorf("invalid request: prompt too long")}
	mm := newTestManager(primary, nil)

	_, _, err := mm.GenerateDocument(context.Background(), Request{User: "user"})
	if err == nil || !strings.Contains(err.Error(), "prompt too long") {
		t.Fatalf("expected original client error, got %v", err)
	}
	// client-class errors must not trip the breaker
	if !mm.circuitBreaker.CanExecute() {
		t.Fatal("expected circuit to stay closed on client errors")
	}
}

func TestGenerateJSONDecodesFencedReply(t *testing.T) {
	primary := &fakeProvider{
		name:  "OpenAI",
		model: "gpt-4o-2024-08-06",
		text:  "```json\n{\"title\":\"Deck\",\"slides\":[{\"title\":\"One\"}]}\n```",
	}
	mm := newTestManager(primary, nil)

	var dest struct {
		Title  string `json:"title"`
		Slides []struct {
			Title string `json:"title"`
		} `json:"slides"`
	}
	meta, err := mm.GenerateJSON(context.Background(), Request{User: "user"}, &dest)
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}
	if meta.Provider != "OpenAI" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if dest.Title != "Deck" || len(dest.Slides) != 1 || dest.Slides[0].Title != "One" {
		t.Fatalf("unexpected decoded value %+v", dest)
	}
}

func TestGenerateJSONRejectsInvalidJSON(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", model: "m", text: "not json"}
	mm := newTestManager(primary, nil)

	var dest map[string]any
	if _, err := mm.GenerateJSON(context.Background(), Request{User: "user"}, &dest); err == nil {
		t.Fatal("expected invalid JSON error")
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"```html\n<html></html>\n```", "<html></html>"},
		{"```json\n{}\n```", "{}"},
		{"```\nplain\n```", "plain"},
		{"no fences", "no fences"},
	}
	for _, tc := range cases {
		if got := StripFences(tc.in); got != tc.want {
			t.Fatalf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeDocumentWrapsFragments(t *testing.T) {
	doc, err := normalizeDocument("<h1>Hello</h1>")
	if err != nil {
		t.Fatalf("expected fragment to normalize, got %v", err)
	}
	if !strings.Contains(doc, "<!doctype html>") || !strings.Contains(doc, "<h1>Hello</h1>") {
		t.Fatalf("expected wrapped document, got %q", doc)
	}

	full := "<!DOCTYPE html><HTML><body>x</body></HTML>"
	doc, err = normalizeDocument(full)
	if err != nil {
		t.Fatalf("expected full document to pass, got %v", err)
	}
	if doc != full {
		t.Fatalf("expected complete document untouched, got %q", doc)
	}

	if _, err := normalizeDocument("   "); err == nil {
		t.Fatal("expected empty reply to error")
	}
}

func TestGeminiProviderLogsNoRoleClaim(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  "test-key",
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		t.Fatalf("expected client construction to succeed, got %v", err)
	}
	provider := NewGeminiProvider(client, "gemini-2.5-flash", zap.New(core))

	// Cancelled before the call so the request fails without any network,
	// after the generation log entry is written.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := provider.Generate(ctx, Request{User: "ping"}, PresetDocument, nil); err == nil {
		t.Fatal("expected the cancelled call to fail")
	}

	sawGenerating := false
	for _, entry := range logs.All() {
		// The manager decides which provider is primary; the provider
		// itself must not label its calls with a role.
		if strings.Contains(entry.Message, "Fallback") {
			t.Fatalf("provider log claims a role: %q", entry.Message)
		}
		if entry.Message == "Generating with Gemini" {
			sawGenerating = true
		}
	}
	if !sawGenerating {
		t.Fatal("expected the generation log entry")
	}
}
