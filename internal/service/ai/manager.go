package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jadrxma/presentation-go/internal/constants"
	"github.com/jadrxma/presentation-go/internal/util"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ModelManager routes generation through the primary provider and falls
// back to the secondary on service-class failures. A circuit breaker
// guards both so a broken upstream fails fast instead of hanging every
// request.
type ModelManager struct {
	openai         *OpenAIProvider
	gemini         *GeminiProvider
	primary        TextProvider
	fallback       TextProvider
	overrides      *ModelConfig
	logger         *zap.Logger
	enableFallback bool
	circuitBreaker *util.CircuitBreaker
}

type ModelManagerConfig struct {
	OpenAIAPIKey       string
	GeminiAPIKey       string
	DefaultOpenAIModel string
	DefaultGeminiModel string
	EnableFallback     bool
	Temperature        float64
	MaxOutputTokens    int
}

func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	defaultOpenAI := cfg.DefaultOpenAIModel
	if defaultOpenAI == "" {
		defaultOpenAI = "gpt-4o-2024-08-06"
	}

	defaultGemini := cfg.DefaultGeminiModel
	if defaultGemini == "" {
		defaultGemini = "gemini-2.5-flash"
	}

	openaiProvider := NewOpenAIProvider(cfg.OpenAIAPIKey, defaultOpenAI, logger)

	var geminiProvider *GeminiProvider
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		geminiProvider = NewGeminiProvider(geminiClient, defaultGemini, logger)
	}

	if openaiProvider == nil && geminiProvider == nil {
		return nil, fmt.Errorf("no model provider configured")
	}

	mm := &ModelManager{
		openai: openaiProvider,
		gemini: geminiProvider,
		logger: logger,
	}

	if openaiProvider != nil {
		mm.primary = openaiProvider
		if cfg.EnableFallback && geminiProvider != nil {
			mm.fallback = geminiProvider
			mm.enableFallback = true
			logger.Info("Gemini fallback enabled", zap.String("model", defaultGemini))
		} else {
			logger.Info("Gemini fallback disabled")
		}
	} else {
		// no OpenAI key, Gemini serves alone
		mm.primary = geminiProvider
		logger.Info("OpenAI not configured, using Gemini as primary",
			zap.String("model", defaultGemini),
		)
	}

	if cfg.Temperature > 0 || cfg.MaxOutputTokens > 0 {
		mm.overrides = &ModelConfig{
			Temperature:     float32(cfg.Temperature),
			MaxOutputTokens: cfg.MaxOutputTokens,
		}
	}

	mm.circuitBreaker = util.NewCircuitBreaker(
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		mm.healthCheckPing,
		logger,
	)

	return mm, nil
}

// PrimaryName reports which provider serves first, for health output.
func (mm *ModelManager) PrimaryName() string {
	if mm.primary == nil {
		return ""
	}
	return mm.primary.Name()
}

// GenerateDocument produces a complete HTML document. Markdown code
// fences are stripped and bare fragments are wrapped into a document
// shell so the result is always previewable and printable.
func (mm *ModelManager) GenerateDocument(ctx context.Context, req Request) (string, *GenerateMetadata, error) {
	opts := &GenerateOptions{Overrides: mm.overrides}

	result, metadata, err := mm.generate(ctx, req, PresetDocument, opts)
	if err != nil {
		return "", nil, err
	}

	html, err := normalizeDocument(result.Text)
	if err != nil {
		return "", nil, fmt.Errorf("%s returned no usable document: %w", metadata.Provider, err)
	}

	return html, metadata, nil
}

// GenerateJSON produces structured output decoded into dest.
func (mm *ModelManager) GenerateJSON(ctx context.Context, req Request, dest any) (*GenerateMetadata, error) {
	opts := &GenerateOptions{JSONMode: true, Overrides: mm.overrides}

	result, metadata, err := mm.generate(ctx, req, PresetOutline, opts)
	if err != nil {
		return nil, err
	}

	return mm.decodeJSON(result.Text, metadata, dest)
}

func (mm *ModelManager) generate(ctx context.Context, req Request, preset ModelPreset, opts *GenerateOptions) (ProviderResult, *GenerateMetadata, error) {
	if !mm.circuitBreaker.CanExecute() {
		status := mm.circuitBreaker.GetStatus()
		nextRetry := "unknown"
		if status.NextRetryTime != nil {
			nextRetry = status.NextRetryTime.Format("15:04")
		}

		mm.logger.Error("AI service unavailable (Circuit OPEN)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
			zap.String("next_retry", nextRetry),
		)

		return ProviderResult{}, nil, fmt.Errorf("AI providers are temporarily unavailable, next retry around %s", nextRetry)
	}

	primaryResult, primaryErr := mm.invokeProvider(ctx, mm.primary, req, preset, opts)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return primaryResult, &GenerateMetadata{
			Provider: mm.primary.Name(),
			Model:    primaryResult.Model,
		}, nil
	}

	if mm.enableFallback && mm.fallback != nil {
		fallbackResult, fallbackErr := mm.invokeProvider(ctx, mm.fallback, req, preset, opts)
		if fallbackErr == nil {
			mm.circuitBreaker.RecordSuccess()
			return fallbackResult, &GenerateMetadata{
				Provider:     mm.fallback.Name(),
				Model:        fallbackResult.Model,
				UsedFallback: true,
			}, nil
		}

		mm.recordFailure(primaryErr)
		mm.recordFailure(fallbackErr)

		if mm.isServiceFailure(primaryErr) || mm.isServiceFailure(fallbackErr) {
			return ProviderResult{}, nil, fmt.Errorf("AI providers are temporarily failing, please retry shortly")
		}

		return ProviderResult{}, nil, fallbackErr
	}

	mm.recordFailure(primaryErr)

	if mm.isServiceFailure(primaryErr) {
		return ProviderResult{}, nil, fmt.Errorf("AI providers are temporarily failing, please retry shortly")
	}

	return ProviderResult{}, nil, primaryErr
}

func (mm *ModelManager) invokeProvider(ctx context.Context, provider TextProvider, req Request, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error) {
	if provider == nil {
		return ProviderResult{}, fmt.Errorf("model provider is not configured")
	}
	return provider.Generate(ctx, req, preset, opts)
}

func (mm *ModelManager) decodeJSON(text string, metadata *GenerateMetadata, dest any) (*GenerateMetadata, error) {
	cleaned := StripFences(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%s API returned empty response", metadata.Provider)
	}

	if err := json.Unmarshal([]byte(cleaned), dest); err != nil {
		previewLen := min(len(cleaned), 200)
		mm.logger.Error("Failed to unmarshal JSON response",
			zap.String("provider", metadata.Provider),
			zap.Error(err),
			zap.String("response_preview", cleaned[:previewLen]),
		)
		return nil, fmt.Errorf("invalid JSON from %s: %w", metadata.Provider, err)
	}

	return metadata, nil
}

func (mm *ModelManager) recordFailure(err error) {
	if err == nil {
		return
	}

	if !mm.isServiceFailure(err) {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if mm.isRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}

	mm.circuitBreaker.RecordFailure(timeout)
}

func (mm *ModelManager) healthCheckPing() bool {
	mm.logger.Info("Health Check: Testing AI services...")

	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	openaiOK := false
	if mm.openai != nil {
		openaiOK = mm.openai.Ping(ctx)
	}

	geminiOK := false
	if mm.gemini != nil {
		geminiOK = mm.gemini.Ping(ctx)
	}

	isHealthy := openaiOK || geminiOK

	mm.logger.Info("Health Check: Result",
		zap.Bool("openai", openaiOK),
		zap.Bool("gemini", geminiOK),
		zap.Bool("healthy", isHealthy),
	)

	return isHealthy
}

func (mm *ModelManager) isServiceFailure(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") {
		return true
	}

	if mm.isRateLimitError(err) {
		return true
	}

	statusRegex := regexp.MustCompile(`\b(5\d{2})\b`)
	if statusRegex.MatchString(msg) {
		return true
	}

	geminiCodeRegex := regexp.MustCompile(`"code":(\d{3})`)
	if matches := geminiCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, err := strconv.Atoi(matches[1]); err == nil {
			return code >= 500 && code < 600
		}
	}

	openaiCodeRegex := regexp.MustCompile(`^(\d{3})\s`)
	if matches := openaiCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, err := strconv.Atoi(matches[1]); err == nil {
			return code >= 500 && code < 600
		}
	}

	return false
}

func (mm *ModelManager) isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	if strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return true
	}

	geminiCodeRegex := regexp.MustCompile(`"code":(\d{3})`)
	if matches := geminiCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, err := strconv.Atoi(matches[1]); err == nil {
			return code == 429
		}
	}

	openaiCodeRegex := regexp.MustCompile(`^(\d{3})\s`)
	if matches := openaiCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, err := strconv.Atoi(matches[1]); err == nil {
			return code == 429
		}
	}

	return false
}

func (mm *ModelManager) GetCircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.GetStatus()
}

func (mm *ModelManager) ResetCircuit() {
	mm.circuitBreaker.Reset()
}

// StripFences removes a wrapping markdown code fence (```html, ```json
// or bare ```) from a model reply.
func StripFences(text string) string {
	cleaned := strings.TrimSpace(text)

	for _, prefix := range []string{"```html", "```json", "```"} {
		if strings.HasPrefix(cleaned, prefix) {
			cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, prefix))
			break
		}
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "```"))
	}

	return cleaned
}

func normalizeDocument(text string) (string, error) {
	cleaned := StripFences(text)
	if cleaned == "" {
		return "", fmt.Errorf("empty response")
	}

	lower := strings.ToLower(cleaned)
	if strings.Contains(lower, "<html") {
		return cleaned, nil
	}

	// bare fragment, wrap it so the preview and the PDF engines get a
	// complete document
	var builder strings.Builder
	builder.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Generated document</title>\n</head>\n<body>\n")
	builder.WriteString(cleaned)
	builder.WriteString("\n</body>\n</html>\n")
	return builder.String(), nil
}

