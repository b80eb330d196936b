package config

import (
	"strings"
	"testing"
	"time"
)

// resetEnv pins every config variable to empty so host environment values
// cannot leak into the assertions.
func resetEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"SERVER_ADDR",
		"OPENAI_API_KEY", "OPENAI_MODEL",
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_ENABLE_FALLBACK",
		"GENERATION_TEMPERATURE", "GENERATION_MAX_OUTPUT_TOKENS", "GENERATION_MAX_PROMPT_LENGTH",
		"DECK_TTL_MINUTES", "DECK_SWEEP_SECONDS",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_SSLMODE",
		"CHROME_PATH", "CHROME_NO_SANDBOX", "WKHTMLTOPDF_PATH", "RENDER_TIMEOUT_SECONDS",
		"RENDER_PAGE_SIZE", "RENDER_ORIENTATION",
		"LOG_LEVEL", "LOG_FILE",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	resetEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Fatalf("unexpected default address: %q", cfg.Server.Address)
	}
	if cfg.OpenAI.Model != "gpt-4o-2024-08-06" {
		t.Fatalf("unexpected default OpenAI model: %q", cfg.OpenAI.Model)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" || !cfg.Gemini.EnableFallback {
		t.Fatalf("unexpected Gemini defaults: %+v", cfg.Gemini)
	}
	if cfg.Generation.Temperature != 0.35 || cfg.Generation.MaxOutputTokens != 3000 || cfg.Generation.MaxPromptLength != 4000 {
		t.Fatalf("unexpected generation defaults: %+v", cfg.Generation)
	}
	if cfg.Deck.TTL != time.Hour || cfg.Deck.SweepInterval != 5*time.Minute {
		t.Fatalf("unexpected deck defaults: %+v", cfg.Deck)
	}
	if cfg.Redis.Host != "" || cfg.Postgres.Host != "" {
		t.Fatal("expected optional stores to default to disabled")
	}
	if cfg.Render.Timeout != time.Minute {
		t.Fatalf("unexpected render timeout: %v", cfg.Render.Timeout)
	}
	if cfg.Render.DefaultPageSize != "A4" || cfg.Render.DefaultOrientation != "portrait" {
		t.Fatalf("unexpected render page defaults: %+v", cfg.Render)
	}
}

func TestLoadOverrides(t *testing.T) {
	resetEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("DECK_TTL_MINUTES", "5")
	t.Setenv("GEMINI_ENABLE_FALLBACK", "false")
	t.Setenv("GENERATION_TEMPERATURE", "0.7")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("CHROME_NO_SANDBOX", "true")
	t.Setenv("RENDER_ORIENTATION", "landscape")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	if cfg.Server.Address != "127.0.0.1:9999" {
		t.Fatalf("unexpected address: %q", cfg.Server.Address)
	}
	if cfg.Deck.TTL != 5*time.Minute {
		t.Fatalf("unexpected TTL: %v", cfg.Deck.TTL)
	}
	if cfg.Gemini.EnableFallback {
		t.Fatal("expected fallback to be disabled")
	}
	if cfg.Generation.Temperature != 0.7 {
		t.Fatalf("unexpected temperature: %v", cfg.Generation.Temperature)
	}
	if cfg.Redis.Host != "localhost" || cfg.Redis.Port != 6379 {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if !cfg.Render.ChromeNoSandbox {
		t.Fatal("expected the sandbox flag to be set")
	}
	if cfg.Render.DefaultOrientation != "landscape" {
		t.Fatalf("unexpected render orientation: %q", cfg.Render.DefaultOrientation)
	}
}

func TestLoadRequiresAnAPIKey(t *testing.T) {
	resetEnv(t)

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected a missing key error, got %v", err)
	}
}

func TestLoadIgnoresGarbageNumbers(t *testing.T) {
	resetEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("DECK_TTL_MINUTES", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if cfg.Deck.TTL != time.Hour {
		t.Fatalf("expected the default TTL on a bad value, got %v", cfg.Deck.TTL)
	}
}

func TestValidate(t *testing.T) {
	scenarios := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "no model key",
			mutate:  func(c *Config) { c.OpenAI.APIKey = "" },
			wantErr: "OPENAI_API_KEY or GEMINI_API_KEY",
		},
		{
			name:    "no address",
			mutate:  func(c *Config) { c.Server.Address = "" },
			wantErr: "SERVER_ADDR",
		},
		{
			name:    "zero output tokens",
			mutate:  func(c *Config) { c.Generation.MaxOutputTokens = 0 },
			wantErr: "GENERATION_MAX_OUTPUT_TOKENS",
		},
		{
			name:    "zero ttl",
			mutate:  func(c *Config) { c.Deck.TTL = 0 },
			wantErr: "DECK_TTL_MINUTES",
		},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			cfg := &Config{
				Server:     ServerConfig{Address: ":8080"},
				OpenAI:     OpenAIConfig{APIKey: "key"},
				Generation: GenerationConfig{MaxOutputTokens: 3000},
				Deck:       DeckConfig{TTL: time.Hour},
			}
			scenario.mutate(cfg)

			err := cfg.Validate()
			if scenario.wantErr == "" {
				if err != nil {
					t.Fatalf("expected validation to pass, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), scenario.wantErr) {
				t.Fatalf("expected %q in the error, got %v", scenario.wantErr, err)
			}
		})
	}
}
