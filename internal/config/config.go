package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/jadrxma/presentation-go/internal/constants"
)

type Config struct {
	Server     ServerConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	Generation GenerationConfig
	Deck       DeckConfig
	Redis      RedisConfig
	Postgres   PostgresConfig
	Render     RenderConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Address string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type GenerationConfig struct {
	Temperature     float64
	MaxOutputTokens int
	MaxPromptLength int
}

type DeckConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// RedisConfig is optional: an empty host selects the in-memory deck store.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PostgresConfig is optional: an empty host disables generation history.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type RenderConfig struct {
	ChromePath         string
	ChromeNoSandbox    bool
	WkhtmltopdfPath    string
	Timeout            time.Duration
	DefaultPageSize    string
	DefaultOrientation string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDR", ":8080"),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-2024-08-06"),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EnableFallback: getEnvBool("GEMINI_ENABLE_FALLBACK", true),
		},
		Generation: GenerationConfig{
			Temperature:     getEnvFloat("GENERATION_TEMPERATURE", constants.GenerationDefaults.Temperature),
			MaxOutputTokens: getEnvInt("GENERATION_MAX_OUTPUT_TOKENS", constants.GenerationDefaults.MaxOutputTokens),
			MaxPromptLength: getEnvInt("GENERATION_MAX_PROMPT_LENGTH", 4000),
		},
		Deck: DeckConfig{
			TTL:           time.Duration(getEnvInt("DECK_TTL_MINUTES", 60)) * time.Minute,
			SweepInterval: time.Duration(getEnvInt("DECK_SWEEP_SECONDS", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "presentation"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Render: RenderConfig{
			ChromePath:         getEnv("CHROME_PATH", ""),
			ChromeNoSandbox:    getEnvBool("CHROME_NO_SANDBOX", false),
			WkhtmltopdfPath:    getEnv("WKHTMLTOPDF_PATH", ""),
			Timeout:            time.Duration(getEnvInt("RENDER_TIMEOUT_SECONDS", 60)) * time.Second,
			DefaultPageSize:    getEnv("RENDER_PAGE_SIZE", "A4"),
			DefaultOrientation: getEnv("RENDER_ORIENTATION", "portrait"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "logs/server.log"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" && c.Gemini.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY or GEMINI_API_KEY is required")
	}
	if c.Server.Address == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}
	if c.Generation.MaxOutputTokens <= 0 {
		return fmt.Errorf("GENERATION_MAX_OUTPUT_TOKENS must be positive")
	}
	if c.Deck.TTL <= 0 {
		return fmt.Errorf("DECK_TTL_MINUTES must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
