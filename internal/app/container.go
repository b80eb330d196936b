package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/config"
	"github.com/jadrxma/presentation-go/internal/domain"
	"github.com/jadrxma/presentation-go/internal/render"
	"github.com/jadrxma/presentation-go/internal/server"
	"github.com/jadrxma/presentation-go/internal/service/ai"
	"github.com/jadrxma/presentation-go/internal/service/database"
	"github.com/jadrxma/presentation-go/internal/service/deck"
	"github.com/jadrxma/presentation-go/internal/service/store"
)

// Container bundles assembled services for constructing the runtime server.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	serverDeps *server.Dependencies
	sweeper    *store.Sweeper
	closers    []func()
}

// NewServer instantiates the HTTP server from the pre-built dependency graph.
func (c *Container) NewServer() (*server.Server, error) {
	if c == nil || c.serverDeps == nil {
		return nil, fmt.Errorf("server dependencies not initialized")
	}
	return server.NewServer(c.serverDeps)
}

// Sweeper returns the expiry sweeper to run alongside the server.
func (c *Container) Sweeper() *store.Sweeper {
	return c.sweeper
}

// Close releases every service the container owns, in reverse build order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles all infrastructure services and returns a container capable
// of creating a fully-wired server. All heavy-weight initialization (store,
// DB, AI clients) happens here so server.NewServer stays focused on routing.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Deck storage: Redis when configured, in-process memory otherwise.
	var deckStore store.DeckStore
	if cfg.Redis.Host != "" {
		redisStore, storeErr := store.NewRedisStore(store.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if storeErr != nil {
			return nil, fmt.Errorf("failed to create redis store: %w", storeErr)
		}
		deckStore = redisStore
	} else {
		logger.Info("Using in-memory deck store, REDIS_HOST not set")
		deckStore = store.NewMemoryStore(logger)
	}
	closers = append(closers, func() {
		_ = deckStore.Close()
	})

	// Generation history: optional, needs Postgres.
	var history deck.HistoryRecorder
	if cfg.Postgres.Host != "" {
		postgresSvc, pgErr := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
		if pgErr != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", pgErr)
		}
		closers = append(closers, func() {
			_ = postgresSvc.Close()
		})

		historyRepo := database.NewHistoryRepository(postgresSvc, logger)
		if schemaErr := historyRepo.EnsureSchema(ctx); schemaErr != nil {
			return nil, fmt.Errorf("failed to ensure history schema: %w", schemaErr)
		}
		history = historyRepo
	} else {
		logger.Info("Generation history disabled, POSTGRES_HOST not set")
	}

	// AI stack
	modelManager, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		OpenAIAPIKey:       cfg.OpenAI.APIKey,
		GeminiAPIKey:       cfg.Gemini.APIKey,
		DefaultOpenAIModel: cfg.OpenAI.Model,
		DefaultGeminiModel: cfg.Gemini.Model,
		EnableFallback:     cfg.Gemini.EnableFallback,
		Temperature:        cfg.Generation.Temperature,
		MaxOutputTokens:    cfg.Generation.MaxOutputTokens,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}

	// Render backends
	renderers := render.NewRegistry(logger,
		render.NewChromiumRenderer(cfg.Render.ChromePath, cfg.Render.ChromeNoSandbox, logger),
		render.NewWkhtmltopdfRenderer(cfg.Render.WkhtmltopdfPath, logger),
		render.NewVectorRenderer(logger),
	)

	hub := server.NewHub(logger)

	pageSize := domain.PageSize(cfg.Render.DefaultPageSize)
	if !pageSize.IsValid() {
		if cfg.Render.DefaultPageSize != "" {
			logger.Warn("Ignoring invalid RENDER_PAGE_SIZE", zap.String("value", cfg.Render.DefaultPageSize))
		}
		pageSize = ""
	}
	orientation := domain.Orientation(cfg.Render.DefaultOrientation)
	if !orientation.IsValid() {
		if cfg.Render.DefaultOrientation != "" {
			logger.Warn("Ignoring invalid RENDER_ORIENTATION", zap.String("value", cfg.Render.DefaultOrientation))
		}
		orientation = ""
	}

	deckSvc := deck.NewService(deck.Config{
		TTL:                cfg.Deck.TTL,
		RenderTimeout:      cfg.Render.Timeout,
		MaxPromptLength:    cfg.Generation.MaxPromptLength,
		DefaultPageSize:    pageSize,
		DefaultOrientation: orientation,
	}, modelManager, deckStore, renderers, history, hub, logger)

	deps := &server.Dependencies{
		Config: cfg,
		Logger: logger,
		Decks:  deckSvc,
		Hub:    hub,
	}

	return &Container{
		Config:     cfg,
		Logger:     logger,
		serverDeps: deps,
		sweeper:    store.NewSweeper(deckStore, cfg.Deck.SweepInterval, logger),
		closers:    closers,
	}, nil
}
