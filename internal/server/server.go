// Package server exposes the HTTP API and the embedded single-page UI.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/config"
	"github.com/jadrxma/presentation-go/internal/service/deck"
)

//go:embed web
var webFS embed.FS

// Dependencies carries everything the server needs, assembled by the app
// container.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger
	Decks  *deck.Service
	Hub    *Hub
}

type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	decks  *deck.Service
	hub    *Hub
	http   *http.Server
}

func NewServer(deps *Dependencies) (*Server, error) {
	if deps == nil || deps.Config == nil || deps.Logger == nil || deps.Decks == nil || deps.Hub == nil {
		return nil, fmt.Errorf("server dependencies not initialized")
	}

	s := &Server{
		cfg:    deps.Config,
		logger: deps.Logger,
		decks:  deps.Decks,
		hub:    deps.Hub,
	}

	static, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, fmt.Errorf("embedded web assets missing: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/decks/{id}", s.handleDeck)
	mux.HandleFunc("GET /api/decks/{id}/preview", s.handlePreview)
	mux.HandleFunc("POST /api/decks/{id}/export", s.handleExport)
	mux.HandleFunc("GET /api/backends", s.handleBackends)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/ws", s.hub.HandleWS)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	// Wrong-method and unknown API requests would otherwise fall through
	// to the file server and come back as HTML 404s.
	mux.HandleFunc("/api/", s.handleAPIFallback)
	mux.Handle("/", http.FileServer(http.FS(static)))

	s.http = &http.Server{
		Addr:              deps.Config.Server.Address,
		Handler:           s.withRequestLog(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.http.Shutdown(ctx)
}

// withRequestLog logs API requests. The websocket route is passed through
// untouched so the upgrade can hijack the connection, static assets stay
// out of the log.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
