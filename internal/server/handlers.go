package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/constants"
	"github.com/jadrxma/presentation-go/internal/domain"
	"github.com/jadrxma/presentation-go/internal/service/deck"
	apperrors "github.com/jadrxma/presentation-go/pkg/errors"
)

// maxRequestBody caps API request bodies. Prompts are a few KB, anything
// near this limit is not a legitimate request.
const maxRequestBody = 1 << 20

type generateRequest struct {
	Style               string `json:"style"`
	Mode                string `json:"mode"`
	FormatInstructions  string `json:"format_instructions"`
	ContentInstructions string `json:"content_instructions"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	generated, err := s.decks.Generate(r.Context(), deck.GenerateRequest{
		Style:               domain.DeckStyle(req.Style),
		Mode:                deck.GenerateMode(req.Mode),
		FormatInstructions:  req.FormatInstructions,
		ContentInstructions: req.ContentInstructions,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, deckPayload(generated, true))
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	stored, err := s.decks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, deckPayload(stored, false))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	stored, err := s.decks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.WriteString(w, stored.HTML); err != nil {
		s.logger.Warn("Preview write failed", zap.Error(err))
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var opts domain.RenderOptions
	if !s.decodeJSON(w, r, &opts) {
		return
	}

	filename, pdf, err := s.decks.ExportPDF(r.Context(), r.PathValue("id"), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	if _, err := w.Write(pdf); err != nil {
		s.logger.Warn("PDF write failed", zap.Error(err))
	}
}

func (s *Server) handleBackends(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"backends": s.decks.Backends(r.Context()),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := constants.HistoryConfig.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, apperrors.NewValidationError("limit must be a number", "limit", raw))
			return
		}
		limit = parsed
	}

	records, err := s.decks.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"enabled": s.decks.HistoryEnabled(),
		"history": records,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	backends := map[string]bool{}
	for _, status := range s.decks.Backends(r.Context()) {
		backends[status.Backend.String()] = status.Available
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"backends":   backends,
		"history":    s.decks.HistoryEnabled(),
		"ws_clients": s.hub.ClientCount(),
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}

// handleAPIFallback answers API requests no route matched. A known path hit
// with the wrong method gets 405 with an Allow header, anything else 404,
// both in the JSON error envelope so API clients never see file-server HTML.
func (s *Server) handleAPIFallback(w http.ResponseWriter, r *http.Request) {
	if allow := apiAllowedMethods(r.URL.Path); allow != "" {
		w.Header().Set("Allow", allow)
		s.writeError(w, apperrors.NewAppError("method not allowed", apperrors.CodeAppError, http.StatusMethodNotAllowed, map[string]any{
			"allow": allow,
		}))
		return
	}
	s.writeError(w, apperrors.NewAppError("unknown API route", apperrors.CodeAppError, http.StatusNotFound, map[string]any{
		"path": r.URL.Path,
	}))
}

// apiAllowedMethods reports which methods the API route at path accepts, or
// "" when no route exists there. Mirrors the mux registrations in NewServer.
func apiAllowedMethods(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "api" {
		return ""
	}
	switch {
	case len(parts) == 2 && parts[1] == "generate":
		return http.MethodPost
	case len(parts) == 2 && (parts[1] == "backends" || parts[1] == "history" || parts[1] == "ws"):
		return http.MethodGet
	case len(parts) == 3 && parts[1] == "decks" && parts[2] != "":
		return http.MethodGet
	case len(parts) == 4 && parts[1] == "decks" && parts[2] != "" && parts[3] == "preview":
		return http.MethodGet
	case len(parts) == 4 && parts[1] == "decks" && parts[2] != "" && parts[3] == "export":
		return http.MethodPost
	}
	return ""
}

// deckPayload shapes the API view of a deck. HTML is returned only from the
// generate call, later reads go through the preview endpoint.
func deckPayload(d *domain.Deck, includeHTML bool) map[string]any {
	payload := map[string]any{
		"deck":               d,
		"suggested_filename": d.SuggestedFilename(time.Now()),
	}
	if includeHTML {
		payload["html"] = d.HTML
	}
	return payload
}

// decodeJSON parses the request body into dest, answering a validation
// error itself when the body is malformed.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dest); err != nil {
		s.writeError(w, apperrors.NewValidationError("request body is not valid JSON", "body", nil).WithCause(err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Response encode failed", zap.Error(err))
	}
}

// writeError maps typed application errors onto HTTP statuses. Anything
// unrecognized is a plain 500 without internal detail.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := apperrors.CodeAppError
	message := "internal server error"

	if appErr, ok := apperrors.AsAppError(err); ok {
		status = appErr.StatusCode
		code = appErr.Code
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
	} else {
		s.logger.Debug("Request rejected", zap.Int("status", status), zap.String("message", message))
	}

	s.writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
