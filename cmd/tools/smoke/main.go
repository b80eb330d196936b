// Command smoke exercises a running server end to end: generate a deck from
// the sample instructions, fetch its preview, then export a PDF through every
// backend the server reports available.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/prompt"
)

const (
	defaultBaseURL = "http://localhost:8080"
	defaultOutDir  = "smoke_out"
	requestTimeout = 180 * time.Second
)

type generateResponse struct {
	Deck struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Provider   string `json:"provider"`
		SlideCount int    `json:"slide_count"`
	} `json:"deck"`
	HTML string `json:"html"`
}

type backendsResponse struct {
	Backends []struct {
		Backend   string `json:"backend"`
		Available bool   `json:"available"`
	} `json:"backends"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	var baseURL string
	var outDir string
	var mode string

	flag.StringVar(&baseURL, "url", defaultBaseURL, "base URL of the running server")
	flag.StringVar(&outDir, "out", defaultOutDir, "directory for exported PDFs")
	flag.StringVar(&mode, "mode", "html", "generation mode: html or slides")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()
	client := &http.Client{Timeout: requestTimeout}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logger.Fatal("failed to create output directory", zap.Error(err))
	}

	// Step 1: generate
	logger.Info("Generating deck", zap.String("url", baseURL), zap.String("mode", mode))
	body, _ := json.Marshal(map[string]string{
		"style":                "deck",
		"mode":                 mode,
		"format_instructions":  prompt.DefaultFormatInstructions,
		"content_instructions": prompt.DefaultContentInstructions,
	})

	var generated generateResponse
	if err := postJSON(ctx, client, baseURL+"/api/generate", body, &generated); err != nil {
		logger.Fatal("generate failed", zap.Error(err))
	}
	logger.Info("Deck generated",
		zap.String("deck_id", generated.Deck.ID),
		zap.String("title", generated.Deck.Title),
		zap.String("provider", generated.Deck.Provider),
		zap.Int("slide_count", generated.Deck.SlideCount))

	// Step 2: preview round trip
	preview, err := get(ctx, client, baseURL+"/api/decks/"+generated.Deck.ID+"/preview")
	if err != nil {
		logger.Fatal("preview fetch failed", zap.Error(err))
	}
	if !bytes.Contains(preview, []byte("<")) {
		logger.Fatal("preview does not look like HTML")
	}
	logger.Info("Preview fetched", zap.Int("bytes", len(preview)))

	// Step 3: list backends
	raw, err := get(ctx, client, baseURL+"/api/backends")
	if err != nil {
		logger.Fatal("backend listing failed", zap.Error(err))
	}
	var backends backendsResponse
	if err := json.Unmarshal(raw, &backends); err != nil {
		logger.Fatal("backend listing unreadable", zap.Error(err))
	}

	// Step 4: export through every available backend
	exported := 0
	for _, backend := range backends.Backends {
		if !backend.Available {
			logger.Warn("Skipping unavailable backend", zap.String("backend", backend.Backend))
			continue
		}

		exportBody, _ := json.Marshal(map[string]string{"backend": backend.Backend})
		pdf, err := post(ctx, client, baseURL+"/api/decks/"+generated.Deck.ID+"/export", exportBody)
		if err != nil {
			logger.Error("export failed", zap.String("backend", backend.Backend), zap.Error(err))
			continue
		}
		if !bytes.HasPrefix(pdf, []byte("%PDF")) {
			logger.Error("export did not return a PDF", zap.String("backend", backend.Backend))
			continue
		}

		path := filepath.Join(outDir, fmt.Sprintf("smoke_%s.pdf", backend.Backend))
		if err := os.WriteFile(path, pdf, 0o644); err != nil {
			logger.Fatal("failed to write PDF", zap.Error(err))
		}
		logger.Info("Exported", zap.String("backend", backend.Backend), zap.String("path", path), zap.Int("bytes", len(pdf)))
		exported++
	}

	if exported == 0 {
		logger.Fatal("no backend produced a PDF")
	}
	logger.Info("Smoke test completed", zap.Int("exports", exported), zap.String("out", outDir))
}

func postJSON(ctx context.Context, client *http.Client, url string, body []byte, dest any) error {
	data, err := post(ctx, client, url, body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func post(ctx context.Context, client *http.Client, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(client, req)
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return do(client, req)
}

func do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var envelope errorEnvelope
		if json.Unmarshal(data, &envelope) == nil && envelope.Error.Message != "" {
			return nil, fmt.Errorf("%s: %s (%s)", resp.Status, envelope.Error.Message, envelope.Error.Code)
		}
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return data, nil
}
