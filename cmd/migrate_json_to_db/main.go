package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/jadrxma/presentation-go/internal/domain"
)

// CLI flags
var (
	dryRun  = flag.Bool("dry-run", false, "Run without committing to database")
	dir     = flag.String("dir", "exports", "Directory holding history export JSON files")
	dbHost  = flag.String("db-host", "localhost", "PostgreSQL host")
	dbPort  = flag.Int("db-port", 5432, "PostgreSQL port")
	dbUser  = flag.String("db-user", "postgres", "PostgreSQL user")
	dbPass  = flag.String("db-pass", "", "PostgreSQL password")
	dbName  = flag.String("db-name", "presentation", "PostgreSQL database")
	verbose = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()

	log.Println("==================================")
	log.Println("History JSON to PostgreSQL Import")
	log.Println("==================================")

	if *dryRun {
		log.Println("[DRY RUN MODE] No database changes will be made")
	}

	// Step 1: Load all export files
	records, files, err := loadExports(*dir)
	if err != nil {
		log.Fatalf("Failed to load exports from %s: %v", *dir, err)
	}
	log.Printf("✓ Loaded %d records from %d files", len(records), files)

	// Step 2: Normalize and validate
	normalizeRecords(records)
	if err := validateRecords(records); err != nil {
		log.Fatalf("Record validation failed: %v", err)
	}
	log.Println("✓ Record validation passed")

	// Step 3: Connect and insert
	if !*dryRun {
		db, err := connectDB()
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := insertRecords(db, records); err != nil {
			log.Fatalf("Failed to insert records: %v", err)
		}

		log.Println("✓ Import completed successfully")
	} else {
		log.Println("✓ Dry-run completed successfully")
		printSummary(records)
	}
}

func loadExports(dir string) ([]*domain.GenerationRecord, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}

	var records []*domain.GenerationRecord
	files := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var batch []*domain.GenerationRecord
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, 0, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		records = append(records, batch...)
		files++
	}

	if files == 0 {
		return nil, 0, fmt.Errorf("no .json export files in %s", dir)
	}
	return records, files, nil
}

func normalizeRecords(records []*domain.GenerationRecord) {
	now := time.Now()
	for _, record := range records {
		record.Style = normalizeStyle(record.Style.String())
		record.Title = strings.TrimSpace(record.Title)
		if record.Title == "" {
			record.Title = "Untitled presentation"
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
	}
}

func normalizeStyle(style string) domain.DeckStyle {
	if strings.Contains(strings.ToLower(strings.TrimSpace(style)), "report") {
		return domain.DeckStyleReport
	}
	return domain.DeckStylePresentation
}

func validateRecords(records []*domain.GenerationRecord) error {
	seen := make(map[string]bool)

	for i, record := range records {
		if record.DeckID == "" {
			return fmt.Errorf("record %d: missing deck_id", i)
		}
		if seen[record.DeckID] {
			return fmt.Errorf("duplicate deck_id: %s", record.DeckID)
		}
		seen[record.DeckID] = true

		if record.SlideCount < 0 {
			return fmt.Errorf("record %d (%s): negative slide_count", i, record.DeckID)
		}
	}

	return nil
}

func connectDB() (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		*dbHost, *dbPort, *dbUser, *dbPass, *dbName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func insertRecords(db *sql.DB, records []*domain.GenerationRecord) error {
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := ensureSchema(ctx, tx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	for _, record := range records {
		if err := insertRecord(ctx, tx, record); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", record.DeckID, err)
		}

		if *verbose {
			log.Printf("  → Imported: %s (%s)", record.Title, record.DeckID)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("✓ Inserted %d history records", len(records))
	return nil
}

func ensureSchema(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS generation_history (
			id              BIGSERIAL PRIMARY KEY,
			deck_id         TEXT NOT NULL,
			style           TEXT NOT NULL,
			title           TEXT NOT NULL,
			format_excerpt  TEXT NOT NULL,
			content_excerpt TEXT NOT NULL,
			provider        TEXT NOT NULL,
			model           TEXT NOT NULL,
			slide_count     INTEGER NOT NULL DEFAULT 0,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func insertRecord(ctx context.Context, tx *sql.Tx, record *domain.GenerationRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO generation_history
			(deck_id, style, title, format_excerpt, content_excerpt, provider, model, slide_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		record.DeckID,
		record.Style.String(),
		record.Title,
		record.FormatExcerpt,
		record.ContentExcerpt,
		record.Provider,
		record.Model,
		record.SlideCount,
		record.CreatedAt,
	)
	return err
}

func printSummary(records []*domain.GenerationRecord) {
	styles := make(map[domain.DeckStyle]int)
	providers := make(map[string]int)
	for _, record := range records {
		styles[record.Style]++
		providers[record.Provider]++
	}

	log.Println()
	log.Println("Summary:")
	log.Printf("- Total records: %d", len(records))
	for style, count := range styles {
		log.Printf("- Style %s: %d", style, count)
	}
	for provider, count := range providers {
		log.Printf("- Provider %s: %d", provider, count)
	}
}
