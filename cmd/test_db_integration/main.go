package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jadrxma/presentation-go/internal/domain"
	"github.com/jadrxma/presentation-go/internal/service/database"
	"github.com/jadrxma/presentation-go/internal/util"
)

func main() {
	logger, _ := util.NewLogger("info", "")
	defer logger.Sync()

	log.Println("=== PostgreSQL Generation History Integration Test ===")
	log.Println()

	// Initialize PostgreSQL
	postgresCfg := database.PostgresConfig{
		Host:     envOrDefault("POSTGRES_HOST", "localhost"),
		Port:     envOrDefaultInt("POSTGRES_PORT", 5432),
		User:     envOrDefault("POSTGRES_USER", "postgres"),
		Password: envOrDefault("POSTGRES_PASSWORD", ""),
		Database: envOrDefault("POSTGRES_DB", "presentation"),
		SSLMode:  envOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	postgres, err := database.NewPostgresService(postgresCfg, logger)
	if err != nil {
		log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
	}
	defer postgres.Close()
	log.Println("✓ PostgreSQL connected")

	// Initialize Repository
	ctx := context.Background()
	repo := database.NewHistoryRepository(postgres, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("❌ Failed to ensure schema: %v", err)
	}
	log.Println("✓ generation_history schema ensured")

	// Test 1: Record two probe entries
	older := probeRecord("Integration Probe A", time.Now().Add(-time.Minute))
	newer := probeRecord("Integration Probe B", time.Now())
	if err := repo.Record(ctx, older); err != nil {
		log.Fatalf("❌ Failed to record history: %v", err)
	}
	if err := repo.Record(ctx, newer); err != nil {
		log.Fatalf("❌ Failed to record history: %v", err)
	}
	if older.ID == 0 || newer.ID == 0 {
		log.Fatal("❌ Inserted records did not get IDs back!")
	}
	log.Printf("✓ Recorded probe entries (ids %d, %d)", older.ID, newer.ID)

	// Test 2: Recent returns newest first
	records, err := repo.Recent(ctx, 10)
	if err != nil {
		log.Fatalf("❌ Failed to read recent history: %v", err)
	}
	log.Printf("✓ Loaded %d recent records", len(records))

	posNewer, posOlder := -1, -1
	for i, record := range records {
		switch record.ID {
		case newer.ID:
			posNewer = i
		case older.ID:
			posOlder = i
		}
	}
	if posNewer == -1 || posOlder == -1 {
		log.Fatal("❌ Probe entries missing from recent history!")
	}
	if posNewer > posOlder {
		log.Fatal("❌ Recent history is not newest-first!")
	}
	log.Println("✓ Recent history ordered newest-first")

	// Test 3: Limit clamp
	limited, err := repo.Recent(ctx, 1)
	if err != nil {
		log.Fatalf("❌ Failed to read limited history: %v", err)
	}
	if len(limited) != 1 {
		log.Fatalf("❌ Expected 1 record with limit=1, got %d", len(limited))
	}
	log.Println("✓ Limit respected")

	// Cleanup probe rows
	if _, err := postgres.DB().ExecContext(ctx,
		"DELETE FROM generation_history WHERE id = $1 OR id = $2", older.ID, newer.ID); err != nil {
		log.Fatalf("❌ Failed to clean up probe rows: %v", err)
	}
	log.Println("✓ Probe rows cleaned up")

	log.Println()
	log.Println("=== ✅ ALL TESTS PASSED ===")
	log.Println()
	fmt.Println("Summary:")
	fmt.Printf("- Connection: ✓ Working\n")
	fmt.Printf("- Schema: ✓ Present\n")
	fmt.Printf("- Record/Recent: ✓ Working\n")
	fmt.Printf("- Ordering: ✓ Newest first\n")
}

func probeRecord(title string, createdAt time.Time) *domain.GenerationRecord {
	return &domain.GenerationRecord{
		DeckID:         "itest-" + uuid.NewString(),
		Style:          domain.DeckStylePresentation,
		Title:          title,
		FormatExcerpt:  "integration probe format",
		ContentExcerpt: "integration probe content",
		Provider:       "probe",
		Model:          "probe",
		SlideCount:     1,
		CreatedAt:      createdAt,
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠ Invalid value for %s (%s), using default %d\n", key, value, fallback)
		return fallback
	}
	return parsed
}
