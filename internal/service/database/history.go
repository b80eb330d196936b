package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jadrxma/presentation-go/internal/constants"
	"github.com/jadrxma/presentation-go/internal/domain"
	"go.uber.org/zap"
)

// HistoryRepository records each successful generation so the UI can
// list recent decks. Rows survive deck expiry; they describe what was
// generated, not the deck content itself.
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewHistoryRepository(postgres *PostgresService, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     postgres.DB(),
		logger: logger,
	}
}

// EnsureSchema creates the history table when it does not exist yet.
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	query := `
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
	`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create generation_history table: %w", err)
	}
	return nil
}

func (r *HistoryRepository) Record(ctx context.Context, record *domain.GenerationRecord) error {
	query := `
		INSERT INTO generation_history
			(deck_id, style, title, format_excerpt, content_excerpt, provider, model, slide_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		record.DeckID,
		record.Style.String(),
		record.Title,
		record.FormatExcerpt,
		record.ContentExcerpt,
		record.Provider,
		record.Model,
		record.SlideCount,
		record.CreatedAt,
	).Scan(&record.ID)

	if err != nil {
		return fmt.Errorf("failed to insert generation record: %w", err)
	}
	return nil
}

func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]*domain.GenerationRecord, error) {
	if limit <= 0 {
		limit = constants.HistoryConfig.DefaultLimit
	}
	limit = min(limit, constants.HistoryConfig.MaxLimit)

	query := `
		SELECT id, deck_id, style, title, format_excerpt, content_excerpt,
		       provider, model, slide_count, created_at
		FROM generation_history
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation history: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.GenerationRecord, 0, limit)
	for rows.Next() {
		var (
			record domain.GenerationRecord
			style  string
		)
		if err := rows.Scan(
			&record.ID,
			&record.DeckID,
			&style,
			&record.Title,
			&record.FormatExcerpt,
			&record.ContentExcerpt,
			&record.Provider,
			&record.Model,
			&record.SlideCount,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan generation record: %w", err)
		}
		record.Style = domain.DeckStyle(style)
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generation history: %w", err)
	}

	return records, nil
}
