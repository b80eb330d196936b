// Package store holds generated decks between the generate and export
// steps. Two implementations exist: an in-process map for single-node
// setups and a Redis-backed store for deployments that restart often.
package store

import (
	"context"
	"time"

	"github.com/jadrxma/presentation-go/internal/domain"
)

type DeckStore interface {
	Save(ctx context.Context, deck *domain.Deck) error
	// Get returns (nil, nil) for unknown or expired IDs.
	Get(ctx context.Context, id string) (*domain.Deck, error)
	Delete(ctx context.Context, id string) error
	// ExpiredIDs lists decks whose ExpiresAt has passed, for the sweeper.
	ExpiredIDs(ctx context.Context, now time.Time) ([]string, error)
	Close() error
}
