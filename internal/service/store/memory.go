package store

import (
	"context"
	"sync"
	"time"

	"github.com/jadrxma/presentation-go/internal/domain"
	"github.com/jadrxma/presentation-go/pkg/errors"
	"go.uber.org/zap"
)

// MemoryStore keeps decks in a process-local map. Expired decks stay in
// the map until the sweeper removes them but are never returned by Get.
type MemoryStore struct {
	mu     sync.RWMutex
	decks  map[string]*domain.Deck
	logger *zap.Logger
}

func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		decks:  make(map[string]*domain.Deck),
		logger: logger,
	}
}

func (m *MemoryStore) Save(_ context.Context, deck *domain.Deck) error {
	if deck == nil || deck.ID == "" {
		return errors.NewStoreError("deck has no ID", "save", "", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.decks[deck.ID] = deck

	m.logger.Debug("Deck stored",
		zap.String("deck_id", deck.ID),
		zap.Time("expires_at", deck.ExpiresAt),
	)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*domain.Deck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	deck, ok := m.decks[id]
	if !ok {
		return nil, nil
	}
	if deck.Expired(time.Now()) {
		return nil, nil
	}
	return deck, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.decks, id)
	return nil
}

func (m *MemoryStore) ExpiredIDs(_ context.Context, now time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, deck := range m.decks {
		if deck.Expired(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Count reports how many decks are held, including not-yet-swept ones.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.decks)
}

func (m *MemoryStore) Close() error {
	return nil
}
