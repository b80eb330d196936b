package store

import (
	"context"
	"sync"
	"time"

	"github.com/jadrxma/presentation-go/internal/constants"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Sweeper periodically removes expired decks from the store. Deletions
// fan out through a bounded goroutine pool since each one may be a
// network round trip.
type Sweeper struct {
	store    DeckStore
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(store DeckStore, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Deck sweeper started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Deck sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	ids, err := s.store.ExpiredIDs(ctx, time.Now())
	if err != nil {
		s.logger.Error("Sweep: listing expired decks failed", zap.Error(err))
		return
	}
	if len(ids) == 0 {
		return
	}

	if len(ids) > constants.SweepConfig.BatchLimit {
		ids = ids[:constants.SweepConfig.BatchLimit]
	}

	p := pool.New().WithMaxGoroutines(min(constants.SweepConfig.MaxWorkers, len(ids)))

	removed := 0
	removedMu := sync.Mutex{}

	for _, id := range ids {
		id := id
		p.Go(func() {
			if err := s.store.Delete(ctx, id); err != nil {
				s.logger.Warn("Sweep: delete failed", zap.String("deck_id", id), zap.Error(err))
				return
			}
			removedMu.Lock()
			removed++
			removedMu.Unlock()
		})
	}

	p.Wait()

	s.logger.Info("Sweep: expired decks removed",
		zap.Int("expired", len(ids)),
		zap.Int("removed", removed),
	)
}
