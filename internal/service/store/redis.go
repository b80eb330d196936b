package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jadrxma/presentation-go/internal/constants"
	"github.com/jadrxma/presentation-go/internal/domain"
	"github.com/jadrxma/presentation-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const deckKeyPrefix = "deck:"

// storedDeck is the Redis value shape. Deck.HTML is excluded from API JSON
// but must survive the storage round trip, so it rides in an explicit field.
type storedDeck struct {
	*domain.Deck
	HTML string `json:"html"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisStore persists decks as JSON values with a TTL matching the deck
// expiry, so Redis drops them without any sweeping on our side.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisStore(cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewStoreError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return &RedisStore{
		client: client,
		logger: logger,
	}, nil
}

func (r *RedisStore) Save(ctx context.Context, deck *domain.Deck) error {
	if deck == nil || deck.ID == "" {
		return errors.NewStoreError("deck has no ID", "save", "", nil)
	}

	key := deckKeyPrefix + deck.ID

	jsonData, err := json.Marshal(storedDeck{Deck: deck, HTML: deck.HTML})
	if err != nil {
		return errors.NewStoreError("marshal failed", "save", key, err)
	}

	ttl := time.Until(deck.ExpiresAt)
	if ttl <= 0 {
		return errors.NewStoreError("deck already expired", "save", key, nil)
	}

	if err := r.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		r.logger.Error("Deck save failed", zap.String("key", key), zap.Error(err))
		return errors.NewStoreError("set failed", "save", key, err)
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*domain.Deck, error) {
	key := deckKeyPrefix + id

	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Deck get failed", zap.String("key", key), zap.Error(err))
		return nil, errors.NewStoreError("get failed", "get", key, err)
	}

	stored := storedDeck{Deck: &domain.Deck{}}
	if err := json.Unmarshal([]byte(value), &stored); err != nil {
		r.logger.Error("Deck unmarshal failed", zap.String("key", key), zap.Error(err))
		return nil, errors.NewStoreError("unmarshal failed", "get", key, err)
	}

	deck := stored.Deck
	deck.HTML = stored.HTML
	if deck.Expired(time.Now()) {
		return nil, nil
	}
	return deck, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	key := deckKeyPrefix + id
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Deck delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewStoreError("delete failed", "delete", key, err)
	}
	return nil
}

// ExpiredIDs always returns nothing: Redis evicts deck keys through the
// TTL set at save time.
func (r *RedisStore) ExpiredIDs(_ context.Context, _ time.Time) ([]string, error) {
	return nil, nil
}

func (r *RedisStore) IsConnected(ctx context.Context) bool {
	return r.client.Ping(ctx).Err() == nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", zap.Error(err))
		return err
	}
	r.logger.Info("Redis disconnected")
	return nil
}
