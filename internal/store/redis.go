package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evermart/cart-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "cart:"
	defaultTTL       = 30 * 24 * time.Hour
)

// RedisStore persists carts in Redis. Expiry of idle carts is entirely
// delegated to Redis key TTLs.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get failed: %v", ErrStoreUnavailable, err)
	}

	cart, err := domain.DecodeCart(data)
	if err != nil {
		return nil, fmt.Errorf("decode cart for user %s: %w", userID, err)
	}
	return cart, nil
}

func (s *RedisStore) Save(ctx context.Context, cart *domain.ShoppingCart) error {
	data, err := domain.EncodeCart(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	if err := s.client.Set(ctx, s.key(cart.UserID()), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set failed: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: redis delete failed: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) key(userID string) string {
	return s.keyPrefix + userID
}
