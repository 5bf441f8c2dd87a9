// Package cache stores shopper carts in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/storefront/internal/domain/cart"
)

const (
	DefaultKeyPrefix = "storefront:cart"
	DefaultTTL       = 7 * 24 * time.Hour
)

// CartStore implements cart.Store. Each cart is one JSON value whose TTL is
// refreshed on every save.
type CartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewCartStore(client *redis.Client, keyPrefix string, ttl time.Duration) *CartStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CartStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Connect parses a redis:// URL and pings the server
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (s *CartStore) key(id string) string {
	return s.keyPrefix + ":" + id
}

func (s *CartStore) Load(ctx context.Context, id string) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart %s: %w", id, err)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", id, err)
	}
	return &c, nil
}

func (s *CartStore) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", c.ID, err)
	}
	if err := s.client.Set(ctx, s.key(c.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set cart %s: %w", c.ID, err)
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete cart %s: %w", id, err)
	}
	return nil
}
