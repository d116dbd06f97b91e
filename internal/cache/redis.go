// Package cache provides an optional Redis-backed read-through cache for
// the redirect path. A cache entry maps a short code to its original URL;
// click accounting always goes to the persistent store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no entry exists for the given short code.
var ErrCacheMiss = errors.New("cache miss")

const keyPrefix = "short:"

type ResolveCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResolveCache(client *redis.Client, ttl time.Duration) *ResolveCache {
	return &ResolveCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *ResolveCache) Get(ctx context.Context, shortCode string) (string, error) {
	const op = "cache.ResolveCache.Get"

	val, err := c.client.Get(ctx, keyPrefix+shortCode).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, ErrCacheMiss)
		}

		return "", fmt.Errorf("%s: failed to get cache entry: %w", op, err)
	}

	return val, nil
}

func (c *ResolveCache) Set(ctx context.Context, shortCode, originalURL string) error {
	const op = "cache.ResolveCache.Set"

	if err := c.client.Set(ctx, keyPrefix+shortCode, originalURL, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set cache entry: %w", op, err)
	}

	return nil
}

func (c *ResolveCache) Del(ctx context.Context, shortCode string) error {
	const op = "cache.ResolveCache.Del"

	if err := c.client.Del(ctx, keyPrefix+shortCode).Err(); err != nil {
		return fmt.Errorf("%s: failed to delete cache entry: %w", op, err)
	}

	return nil
}
