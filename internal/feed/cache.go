// Package feed caches the resolved post feed in Redis and pushes post
// mutations to websocket subscribers.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultKey holds the cached feed.
const DefaultKey = "sciencehub:feed:posts"

// Cache stores one JSON document under a fixed key. A nil *Cache never hits.
type Cache struct {
	redis  *redis.Client
	key    string
	ttl    time.Duration
	tracer trace.Tracer
}

// NewCache wraps client. A non-positive ttl defaults to 30 seconds.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		panic("feed: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{
		redis:  client,
		key:    DefaultKey,
		ttl:    ttl,
		tracer: otel.Tracer("sciencehub.internal.feed"),
	}
}

// Get decodes the cached document into dst and reports whether it existed.
func (c *Cache) Get(ctx context.Context, dst any) (bool, error) {
	if c == nil {
		return false, nil
	}
	ctx, span := c.tracer.Start(ctx, "feed.cache_get")
	defer span.End()

	data, err := c.redis.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("feed: failed to load cache: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("feed: failed to decode cache: %w", err)
	}
	return true, nil
}

// Set replaces the cached document.
func (c *Cache) Set(ctx context.Context, v any) error {
	if c == nil {
		return nil
	}
	ctx, span := c.tracer.Start(ctx, "feed.cache_set")
	defer span.End()

	data, err := json.Marshal(v)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("feed: failed to marshal cache: %w", err)
	}
	if err := c.redis.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("feed: failed to persist cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached document.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.redis.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("feed: failed to invalidate cache: %w", err)
	}
	return nil
}
