package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 10 * time.Minute

// Cached decorates a Source with a Redis/Dragonfly cache. Dictionaries are
// read-only per load, so a short TTL is plenty; a cache failure falls through
// to the underlying source instead of failing the lookup.
type Cached struct {
	src    Source
	client *redis.Client
	ttl    time.Duration
}

// NewCached wraps src with a cache. A zero ttl uses the default.
func NewCached(src Source, client *redis.Client, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cached{src: src, client: client, ttl: ttl}
}

func (c *Cached) Lookup(ctx context.Context, t Type) ([]Entry, error) {
	if !Known(t) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}

	key := cacheKey(t)
	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var entries []Entry
		if err := json.Unmarshal(data, &entries); err == nil {
			return entries, nil
		}
		// Corrupt cache entry; drop it and reload.
		c.client.Del(ctx, key)
	}

	entries, err := c.src.Lookup(ctx, t)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Warn("failed to cache dictionary", "type", t, "error", err)
		}
	}
	return entries, nil
}

func cacheKey(t Type) string {
	return "dict:" + string(t)
}
