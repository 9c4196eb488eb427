package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultStatusTTL = 30 * time.Second

// StatusCache remembers each user's active flag for a short TTL.
// Key format: user:active:<user_id>, value "1" or "0".
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusCache wraps client. A non-positive ttl falls back to 30s.
func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = defaultStatusTTL
	}
	return &StatusCache{client: client, ttl: ttl}
}

// Get returns the cached flag and whether it was present.
func (c *StatusCache) Get(ctx context.Context, userID string) (bool, bool, error) {
	val, err := c.client.Get(ctx, statusKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("status cache get: %w", err)
	}
	return val == "1", true, nil
}

func (c *StatusCache) Set(ctx context.Context, userID string, active bool) error {
	if err := c.client.Set(ctx, statusKey(userID), encodeStatus(active), c.ttl).Err(); err != nil {
		return fmt.Errorf("status cache set: %w", err)
	}
	return nil
}

// SetIfAbsent fills a missing key and leaves an existing one alone.
func (c *StatusCache) SetIfAbsent(ctx context.Context, userID string, active bool) error {
	if err := c.client.SetNX(ctx, statusKey(userID), encodeStatus(active), c.ttl).Err(); err != nil {
		return fmt.Errorf("status cache set-if-absent: %w", err)
	}
	return nil
}

func (c *StatusCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, statusKey(userID)).Err(); err != nil {
		return fmt.Errorf("status cache delete: %w", err)
	}
	return nil
}

func statusKey(userID string) string {
	return "user:active:" + userID
}

func encodeStatus(active bool) string {
	if active {
		return "1"
	}
	return "0"
}
