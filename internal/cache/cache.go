package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "todos:user:"

// PageCache stores serialized todo list pages in redis with a fixed TTL.
// It is strictly an optimization: every method failure is safe to ignore,
// the authoritative data lives in postgres.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{
		client: client,
		ttl:    ttl,
	}
}

// PageKey builds the cache key for one user's page. All keys for a user share
// the same prefix so a single write can blow away every page at once.
func PageKey(userID string, page, limit int) string {
	return fmt.Sprintf("%s%s:page:%d:limit:%d", keyPrefix, userID, page, limit)
}

func userPrefix(userID string) string {
	return keyPrefix + userID + ":"
}

// GetPage unmarshals a cached page into dest. Returns false on miss.
func (c *PageCache) GetPage(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}

	return true, nil
}

func (c *PageCache) SetPage(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// InvalidateUser deletes every cached page for the user. Deleting by prefix
// rather than by the touched page keeps invalidation correct regardless of
// how a write shifts items across page boundaries.
func (c *PageCache) InvalidateUser(ctx context.Context, userID string) error {
	var cursor uint64
	pattern := userPrefix(userID) + "*"

	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
