package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"tasker/pkg/logger"
)

const taskListKey = "tasks:list"

// Cache is an optional Redis-backed cache for the task list payload. A nil
// *Cache is valid and behaves as a permanent miss, so the app runs without
// Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at url. Returns nil (cache disabled) when url is
// empty or the server is unreachable.
func New(ctx context.Context, url string, poolSize int, ttl time.Duration) *Cache {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn(ctx, "Invalid REDIS_URL, cache disabled", "error", err)
		return nil
	}
	opts.PoolSize = poolSize
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "Redis unreachable, cache disabled", "error", err)
		return nil
	}
	logger.Info(ctx, "Redis cache initialized", "pool_size", poolSize, "ttl", ttl)
	return &Cache{client: client, ttl: ttl}
}

// GetTaskList reads the cached list payload. Returns (nil, false) on miss or
// error; the payload is raw JSON bytes so hits skip re-marshalling.
func (c *Cache) GetTaskList(ctx context.Context) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, taskListKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get task list failed", "error", err)
		return nil, false
	}
	return b, true
}

// SetTaskList stores the list payload with the configured TTL.
func (c *Cache) SetTaskList(ctx context.Context, payload []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, taskListKey, payload, c.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set task list failed", "error", err)
	}
}

// InvalidateTaskList drops the cached payload so the next read hits the DB.
// Call after every task mutation.
func (c *Cache) InvalidateTaskList(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, taskListKey).Err(); err != nil {
		logger.Debug(ctx, "Redis invalidate task list failed", "error", err)
	}
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
