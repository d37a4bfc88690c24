package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix is prepended to every Redis key.
const DefaultKeyPrefix = "tranzlate:"

// Redis is a Redis-backed cache shared between processes.
type Redis struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string        // Redis connection URL (e.g., "redis://localhost:6379/0")
	TTL       time.Duration // 0 = no expiration
	KeyPrefix string        // Prefix for all keys (default: "tranzlate:")
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	c := NewRedisFromClient(redis.NewClient(opts), cfg.TTL, cfg.KeyPrefix)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return c, nil
}

// NewRedisFromClient creates a Redis cache from an existing client.
func NewRedisFromClient(client *redis.Client, ttl time.Duration, keyPrefix string) *Redis {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Redis{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a value from Redis. Connection errors are reported as misses.
func (c *Redis) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a value in Redis.
func (c *Redis) Set(ctx context.Context, key string, value string) error {
	return c.client.Set(ctx, c.keyPrefix+key, value, c.ttl).Err()
}

// Delete removes a value from Redis.
func (c *Redis) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.keyPrefix+key).Err()
}

// Ping tests the Redis connection.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}

// Verify Redis implements Cache
var _ Cache = (*Redis)(nil)
