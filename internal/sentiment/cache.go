package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// Cache stores sentiment scores by key.
type Cache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, v float64, ttl time.Duration) error
}

// CacheKey derives a cache key from the language and text.
func CacheKey(language, text string) string {
	sum := sha256.Sum256([]byte(language + "\x00" + text))
	return "sentiment:" + hex.EncodeToString(sum[:])
}

// RedisCache is a Cache backed by Redis strings.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache wraps an existing client.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// DialRedisCache connects to the Redis URL and verifies the connection.
func DialRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "sentiment: parse redis url")
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, eris.Wrap(err, "sentiment: ping redis")
	}
	return &RedisCache{rdb: rdb}, nil
}

// Get returns the cached score, or ok=false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (float64, bool, error) {
	s, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, eris.Wrap(err, "sentiment: redis get")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, eris.Wrapf(err, "sentiment: corrupt cache entry %s", key)
	}
	return v, true, nil
}

// Set stores a score. A zero ttl keeps it forever.
func (c *RedisCache) Set(ctx context.Context, key string, v float64, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, strconv.FormatFloat(v, 'g', -1, 64), ttl).Err(); err != nil {
		return eris.Wrap(err, "sentiment: redis set")
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
