package executor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultCacheTTL applies when no TTL is configured.
const DefaultCacheTTL = 5 * time.Minute

// ResultCache caches executed result sets in Redis, keyed by a digest of
// the final statement and parameters. Entries are invalidated per table.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a result cache on an existing Redis client.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResultCache{client: client, ttl: ttl}
}

// NewResultCacheFromURL connects to Redis and verifies the connection.
func NewResultCacheFromURL(ctx context.Context, url string, ttl time.Duration) (*ResultCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewResultCache(client, ttl), nil
}

func (c *ResultCache) key(table, stmt string, args []any) string {
	// Args are JSON-encoded so parameter boundaries survive hashing;
	// naive string joins let ["Tom","B"] and ["To","mB"] collide.
	encoded, err := json.Marshal(args)
	if err != nil {
		encoded = []byte(fmt.Sprintf("%#v", args))
	}
	h := sha256.New()
	h.Write([]byte(stmt))
	h.Write([]byte{0})
	h.Write(encoded)
	return fmt.Sprintf("search:%s:%s", table, hex.EncodeToString(h.Sum(nil)))
}

// Get retrieves a cached result set. The second return value reports a hit.
func (c *ResultCache) Get(ctx context.Context, table, stmt string, args []any) ([]Record, bool, error) {
	data, err := c.client.Get(ctx, c.key(table, stmt, args)).Result()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var records []Record
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		// Corrupt entries are dropped rather than served.
		c.client.Del(ctx, c.key(table, stmt, args))
		return nil, false, fmt.Errorf("failed to unmarshal cached records: %w", err)
	}
	return records, true, nil
}

// Set stores a result set under the query digest.
func (c *ResultCache) Set(ctx context.Context, table, stmt string, args []any, records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	return c.client.Set(ctx, c.key(table, stmt, args), data, c.ttl).Err()
}

// Invalidate removes every cached result set for a table.
func (c *ResultCache) Invalidate(ctx context.Context, table string) error {
	pattern := fmt.Sprintf("search:%s:*", table)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan failed for pattern %s: %w", pattern, err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Client returns the underlying Redis client for health checks.
func (c *ResultCache) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection.
func (c *ResultCache) Close() error {
	return c.client.Close()
}
