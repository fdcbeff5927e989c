package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyspace prefixes every key written by the Redis store so a shared Redis
// instance can host other applications without collisions.
const keyspace = "vm:"

// Redis is a Store backed by a shared Redis instance. Values are stored as
// JSON; Get returns the raw bytes and GetOrFetch decodes them. Redis errors
// degrade to cache misses (reads) or are dropped (writes): the cache is an
// optimization, never a source of truth, so an unreachable Redis must not
// fail the request path.
type Redis struct {
	client *redis.Client
}

// RedisOptions configures the Redis-backed store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects to Redis and verifies the connection with a ping.
// The returned cleanup closes the client.
func NewRedis(opts RedisOptions) (*Redis, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	cleanup := func() { _ = client.Close() }
	return &Redis{client: client}, cleanup, nil
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) (any, bool) {
	b, err := r.client.Get(ctx, keyspace+key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// Set implements Store. A ttl <= 0 stores the value without expiry.
func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if ttl < 0 {
		ttl = 0
	}
	_ = r.client.Set(ctx, keyspace+key, data, ttl).Err()
}

// Invalidate implements Store.
func (r *Redis) Invalidate(ctx context.Context, key string) {
	_ = r.client.Del(ctx, keyspace+key).Err()
}

// InvalidatePrefix implements Store using an incremental SCAN so large
// keyspaces are never blocked by a KEYS call.
func (r *Redis) InvalidatePrefix(ctx context.Context, prefix string) {
	r.deleteByPattern(ctx, keyspace+prefix+"*")
}

// Clear implements Store. Only this application's keyspace is touched.
func (r *Redis) Clear(ctx context.Context) {
	r.deleteByPattern(ctx, keyspace+"*")
}

func (r *Redis) deleteByPattern(ctx context.Context, pattern string) {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			_ = r.client.Del(ctx, keys...).Err()
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
