// Package cache provides the response cache used by the services. Values are
// stored as JSON under a common key prefix so the whole namespace can be
// dropped when data changes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Tomlord1122/todo-api/internal/config"
)

// Cache is a JSON value cache with prefix-scoped invalidation.
type Cache interface {
	// Get decodes the value stored under key into dest and reports whether
	// it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// SetIfGeneration stores value like Set unless DeletePattern has run
	// since gen was read from Generation. It reports whether it stored.
	SetIfGeneration(ctx context.Context, key string, value any, gen uint64) (bool, error)
	// Generation is a counter advanced by every DeletePattern.
	Generation() uint64
	// DeletePattern removes every key matching the glob pattern.
	DeletePattern(ctx context.Context, pattern string) error
	Ping(ctx context.Context) error
	Stats() Stats
	Close() error
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Enabled bool    `json:"enabled"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Sets    uint64  `json:"sets"`
	Deletes uint64  `json:"deletes"`
	Errors  uint64  `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// New returns a Redis cache for cfg, or a no-op cache when no Redis address
// is configured. The Redis server must answer a ping within five seconds.
func New(cfg config.CacheConfig) (Cache, error) {
	if cfg.RedisAddr == "" {
		log.Println("[cache] REDIS_ADDR not set, response cache disabled")
		return Nop{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Printf("[cache] Connected to redis at %s (prefix=%q, ttl=%s)", cfg.RedisAddr, cfg.Prefix, cfg.TTL)
	return NewRedis(client, cfg.Prefix, cfg.TTL), nil
}

// Redis is a Cache backed by a go-redis client.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	// gen counts invalidations in this process. SetIfGeneration holds mu
	// for reading and DeletePattern for writing, so a guarded Set either
	// lands before the delete sweep or sees the new generation.
	mu  sync.RWMutex
	gen atomic.Uint64

	hits, misses, sets, deletes, errors atomic.Uint64
}

func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.misses.Add(1)
			return false, nil
		}
		c.errors.Add(1)
		return false, fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.errors.Add(1)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	c.hits.Add(1)
	return true, nil
}

func (c *Redis) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.errors.Add(1)
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.errors.Add(1)
		return fmt.Errorf("cache set error: %w", err)
	}

	c.sets.Add(1)
	return nil
}

func (c *Redis) SetIfGeneration(ctx context.Context, key string, value any, gen uint64) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.gen.Load() != gen {
		return false, nil
	}
	if err := c.Set(ctx, key, value); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Redis) Generation() uint64 {
	return c.gen.Load()
}

// DeletePattern walks the keyspace with SCAN rather than KEYS so a large
// namespace does not block the server.
func (c *Redis) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen.Add(1)

	var (
		cursor  uint64
		deleted int
	)

	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+pattern, 100).Result()
		if err != nil {
			c.errors.Add(1)
			return fmt.Errorf("cache scan error: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.errors.Add(1)
				return fmt.Errorf("cache delete error: %w", err)
			}
			deleted += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.deletes.Add(uint64(deleted))
	return nil
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return Stats{
		Enabled: true,
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Deletes: c.deletes.Load(),
		Errors:  c.errors.Load(),
		HitRate: hitRate,
	}
}

func (c *Redis) Close() error {
	return c.client.Close()
}

// Nop is a Cache that stores nothing; every Get is a miss.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error)                     { return false, nil }
func (Nop) Set(context.Context, string, any) error                             { return nil }
func (Nop) SetIfGeneration(context.Context, string, any, uint64) (bool, error) { return false, nil }
func (Nop) Generation() uint64                                                 { return 0 }
func (Nop) DeletePattern(context.Context, string) error                        { return nil }
func (Nop) Ping(context.Context) error                                         { return nil }
func (Nop) Stats() Stats                                                       { return Stats{} }
func (Nop) Close() error                                                       { return nil }
