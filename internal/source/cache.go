package source

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/case-dashboard/internal/domain"
)

const payloadKeyPrefix = "case-dashboard:payload:"

// PayloadCache stores raw source payloads keyed by origin
type PayloadCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// cachedPayload is the envelope stored in both tiers
type cachedPayload struct {
	Data      []byte    `json:"data"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (p cachedPayload) expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// TieredCache checks an in-process LRU before an optional Redis tier.
// Redis hits are copied back into the LRU. The binaries load the dataset once
// per process, so across restarts only the Redis tier is read; the LRU serves
// repeated loads within one process and is the only tier when Redis is down.
type TieredCache struct {
	memory     *lru.Cache[string, cachedPayload]
	redis      *redis.Client
	defaultTTL time.Duration
	log        *logrus.Logger
	now        func() time.Time
}

// NewTieredCache creates the payload cache. redisClient may be nil.
func NewTieredCache(config domain.CacheConfig, redisClient *redis.Client, logger *logrus.Logger) (*TieredCache, error) {
	size := config.MemoryItems
	if size <= 0 {
		size = 16
	}
	memory, err := lru.New[string, cachedPayload](size)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	ttl := config.DefaultTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TieredCache{
		memory:     memory,
		redis:      redisClient,
		defaultTTL: ttl,
		log:        logger,
		now:        time.Now,
	}, nil
}

// NewRedisClient connects to Redis using the cache configuration
func NewRedisClient(ctx context.Context, config domain.CacheConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	opts.MaxRetries = config.MaxRetries

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Get returns a fresh payload from the first tier that holds one
func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	now := c.now()
	if p, ok := c.memory.Get(key); ok {
		if !p.expired(now) {
			return p.Data, true, nil
		}
		c.memory.Remove(key)
	}

	if c.redis == nil {
		return nil, false, nil
	}

	redisKey := payloadKey(key)
	val, err := c.redis.Get(ctx, redisKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get payload cache: %w", err)
	}

	var p cachedPayload
	if err := json.Unmarshal(val, &p); err != nil {
		c.log.WithError(err).WithField("key", redisKey).Warn("Removing corrupted cache entry")
		c.redis.Del(ctx, redisKey)
		return nil, false, nil
	}
	if p.expired(now) {
		c.redis.Del(ctx, redisKey)
		return nil, false, nil
	}

	c.memory.Add(key, p)
	return p.Data, true, nil
}

// Set stores the payload in every tier; ttl 0 uses the configured default
func (c *TieredCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := c.now()
	p := cachedPayload{Data: payload, CachedAt: now, ExpiresAt: now.Add(ttl)}
	c.memory.Add(key, p)

	if c.redis == nil {
		return nil
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload cache data: %w", err)
	}
	return c.redis.Set(ctx, payloadKey(key), data, ttl).Err()
}

func payloadKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s%x", payloadKeyPrefix, sum[:8])
}
