package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/namesmith/internal/domain"
)

const cacheKeyPrefix = "namesmith:availability:"

// Cache stores registrar answers between jobs.
type Cache interface {
	// Get returns the cached result and whether one was found.
	Get(ctx context.Context, registrar, fullDomain string) (domain.AvailabilityResult, bool, error)
	Set(ctx context.Context, registrar string, result domain.AvailabilityResult, ttl time.Duration) error
}

// NoopCache never stores anything.
type NoopCache struct{}

// Get implements Cache.
func (NoopCache) Get(context.Context, string, string) (domain.AvailabilityResult, bool, error) {
	return domain.AvailabilityResult{}, false, nil
}

// Set implements Cache.
func (NoopCache) Set(context.Context, string, domain.AvailabilityResult, time.Duration) error {
	return nil
}

// RedisCache keeps JSON-encoded results under
// "namesmith:availability:<registrar>:<domain>" with a TTL.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// CacheKey returns the Redis key for a registrar answer.
func CacheKey(registrar, fullDomain string) string {
	return cacheKeyPrefix + registrar + ":" + fullDomain
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, registrar, fullDomain string) (domain.AvailabilityResult, bool, error) {
	raw, err := c.client.Get(ctx, CacheKey(registrar, fullDomain)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.AvailabilityResult{}, false, nil
	}
	if err != nil {
		return domain.AvailabilityResult{}, false, fmt.Errorf("redis get: %w", err)
	}
	var res domain.AvailabilityResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return domain.AvailabilityResult{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	return res, true, nil
}

// Set implements Cache. Non-definitive statuses are not stored.
func (c *RedisCache) Set(ctx context.Context, registrar string, result domain.AvailabilityResult, ttl time.Duration) error {
	if !result.Status.Definitive() {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.client.Set(ctx, CacheKey(registrar, result.FullDomain), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
