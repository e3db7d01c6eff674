package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProfileCache stores directory lookups for a short time
type ProfileCache interface {
	Get(ctx context.Context, key string) (*AccountProfile, bool, error)
	Set(ctx context.Context, key string, profile *AccountProfile, ttl time.Duration) error
}

// RedisProfileCache keeps profiles as JSON strings in Redis
type RedisProfileCache struct {
	client *redis.Client
	prefix string
}

// NewRedisProfileCache connects to the Redis instance at redisURL
func NewRedisProfileCache(ctx context.Context, redisURL string) (*RedisProfileCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisProfileCache{client: client, prefix: "profile:"}, nil
}

// Get returns the cached profile; ok is false on a miss
func (c *RedisProfileCache) Get(ctx context.Context, key string) (*AccountProfile, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var profile AccountProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, false, fmt.Errorf("decode cached profile: %w", err)
	}
	return &profile, true, nil
}

// Set stores profile under key for ttl
func (c *RedisProfileCache) Set(ctx context.Context, key string, profile *AccountProfile, ttl time.Duration) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, raw, ttl).Err()
}

// Close releases the Redis connection pool
func (c *RedisProfileCache) Close() error {
	return c.client.Close()
}

// CachedDirectory serves lookups from a ProfileCache before asking the upstream.
// Only successful lookups are cached; cache failures fall through to the upstream.
type CachedDirectory struct {
	next   AccountDirectory
	cache  ProfileCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedDirectory wraps next with cache
func NewCachedDirectory(next AccountDirectory, cache ProfileCache, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedDirectory{next: next, cache: cache, ttl: ttl, logger: logger}
}

// Lookup implements AccountDirectory
func (c *CachedDirectory) Lookup(ctx context.Context, subjectIdentifier, controllingAccountID string) (*AccountProfile, error) {
	key := controllingAccountID + ":" + subjectIdentifier

	profile, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Profile cache read failed", "key", key, "error", err)
	} else if ok {
		return profile, nil
	}

	profile, err = c.next.Lookup(ctx, subjectIdentifier, controllingAccountID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, profile, c.ttl); err != nil {
		c.logger.Warn("Profile cache write failed", "key", key, "error", err)
	}
	return profile, nil
}
