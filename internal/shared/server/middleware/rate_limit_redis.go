package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"scentmatch-backend/internal/shared/util"
)

// RedisLimiter enforces a fixed window per key in Redis so limits hold across
// instances. The window is sized so that Burst requests fit at the given Rate.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisLimiter parses a redis:// URL and verifies connectivity.
func NewRedisLimiter(ctx context.Context, redisURL string) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisLimiter{client: client, prefix: "scentmatch:ratelimit:", now: time.Now}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration, error) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0, nil
	}
	window := windowFor(rule)
	slot := l.now().UnixNano() / int64(window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, util.HashKey(key), slot)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("redis incr: %w", err)
	}
	if incr.Val() <= int64(rule.Burst) {
		return true, 0, nil
	}
	elapsed := time.Duration(l.now().UnixNano() % int64(window))
	return false, window - elapsed, nil
}

// Ping reports whether Redis is reachable.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

func windowFor(rule RateLimitRule) time.Duration {
	seconds := float64(rule.Burst) / rule.Rate
	window := time.Duration(math.Ceil(seconds*1000)) * time.Millisecond
	if window < time.Second {
		window = time.Second
	}
	return window
}
