package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RateLimiter counts calls per window in Redis, so every portal replica draws on one budget
// for checkout validation. Keys share the store's prefix scheme.
type RateLimiter struct {
	c      *redis.Client
	prefix string
}

func NewRateLimiter(addr, prefix string) *RateLimiter {
	return &RateLimiter{c: redis.NewClient(&redis.Options{Addr: addr}), prefix: prefix}
}

// Allow counts one call against key and reports whether the count is still within limit.
// The key lives for window after its latest call.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	k := key
	if rl.prefix != "" {
		k = rl.prefix + ":" + key
	}

	var count *redis.IntCmd
	if _, err := rl.c.TxPipelined(ctx, func(tx redis.Pipeliner) error {
		count = tx.Incr(ctx, k)
		tx.Expire(ctx, k, window)
		return nil
	}); err != nil {
		return false, 0, errors.Wrapf(err, "redis rate limit %s", key)
	}
	return count.Val() <= limit, count.Val(), nil
}

func (rl *RateLimiter) Close() error {
	return rl.c.Close()
}
