package cache

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter counts requests per key in fixed windows backed by redis
type RateLimiter struct {
	helper *CacheHelper
}

func NewRateLimiter(cm *CacheManager) *RateLimiter {
	return &RateLimiter{helper: cm.RateLimit}
}

// Allow increments the counter for key and reports whether it is still within
// limit. retryAfter is the remaining window when the limit is exceeded.
// Without redis every request is allowed.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error) {
	if !rl.helper.Enabled() || limit <= 0 {
		return true, 0, nil
	}

	cacheKey := rl.helper.GetCacheKey(key)
	count, err := rl.helper.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, 0, fmt.Errorf("rate limit incr error: %w", err)
	}
	if count == 1 {
		if err := rl.helper.client.Expire(ctx, cacheKey, window).Err(); err != nil {
			return true, 0, fmt.Errorf("rate limit expire error: %w", err)
		}
	}

	if count > int64(limit) {
		ttl, _ := rl.helper.client.TTL(ctx, cacheKey).Result()
		if ttl < 0 {
			ttl = window
		}
		return false, ttl, nil
	}
	return true, 0, nil
}
