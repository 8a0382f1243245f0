package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/daleel/daleel-backend/internal/config"
	"github.com/daleel/daleel-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// WindowCounter counts hits on a key that expires after window.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisWindowCounter keeps counters in Redis so limits hold across instances.
type RedisWindowCounter struct {
	rdb *redis.Client
}

// NewRedisWindowCounter creates a new RedisWindowCounter.
func NewRedisWindowCounter(rdb *redis.Client) *RedisWindowCounter {
	return &RedisWindowCounter{rdb: rdb}
}

// Hit increments key and returns the new count.
func (r *RedisWindowCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimiter is a fixed-window per-IP limiter.
type RateLimiter struct {
	counter WindowCounter
	scope   string
	rate    int
	window  time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewRateLimiter allows rate requests per window per client IP within scope
// (e.g. 30 logins per minute).
func NewRateLimiter(counter WindowCounter, scope string, rate int, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		scope:   scope,
		rate:    rate,
		window:  window,
		now:     time.Now,
		log:     log.With().Str("component", "rate_limiter").Str("scope", scope).Logger(),
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
// When the counter store is unreachable requests are let through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rate <= 0 {
			c.Next()
			return
		}

		now := rl.now()
		windowSecs := int64(rl.window / time.Second)
		if windowSecs <= 0 {
			windowSecs = 1
		}
		slot := now.Unix() / windowSecs
		key := config.CacheKey.RateLimitKey(rl.scope, c.ClientIP(), slot)

		count, err := rl.counter.Hit(c.Request.Context(), key, rl.window)
		if err != nil {
			rl.log.Warn().Err(err).Msg("Rate limit check failed, allowing request")
			c.Next()
			return
		}

		if count > int64(rl.rate) {
			retryAfter := (slot+1)*windowSecs - now.Unix()
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
