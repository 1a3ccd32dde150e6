package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter is a fixed-window per-key request quota backed by Redis.
type RateLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
	logger *zap.Logger
}

func NewRateLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

// Middleware limits by client address. Exceeding the quota yields 429 with
// the window reset time; a Redis outage fails open so the limiter never
// takes the endpoint down with it.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", r.prefix, c.ClientIP())

		count, err := r.rdb.Incr(ctx, key).Result()
		if err != nil {
			r.logger.Warn("Rate limit check failed, allowing request",
				zap.String("key", key),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if count == 1 {
			r.rdb.Expire(ctx, key, r.window)
		}

		if count > int64(r.limit) {
			ttl, _ := r.rdb.TTL(ctx, key).Result()
			if ttl < 0 {
				ttl = r.window
			}
			c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":    "too many requests",
				"reset_at": time.Now().Add(ttl).UTC().Format(time.RFC3339),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
