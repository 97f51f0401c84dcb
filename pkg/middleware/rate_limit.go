package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware enforces a fixed-window request budget per caller and
// route. Authenticated callers are keyed by user id, anonymous ones by
// client IP. Keys use the route template (c.FullPath), not the raw URL, so
// parameterized routes like /sales/:id/void share one bucket per caller.
//
// A redis failure fails open: checkout must keep posting commissions when
// the cache is down, and the ledger's own idempotency bounds the damage of
// an unthrottled burst.
func RateLimitMiddleware(redisClient *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.ClientIP()
		if userID, ok := c.Get("user_id"); ok {
			caller = fmt.Sprint(userID)
		}
		key := fmt.Sprintf("ledger:ratelimit:%s:%s", caller, c.FullPath())

		ctx := c.Request.Context()
		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			redisClient.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
