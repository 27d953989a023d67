package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/echoscribe/backend/internal/auth"
	"github.com/echoscribe/backend/pkg/response"
)

// RateLimit returns a fixed-window per-user limiter for the pipeline
// endpoints. The pipeline itself stays stateless; this sits in front of it.
// perMinute <= 0 disables limiting. Redis errors fail open: an unavailable
// counter must not take the pipeline down with it.
func RateLimit(rdb *redis.Client, perMinute int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if perMinute <= 0 || rdb == nil {
			c.Next()
			return
		}
		userID := c.MustGet(auth.ContextUserID).(uuid.UUID)
		key := fmt.Sprintf("ratelimit:%s:%s", userID, time.Now().UTC().Format("200601021504"))

		ctx := c.Request.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limit counter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			_ = rdb.Expire(ctx, key, time.Minute).Err()
		}
		if count > int64(perMinute) {
			response.TooManyRequests(c, "too many requests, please wait a minute and try again")
			c.Abort()
			return
		}
		c.Next()
	}
}
