package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/matchfund/matchfund-backend/errors"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/services"
)

// IPRateLimiter caps requests per client IP within scope. Redis failures let
// the request through so a cache outage never blocks payments.
func IPRateLimiter(limiter services.RateLimiter, scope string, limit int, window time.Duration) gin.HandlerFunc {
	log := logger.GetLogger().Named("rate_limit")

	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s", scope, c.ClientIP())
		allowed, count, retryAfter, err := limiter.CheckLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			log.Warnw("Rate limit check failed", "scope", scope, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		if !allowed {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(seconds))
			_ = c.Error(apperrors.RateLimitExceeded("Too many requests. Please try again later.", seconds))
			c.Abort()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Next()
	}
}
