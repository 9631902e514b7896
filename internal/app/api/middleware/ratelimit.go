package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubworks/memberpay/pkg/ratelimit"
)

// RateLimitMiddleware caps requests per client IP using the shared window
// counter.
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
