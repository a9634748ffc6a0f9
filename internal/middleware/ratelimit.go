package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit applies a token bucket per caller. Callers are identified by
// the API key set by the auth middleware, or by client IP when auth is
// disabled. Every resolve fans out to two external APIs, so this is what
// keeps one caller from exhausting their quotas. A non-positive rate
// disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		caller := c.ClientIP()
		if key, ok := c.Get(contextKeyAPIKey); ok {
			caller = "key:" + key.(string)
		}

		mu.Lock()
		limiter, ok := limiters[caller]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[caller] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
