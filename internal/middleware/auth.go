// Package middleware contains Gin middleware functions.
// Each returns a gin.HandlerFunc that either calls c.Next() or aborts.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// contextKeyAPIKey is where auth middleware stores the caller's key for
// the rate limiter.
const contextKeyAPIKey = "api_key"

// APIKeyAuth validates keys for the resolve endpoints. The key can be sent
// in the X-API-Key header or the api_key query param.
// An empty key list disables the check, which is how the service runs
// behind a trusted frontend.
func APIKeyAuth(validKeys []string) gin.HandlerFunc {
	if len(validKeys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return keyAuth(validKeys, "missing API key", http.StatusUnauthorized, "invalid API key")
}

// AdminKeyAuth validates keys for the admin endpoints. Unlike APIKeyAuth it
// is never open: with no admin keys configured every request is rejected.
func AdminKeyAuth(adminKeys []string) gin.HandlerFunc {
	return keyAuth(adminKeys, "missing admin API key", http.StatusForbidden, "invalid admin API key")
}

func keyAuth(keys []string, missingMsg string, invalidStatus int, invalidMsg string) gin.HandlerFunc {
	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keySet[k] = struct{}{}
	}

	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = c.Query("api_key")
		}

		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": missingMsg})
			return
		}

		if _, ok := keySet[key]; !ok {
			c.AbortWithStatusJSON(invalidStatus, gin.H{"error": invalidMsg})
			return
		}

		c.Set(contextKeyAPIKey, key)
		c.Next()
	}
}
