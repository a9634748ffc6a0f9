// Package handler contains HTTP request handlers.
// In Gin, a handler is any function with signature func(*gin.Context).
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check requests.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Healthz reports liveness only. It does not call Wikipedia or Spotify, so
// an upstream outage never takes the service out of rotation.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "vinyl-service",
	})
}
