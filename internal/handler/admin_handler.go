package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DoggoSantini/vinyl-service/internal/middleware"
	"github.com/DoggoSantini/vinyl-service/internal/model"
	"github.com/DoggoSantini/vinyl-service/internal/service"
)

// AdminHandler exposes diagnostics for tuning the ranking.
type AdminHandler struct {
	resolver AlbumResolver
	logger   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(resolver AlbumResolver, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// Candidates lists every page the encyclopedia returned for a query, best
// first, with the signals that produced each score.
// Route: GET /api/v1/admin/candidates?q=abbey+road
func (h *AdminHandler) Candidates(c *gin.Context) {
	query := model.Query(c.Query("q"))

	ranked, err := h.resolver.Candidates(c.Request.Context(), query)
	if errors.Is(err, service.ErrEmptyQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Warn("listing candidates",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("query", string(query)),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "encyclopedia search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":      query,
		"candidates": ranked,
	})
}
