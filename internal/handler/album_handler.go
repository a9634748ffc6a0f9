package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DoggoSantini/vinyl-service/internal/middleware"
	"github.com/DoggoSantini/vinyl-service/internal/model"
	"github.com/DoggoSantini/vinyl-service/internal/service"
)

// AlbumResolver is the part of service.AlbumService the handlers use.
type AlbumResolver interface {
	Resolve(ctx context.Context, query model.Query) (model.ResultRecord, error)
	ResolveBatch(ctx context.Context, queries []model.Query) ([]model.ResultRecord, error)
	Candidates(ctx context.Context, query model.Query) ([]model.ScoredCandidate, error)
}

// AlbumHandler serves resolve requests from the vinyl web app.
type AlbumHandler struct {
	resolver AlbumResolver
	batchMax int
	logger   *zap.Logger
}

// NewAlbumHandler creates an AlbumHandler. batchMax caps the number of
// queries in one batch request.
func NewAlbumHandler(resolver AlbumResolver, batchMax int, logger *zap.Logger) *AlbumHandler {
	return &AlbumHandler{
		resolver: resolver,
		batchMax: batchMax,
		logger:   logger,
	}
}

// Resolve returns the album card for one query.
// Route: GET /api/v1/albums/resolve?q=abbey+road
//
// Upstream failures still produce 200 with "No album found." or an
// unenriched record; only a blank query is a client error.
func (h *AlbumHandler) Resolve(c *gin.Context) {
	query := model.Query(c.Query("q"))

	rec, err := h.resolver.Resolve(c.Request.Context(), query)
	if err != nil {
		h.fail(c, query, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

type batchRequest struct {
	Queries []string `json:"queries" binding:"required,min=1"`
}

// ResolveBatch resolves several queries at once.
// Route: POST /api/v1/albums/resolve  {"queries": ["Abbey Road", "Kid A"]}
func (h *AlbumHandler) ResolveBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"queries\": [...]} with at least one query"})
		return
	}
	if len(req.Queries) > h.batchMax {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many queries", "max": h.batchMax})
		return
	}

	queries := make([]model.Query, len(req.Queries))
	for i, q := range req.Queries {
		queries[i] = model.Query(q)
	}

	results, err := h.resolver.ResolveBatch(c.Request.Context(), queries)
	if err != nil {
		h.fail(c, "", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *AlbumHandler) fail(c *gin.Context, query model.Query, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The client went away; nothing useful can be written.
		h.logger.Debug("resolve abandoned",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("query", string(query)),
		)
		c.Abort()
	default:
		h.logger.Error("resolve failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("query", string(query)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
