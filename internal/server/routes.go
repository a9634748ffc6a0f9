package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DoggoSantini/vinyl-service/internal/config"
	"github.com/DoggoSantini/vinyl-service/internal/handler"
	"github.com/DoggoSantini/vinyl-service/internal/middleware"
)

// Deps are the long-lived services the handlers need.
type Deps struct {
	Resolver handler.AlbumResolver
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
// Dependencies are passed explicitly; each handler gets exactly what it uses.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler()
	albumHandler := handler.NewAlbumHandler(deps.Resolver, cfg.Resolve.BatchMax, logger)
	adminHandler := handler.NewAdminHandler(deps.Resolver, logger)

	r.GET("/healthz", healthHandler.Healthz)

	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	albums := api.Group("/albums")
	albums.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	albums.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		albums.GET("/resolve", albumHandler.Resolve)
		albums.POST("/resolve", albumHandler.ResolveBatch)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.GET("/candidates", adminHandler.Candidates)
	}
}
