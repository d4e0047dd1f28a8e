package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursetrack-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursetrack-server-go/internal/features/product"
	"github.com/mo-amir99/coursetrack-server-go/internal/middleware"
	"github.com/mo-amir99/coursetrack-server-go/internal/services/statscache"
	"github.com/mo-amir99/coursetrack-server-go/pkg/cache"
	"github.com/mo-amir99/coursetrack-server-go/pkg/config"
	"github.com/mo-amir99/coursetrack-server-go/pkg/health"
)

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, cfg *config.Config, db *gorm.DB, cacheClient cache.Client, logger *slog.Logger) {
	// Health check endpoints (no /api prefix for probes)
	healthHandler := health.NewHandler(db, cacheClient, logger)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.Version)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if !cfg.IsProduction() {
		engine.GET("/debug/db-stats", healthHandler.DBStats)
	}

	api := engine.Group("/api")

	auth := middleware.NewAuthMiddleware(db, cfg.JWTSecret, logger).AuthenticateToken()
	stats := statscache.NewService(cacheClient, cfg.StatsCacheTTL, logger)

	lesson.RegisterRoutes(api, lesson.NewHandler(db, logger, stats), auth)
	product.RegisterRoutes(api, product.NewHandler(db, logger, stats), auth)
}
