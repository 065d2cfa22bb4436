package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jrprasath/paperhouse-backend/internal/handlers"
	"github.com/jrprasath/paperhouse-backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
	ImpactHandler  *handlers.ImpactHandler
	ContactHandler *handlers.ContactHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware("paperhouse-backend"))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "https://jrprasath.github.io"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/auth/login", cfg.AuthHandler.Login)
		api.GET("/impact", cfg.ImpactHandler.Get)
		api.POST("/contact", cfg.RateLimiter.Limit(), cfg.ContactHandler.Submit)
	}

	// Admin
	admin := router.Group("/api")
	admin.Use(cfg.AuthMiddleware.RequireAuth())
	{
		admin.PUT("/impact", cfg.ImpactHandler.Update)
		admin.POST("/impact/reset", cfg.ImpactHandler.Reset)
		admin.GET("/impact/history", cfg.ImpactHandler.History)
		admin.GET("/impact/backups", cfg.ImpactHandler.Backups)
		admin.POST("/impact/backup", cfg.ImpactHandler.CreateBackup)
		admin.POST("/impact/restore/:backup", cfg.ImpactHandler.Restore)
		admin.GET("/impact/stats", cfg.ImpactHandler.Stats)

		admin.GET("/contact", cfg.ContactHandler.List)
		admin.GET("/contact/:id", cfg.ContactHandler.Get)
		admin.PUT("/contact/:id/status", cfg.ContactHandler.UpdateStatus)
		admin.DELETE("/contact/:id", cfg.ContactHandler.Delete)
	}

	return router
}

// ParseOrigins splits a comma-separated ALLOWED_ORIGINS value.
func ParseOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
