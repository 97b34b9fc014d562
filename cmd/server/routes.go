package main

import (
	"net/http"
	"slices"
	"time"

	"codeberg.org/storefront/server/api/rest/cron"
	"codeberg.org/storefront/server/api/rest/health"
	"codeberg.org/storefront/server/api/rest/viewers"
	_ "codeberg.org/storefront/server/docs"
	"codeberg.org/storefront/server/internal/auth"
	"codeberg.org/storefront/server/internal/logger"
	"codeberg.org/storefront/server/internal/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware())
	router.Use(CORSMiddleware(server.config.AllowedOrigins))

	limit, err := ratelimit.Middleware(server.config.RateLimit, server.redis)
	if err != nil {
		return err
	}

	router.GET("/health", health.Handler(server.config.StoreBackend, server.ping))
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler()))

	// the storefront widget calls the root paths; /api/v1 mirrors them
	root := router.Group("")
	v1 := router.Group("/api/v1")

	v1.GET("/ping", health.PingHandler)

	for _, group := range []*gin.RouterGroup{root, v1} {
		viewers.RegisterRoutes(
			group.Group("", limit),
			server.manager,
			server.janitor,
			auth.AdminOrCronMiddleware(server.config.CronSecret, server.config.JWTSecret),
		)

		cron.RegisterRoutes(group, server.janitor, auth.CronSecretMiddleware(server.config.CronSecret))
	}

	return nil
}

// allows the configured storefront origins; "*" allows any origin
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cors.New(cfg)
}
