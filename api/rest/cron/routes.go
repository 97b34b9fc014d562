package cron

import (
	"codeberg.org/storefront/server/storefront/viewers"
	"github.com/gin-gonic/gin"
)

// secretAuth checks the scheduler's bearer secret
func RegisterRoutes(router *gin.RouterGroup, janitor *viewers.Janitor, secretAuth gin.HandlerFunc) {
	cron := router.Group("/cron", secretAuth)

	cron.GET("/cleanup-viewers", CleanupViewers(janitor))
	cron.POST("/cleanup-viewers", CleanupViewers(janitor))
}
