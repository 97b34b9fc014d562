package viewers

import (
	"codeberg.org/storefront/server/storefront/viewers"
	"github.com/gin-gonic/gin"
)

// cleanupAuth guards the manual sweep trigger
func RegisterRoutes(router *gin.RouterGroup, manager *viewers.Manager, janitor *viewers.Janitor, cleanupAuth gin.HandlerFunc) {
	router.GET("/viewers", GetViewerCount(manager))
	router.POST("/viewers", JoinViewerSession(manager))
	router.PATCH("/viewers", HeartbeatViewerSession(manager))
	router.DELETE("/viewers", LeaveViewerSession(manager))

	router.GET("/viewers/cleanup", GetCleanupStats(manager))
	router.POST("/viewers/cleanup", cleanupAuth, RunCleanup(janitor))
}
