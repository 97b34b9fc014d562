package cron

import (
	"net/http"
	"time"

	"codeberg.org/storefront/server/internal/errors"
	"codeberg.org/storefront/server/internal/logger"
	"codeberg.org/storefront/server/storefront/viewers"
	"github.com/gin-gonic/gin"
)

// CleanupViewers godoc
// @Summary Scheduled viewer session cleanup
// @Description Entry point for the external scheduler. Expires stale viewer sessions and deletes ones past retention, in paced batches.
// @Tags cron
// @Produce json
// @Success 200 {object} CleanupResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} CleanupErrorResponse
// @Router /cron/cleanup-viewers [get]
// @Router /cron/cleanup-viewers [post]
// @Security BearerAuth
func CleanupViewers(janitor *viewers.Janitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())

		report, err := janitor.Sweep(c.Request.Context())
		if err != nil {
			log.Error("scheduled viewer cleanup failed", "error", err)

			c.JSON(http.StatusInternalServerError, CleanupErrorResponse{
				Success:   false,
				Error:     "viewer cleanup failed",
				Details:   errors.Classify(err).Sanitized,
				Timestamp: time.Now().UTC(),
			})
			return
		}

		log.Info("scheduled viewer cleanup finished",
			"expired", report.Expired,
			"deleted", report.Deleted,
			"failed", report.ExpireFailed+report.DeleteFailed,
		)

		c.JSON(http.StatusOK, CleanupResponse{
			Success:                true,
			InactiveSessionsMarked: report.Expired,
			OldSessionsDeleted:     report.Deleted,
			Timestamp:              time.Now().UTC(),
		})
	}
}
