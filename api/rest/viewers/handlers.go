package viewers

import (
	"net/http"
	"strings"
	"time"

	"codeberg.org/storefront/server/internal/auth"
	"codeberg.org/storefront/server/internal/errors"
	"codeberg.org/storefront/server/internal/logger"
	"codeberg.org/storefront/server/storefront/viewers"
	"github.com/gin-gonic/gin"
)

// GetViewerCount godoc
// @Summary Get live viewer count
// @Description Number of sessions for the product that are active and were seen within the active window
// @Tags viewers
// @Produce json
// @Param productId query string true "Product ID"
// @Success 200 {object} CountResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /viewers [get]
func GetViewerCount(manager *viewers.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID := strings.TrimSpace(c.Query("productId"))

		count, err := manager.Count(c.Request.Context(), productID)
		if err != nil {
			respondError(c, err, "failed to count viewers")
			return
		}

		c.JSON(http.StatusOK, CountResponse{
			ProductID:   productID,
			ViewerCount: count,
			Timestamp:   time.Now().UTC(),
		})
	}
}

// JoinViewerSession godoc
// @Summary Start a viewer session
// @Description Called by the presence widget when a product page mounts. Every tab gets its own session.
// @Tags viewers
// @Accept json
// @Produce json
// @Param request body JoinRequest true "Product being viewed"
// @Success 201 {object} JoinResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /viewers [post]
func JoinViewerSession(manager *viewers.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req JoinRequest
		if !bindOptionalJSON(c, &req) {
			return
		}

		session, err := manager.Join(c.Request.Context(), req.ProductID, clientInfo(c))
		if err != nil {
			respondError(c, err, "failed to create viewer session")
			return
		}

		logger.FromContext(c.Request.Context()).Debug("viewer joined",
			"session_id", session.SessionID,
			"product_id", session.ProductID,
		)

		c.JSON(http.StatusCreated, JoinResponse{
			SessionID: session.SessionID,
			ProductID: session.ProductID,
			Message:   "viewer session created",
			Timestamp: time.Now().UTC(),
		})
	}
}

// HeartbeatViewerSession godoc
// @Summary Refresh a viewer session
// @Description Called every ~30s while the page stays open. An ended session answers 410 and the widget joins again.
// @Tags viewers
// @Accept json
// @Produce json
// @Param request body HeartbeatRequest true "Session to refresh"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 410 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /viewers [patch]
func HeartbeatViewerSession(manager *viewers.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req HeartbeatRequest
		if !bindOptionalJSON(c, &req) {
			return
		}

		sessionID, ok := sessionIDParam(c, req.SessionID)
		if !ok {
			return
		}

		session, err := manager.Heartbeat(c.Request.Context(), sessionID)
		if err != nil {
			respondError(c, err, "failed to update viewer session")
			return
		}

		c.JSON(http.StatusOK, SessionResponse{
			SessionID: session.SessionID,
			Message:   "heartbeat recorded",
			Timestamp: time.Now().UTC(),
		})
	}
}

// LeaveViewerSession godoc
// @Summary End a viewer session
// @Description Called when the product page unmounts. The record is kept until retention cleanup.
// @Tags viewers
// @Produce json
// @Param sessionId query string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /viewers [delete]
func LeaveViewerSession(manager *viewers.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionIDParam(c, c.Query("sessionId"))
		if !ok {
			return
		}

		session, err := manager.Leave(c.Request.Context(), sessionID)
		if err != nil {
			respondError(c, err, "failed to end viewer session")
			return
		}

		c.JSON(http.StatusOK, SessionResponse{
			SessionID: session.SessionID,
			Message:   "viewer session ended",
			Timestamp: time.Now().UTC(),
		})
	}
}

// GetCleanupStats godoc
// @Summary Viewer session statistics
// @Description Active, pending-expiry and total session counts across all products
// @Tags viewers
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /viewers/cleanup [get]
func GetCleanupStats(manager *viewers.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := manager.Stats(c.Request.Context())
		if err != nil {
			errors.InternalError(c, "failed to load viewer stats", err)
			return
		}

		c.JSON(http.StatusOK, StatsResponse{
			ActiveSessions:  stats.ActiveSessions,
			PendingInactive: stats.PendingInactive,
			TotalSessions:   stats.TotalSessions,
			Timestamp:       time.Now().UTC(),
		})
	}
}

// RunCleanup godoc
// @Summary Run viewer session cleanup now
// @Description Expires stale sessions and deletes sessions past retention. Requires the cron secret or an admin token when either is configured.
// @Tags viewers
// @Produce json
// @Success 200 {object} CleanupResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} CleanupErrorResponse
// @Router /viewers/cleanup [post]
// @Security BearerAuth
func RunCleanup(janitor *viewers.Janitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context()).With("triggered_by", triggeredBy(c))

		report, err := janitor.Sweep(c.Request.Context())
		if err != nil {
			log.Error("manual viewer cleanup failed", "error", err)

			c.JSON(http.StatusInternalServerError, CleanupErrorResponse{
				Success:   false,
				Error:     "viewer cleanup failed",
				Details:   errors.Classify(err).Sanitized,
				Timestamp: time.Now().UTC(),
			})
			return
		}

		log.Info("manual viewer cleanup finished", "expired", report.Expired, "deleted", report.Deleted)

		c.JSON(http.StatusOK, CleanupResponse{
			Success:                true,
			TriggeredBy:            triggeredBy(c),
			InactiveSessionsMarked: report.Expired,
			OldSessionsDeleted:     report.Deleted,
			ActiveSessions:         report.ActiveSessions,
			PendingInactive:        report.PendingInactive,
			Timestamp:              time.Now().UTC(),
		})
	}
}

// admin user id when a JWT admitted the request, otherwise the caller kind
func triggeredBy(c *gin.Context) string {
	if userID, ok := auth.GetUserID(c); ok && userID != "" {
		return userID
	}

	return auth.GetCaller(c)
}

// an empty body is treated as an empty request so the missing field is reported
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}

	if err := c.ShouldBindJSON(dst); err != nil {
		errors.BadRequest(c, "invalid request body", err)
		return false
	}

	return true
}

// session ids are UUIDs; anything else cannot exist, so skip the store
func sessionIDParam(c *gin.Context, raw string) (string, bool) {
	sessionID := strings.TrimSpace(raw)

	if sessionID == "" {
		errors.ValidationError(c, "sessionId is required", nil)
		return "", false
	}

	if !errors.IsValidUUID(sessionID) {
		errors.SessionNotFound(c)
		return "", false
	}

	return sessionID, true
}

// best-effort client metadata: first forwarded hop, then X-Real-IP
func clientInfo(c *gin.Context) viewers.ClientInfo {
	ip := "Unknown"

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			ip = first
		}
	} else if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		ip = realIP
	}

	return viewers.ClientInfo{
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: ip,
	}
}
