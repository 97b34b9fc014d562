package health

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/storefront/server/internal/logger"
	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

// reports whether the session store answers; nil means always healthy
type Pinger func(ctx context.Context) error

// Handler godoc
// @Summary Health check
// @Description Service status including session store reachability
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func Handler(backend string, ping Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := Response{
			Status:  "healthy",
			Service: "storefront-viewers",
			Store:   backend,
			Version: Version,
		}

		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := ping(ctx); err != nil {
				logger.FromContext(c.Request.Context()).Warn("session store health check failed", "error", err)

				resp.Status = "degraded"
				c.JSON(http.StatusServiceUnavailable, resp)
				return
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}

// PingHandler godoc
// @Summary Ping
// @Tags health
// @Produce json
// @Success 200 {object} PingResponse
// @Router /api/v1/ping [get]
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
