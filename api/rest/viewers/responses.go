package viewers

import (
	stderrors "errors"

	"codeberg.org/storefront/server/internal/errors"
	"codeberg.org/storefront/server/storefront/viewers"
	"github.com/gin-gonic/gin"
)

// maps lifecycle errors onto HTTP responses
func respondError(c *gin.Context, err error, message string) {
	switch {
	case stderrors.Is(err, viewers.ErrProductIDRequired):
		errors.ValidationError(c, "productId is required", nil)
	case stderrors.Is(err, viewers.ErrSessionIDRequired):
		errors.ValidationError(c, "sessionId is required", nil)
	case stderrors.Is(err, viewers.ErrInvalidInput):
		errors.ValidationError(c, "", err)
	case stderrors.Is(err, viewers.ErrSessionNotFound):
		errors.SessionNotFound(c)
	case stderrors.Is(err, viewers.ErrSessionExpired):
		errors.SessionExpired(c)
	default:
		errors.InternalError(c, message, err)
	}
}
