package errors

import (
	"net/http"
	"strings"

	"codeberg.org/storefront/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.InternalError(), errors.BadRequest(), etc. for critical errors
//     These functions handle both logging and HTTP response automatically
//   - Use logger.ErrorErr() only for non-critical errors where processing continues
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For services/repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to log and respond
//   - Do not log errors in non-handler code (avoid double logging)
//     Batch jobs are the exception: per-record failures are logged where they are skipped

// standard error codes
const (
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeValidationError  = "validation_error"
	CodeServerError      = "server_error"
	CodeBadRequest       = "bad_request"
	CodeTooManyRequests  = "too_many_requests"
	CodeSessionNotFound  = "session_not_found"
	CodeSessionExpired   = "session_expired"
	CodeStoreUnavailable = "store_unavailable"
)

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 403 forbidden error
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "access denied"
	}

	c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
		Error:   CodeForbidden,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = Classify(err).Sanitized
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 error for a missing or malformed required field
func ValidationError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "validation failed"
	}

	details := ""
	if err != nil {
		details = Classify(err).Sanitized
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: message,
		Details: details,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	info := Classify(err)

	// log full error server-side with context
	logger.FromContext(c.Request.Context()).Error(message,
		"error", err,
		"category", info.Category,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)

	code := CodeServerError
	if info.Category == CategoryDatabase || info.Category == CategoryNetwork || info.Category == CategoryTimeout {
		code = CodeStoreUnavailable
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   code,
		Message: message,
		Details: info.Sanitized,
	})
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// returns a 404 error for session not found
func SessionNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeSessionNotFound,
		Message: "session not found",
	})
}

// returns a 410 error for a session that already ended
func SessionExpired(c *gin.Context) {
	c.JSON(http.StatusGone, ErrorResponse{
		Error:   CodeSessionExpired,
		Message: "session has ended, join again to start a new one",
	})
}

// validates a UUID string format
func IsValidUUID(id string) bool {
	if id == "" {
		return false
	}

	return uuid.Validate(strings.TrimSpace(id)) == nil
}
