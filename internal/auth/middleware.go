package auth

import (
	"codeberg.org/storefront/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// guards scheduler endpoints with a shared bearer secret; open when no secret is configured
func CronSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Set(ContextCaller, CallerAnyone)
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || !secretMatches(token, secret) {
			errors.Unauthorized(c, "invalid or missing cron secret")
			return
		}

		c.Set(ContextCaller, CallerCron)
		c.Next()
	}
}

// accepts the cron secret or an admin JWT; open when neither is configured
func AdminOrCronMiddleware(cronSecret, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cronSecret == "" && jwtSecret == "" {
			c.Set(ContextCaller, CallerAnyone)
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			errors.Unauthorized(c, "authorization header required")
			return
		}

		if cronSecret != "" && secretMatches(token, cronSecret) {
			c.Set(ContextCaller, CallerCron)
			c.Next()
			return
		}

		if jwtSecret == "" {
			errors.Unauthorized(c, "invalid or expired token")
			return
		}

		claims, err := ValidateJWT(token, jwtSecret)
		if err != nil {
			errors.Unauthorized(c, "invalid or expired token")
			return
		}

		if !claims.IsAdmin {
			errors.Forbidden(c, "admin access required")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextCaller, CallerAdmin)
		c.Next()
	}
}

// extracts user_id from context after AdminOrCronMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	return id, ok
}

// reports which credential admitted the request
func GetCaller(c *gin.Context) string {
	return c.GetString(ContextCaller)
}
