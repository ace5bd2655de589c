package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/sitegen/internal/logger"
)

// APIKeyHeader carries the shared secret on every protected request.
const APIKeyHeader = "X-Api-Key"

// APIKeyAuth returns a middleware that rejects requests whose X-Api-Key header does not match secret.
// An empty secret fails closed: every request gets a 500 until one is configured.
// Parameters:
//   - secret: expected header value.
// Returns:
//   - gin.HandlerFunc: middleware handler.
func APIKeyAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			logger.CtxError(c.Request.Context(), "Rejecting request: server API key is not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"status": "error",
				"error":  "Server API key is not configured",
			})
			return
		}

		provided := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Unauthorized",
			})
			return
		}

		c.Next()
	}
}
