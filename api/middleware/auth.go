package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"footbrief-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// BearerAuth rejects requests whose Authorization header does not carry token.
// An empty token disables the guarded routes entirely.
func BearerAuth(token string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		presented, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			RequestLogger(c, log).Warn("Rejected admin request",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Next()
	}
}
