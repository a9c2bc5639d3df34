package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7FIl/freepass-2026/utils"
)

// WebSocketAuthMiddleware reads the token from the query string since
// browsers cannot set headers on a websocket handshake.
func WebSocketAuthMiddleware(tokens *utils.TokenManager, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := tokens.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if revoked != nil && revoked.IsRevoked(c.Request.Context(), claims.ID) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}
