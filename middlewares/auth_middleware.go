package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxClaims = "claims"
)

// RevocationChecker reports logged-out token ids.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) bool
}

func AuthMiddleware(tokens *utils.TokenManager, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := tokens.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}
		if revoked != nil && revoked.IsRevoked(c.Request.Context(), claims.ID) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Token has been revoked"))
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

func setIdentity(c *gin.Context, claims *utils.CustomClaims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxRole, claims.Role)
	c.Set(ctxClaims, claims)
}

// RequireRoles lets the request through only for the listed roles. It must
// run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authentication required"))
			c.Abort()
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		utils.RespondError(c, http.StatusForbidden, errors.New("Insufficient permissions"))
		c.Abort()
	}
}

// CurrentActor returns the authenticated caller set by the auth middleware.
func CurrentActor(c *gin.Context) (services.Actor, bool) {
	userID := c.GetString(ctxUserID)
	if userID == "" {
		return services.Actor{}, false
	}
	return services.Actor{ID: userID, Role: models.Role(c.GetString(ctxRole))}, true
}

func CurrentClaims(c *gin.Context) (*utils.CustomClaims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.CustomClaims)
	return claims, ok
}
