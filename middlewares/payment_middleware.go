package middlewares

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/7FIl/freepass-2026/utils"
)

// PaymentSecurityHeaders adds the stricter headers used on payment routes.
func PaymentSecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

// PaymentRateLimiter throttles payment attempts per authenticated user,
// falling back to the client IP. Must run after AuthMiddleware.
func PaymentRateLimiter(perMinute int) gin.HandlerFunc {
	rl := NewRateLimiter(rate.Every(time.Minute/time.Duration(max(perMinute, 1))), max(perMinute, 1))
	rl.keyFunc = func(c *gin.Context) string {
		if actor, ok := CurrentActor(c); ok {
			return "user:" + actor.ID
		}
		return "ip:" + c.ClientIP()
	}
	return func(c *gin.Context) {
		if !rl.limiterFor(rl.keyFunc(c)).Allow() {
			utils.RespondError(c, http.StatusTooManyRequests, errors.New("Too many payment attempts, please wait"))
			c.Abort()
			return
		}
		c.Next()
	}
}
