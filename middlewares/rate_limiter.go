package middlewares

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/7FIl/freepass-2026/utils"
)

const visitorIdle = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key (client IP by default).
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	keyFunc  func(*gin.Context) string
	visitors map[string]*visitor
	mu       sync.Mutex
	lastGC   time.Time
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		burst:    burst,
		keyFunc:  func(c *gin.Context) string { return c.ClientIP() },
		visitors: make(map[string]*visitor),
		lastGC:   time.Now(),
	}
}

// NewStrictRateLimiter allows perMinute requests per minute per IP, for
// login and registration.
func NewStrictRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return NewRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastGC) > visitorIdle {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > visitorIdle {
				delete(rl.visitors, k)
			}
		}
		rl.lastGC = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(rl.keyFunc(c)).Allow() {
			utils.RespondError(c, http.StatusTooManyRequests, errors.New("Too many requests, please try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}
