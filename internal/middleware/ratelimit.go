package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qwlai/reit-tracker/internal/domain/dto"
)

// visitor tracks one client IP inside the current window.
type visitor struct {
	windowStart time.Time
	count       int
}

// Fixed-window limits shared by every RateLimiter instance. State is per process.
var (
	visitors   = make(map[string]*visitor)
	window     = time.Minute
	limit      = 60
	visitorsMu sync.Mutex
	lastSweep  time.Time
)

// allow records one request from ip at now and reports whether it is within the limit.
// Windows are fixed: they start at a client's first request and are not extended by later ones.
func allow(ip string, now time.Time) bool {
	visitorsMu.Lock()
	defer visitorsMu.Unlock()

	if now.Sub(lastSweep) > window {
		sweep(now)
	}

	v, ok := visitors[ip]
	if !ok || now.Sub(v.windowStart) > window {
		visitors[ip] = &visitor{windowStart: now, count: 1}
		return true
	}
	v.count++
	return v.count <= limit
}

// sweep drops visitors whose window has expired. Called with visitorsMu held,
// at most once per window.
func sweep(now time.Time) {
	for ip, v := range visitors {
		if now.Sub(v.windowStart) > window {
			delete(visitors, ip)
		}
	}
	lastSweep = now
}

// RateLimiter limits each client IP to `limit` requests per `window`
// (60 per minute by default) and answers 429 beyond that.
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse("rate limit exceeded", nil))
			return
		}
		c.Next()
	}
}
