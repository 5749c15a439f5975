package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dapur-api/internal/metrics"
	"golang.org/x/time/rate"
)

// limiterInfo is a struct that holds a rate limiter and the last time it was seen.
type limiterInfo struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// RateLimitByIP applies rate limiting to requests per IP address. Each IP
// may burst up to burst requests and then refills at rps per second.
// Limiters idle for longer than expiration are dropped every cleanupInterval.
func RateLimitByIP(scope string, rps float64, burst int, cleanupInterval time.Duration, expiration time.Duration) gin.HandlerFunc {
	var limiters sync.Map

	// Cleanup goroutine
	go func() {
		for range time.Tick(cleanupInterval) {
			limiters.Range(func(key, value interface{}) bool {
				info := value.(*limiterInfo)
				info.mu.Lock()
				idle := time.Since(info.lastSeen)
				info.mu.Unlock()
				if idle > expiration {
					limiters.Delete(key)
				}
				return true
			})
		}
	}()

	retryAfter := "1"
	if rps > 0 && rps < 1 {
		retryAfter = strconv.Itoa(int(1/rps + 0.5))
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()

		// Use LoadOrStore to ensure thread safety
		actual, _ := limiters.LoadOrStore(ip, &limiterInfo{
			limiter:  rate.NewLimiter(rate.Limit(rps), burst),
			lastSeen: time.Now(),
		})

		info := actual.(*limiterInfo)
		info.mu.Lock()
		info.lastSeen = time.Now()
		info.mu.Unlock()

		if !info.limiter.Allow() {
			// Too many requests
			metrics.RateLimited.WithLabelValues(scope).Inc()
			c.Header("Retry-After", retryAfter)
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
