package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies a per-IP token bucket: r requests per second with
// burst b. Buckets idle for ten minutes are evicted.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	var buckets sync.Map

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-10 * time.Minute)
			buckets.Range(func(k, v interface{}) bool {
				if v.(*clientBucket).lastSeen.Before(cutoff) {
					buckets.Delete(k)
				}
				return true
			})
		}
	}()

	return func(c *gin.Context) {
		v, _ := buckets.LoadOrStore(c.ClientIP(), &clientBucket{limiter: rate.NewLimiter(r, b)})
		bucket := v.(*clientBucket)
		bucket.lastSeen = time.Now()

		if !bucket.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
