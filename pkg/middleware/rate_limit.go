package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prontuario/prontuario/backend/go-services/pkg/metrics"
	"golang.org/x/time/rate"
)

// KeyFunc picks the rate-limit bucket for a request.
type KeyFunc func(c *gin.Context) string

// ClientIPKey buckets requests by client IP.
func ClientIPKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// limiterStore is a lazily filled per-key token-bucket map.
type limiterStore struct {
	limiters sync.Map // map[string]*rate.Limiter
	rps      float64
	burst    int
}

func (s *limiterStore) get(key string) *rate.Limiter {
	if v, ok := s.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := s.limiters.LoadOrStore(key, rate.NewLimiter(rate.Limit(s.rps), s.burst))
	return v.(*rate.Limiter)
}

// RateLimitMiddleware returns a Gin middleware enforcing an in-memory token
// bucket per client IP. rps = allowed events per second, burst = maximum
// tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return RateLimitMiddlewareWithKey(rps, burst, ClientIPKey)
}

// RateLimitMiddlewareWithKey is RateLimitMiddleware with a custom bucket key.
func RateLimitMiddlewareWithKey(rps float64, burst int, key KeyFunc) gin.HandlerFunc {
	store := &limiterStore{rps: rps, burst: burst}
	return func(c *gin.Context) {
		if !store.get(key(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
