package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter map; it is reset when exceeded.
const maxTrackedClients = 10000

// RateLimiter applies a token bucket per client.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	log      logrus.FieldLogger

	// retryAfter is the Retry-After hint in seconds.
	retryAfter int
}

// NewRateLimiter creates a limiter allowing requestsPerMinute per client with the given burst.
func NewRateLimiter(requestsPerMinute, burst int, log logrus.FieldLogger) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	retryAfter := 60
	if requestsPerMinute > 0 {
		retryAfter = (60 + requestsPerMinute - 1) / requestsPerMinute
	}
	return &RateLimiter{
		limiters:   make(map[string]*rate.Limiter),
		rate:       rate.Limit(float64(requestsPerMinute) / 60),
		burst:      burst,
		retryAfter: retryAfter,
		log:        log,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= maxTrackedClients {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Handler returns the Gin middleware. Clients are keyed by token subject
// when authenticated, otherwise by client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GetSubject(c)
		if key == "" {
			key = c.ClientIP()
		}

		if !rl.limiter(key).Allow() {
			rl.log.WithFields(logrus.Fields{
				"correlation_id": GetCorrelationID(c),
				"client":         key,
				"path":           c.Request.URL.Path,
			}).Warn("middleware.RateLimiter: rate limit exceeded")

			c.Header("Retry-After", strconv.Itoa(rl.retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   gin.H{"code": "RATE_LIMITED", "message": "too many requests"},
			})
			return
		}
		c.Next()
	}
}
