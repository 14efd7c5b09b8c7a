package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"survivalboard/config"
	"survivalboard/metrics"
	"survivalboard/utils/response"
)

// RateLimiter is a per-client token bucket refilled once per interval
type RateLimiter struct {
	visitors map[string]*Visitor
	mu       sync.Mutex
	rate     int           // Tokens added per interval
	burst    int           // Bucket capacity
	interval time.Duration // Refill interval
	now      func() time.Time
}

type Visitor struct {
	tokens      int
	lastUpdated time.Time // Last refill tick
	lastSeen    time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*Visitor),
		rate:     cfg.Rate,
		burst:    cfg.Burst,
		interval: time.Minute,
		now:      time.Now,
	}
}

// Allow takes one token from the client's bucket
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	visitor, exists := rl.visitors[key]
	if !exists {
		visitor = &Visitor{tokens: rl.burst, lastUpdated: now}
		rl.visitors[key] = visitor
	}
	visitor.lastSeen = now

	refill := int(now.Sub(visitor.lastUpdated) / rl.interval)
	if refill > 0 {
		visitor.tokens = min(visitor.tokens+refill*rl.rate, rl.burst)
		visitor.lastUpdated = visitor.lastUpdated.Add(time.Duration(refill) * rl.interval)
	}

	if visitor.tokens > 0 {
		visitor.tokens--
		return true
	}
	return false
}

// Cleanup drops visitors idle for at least maxIdle whose buckets have refilled
// to capacity. A dropped visitor comes back with a full bucket, so forgetting it
// grants nothing.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) < maxIdle {
			continue
		}
		refill := int(now.Sub(v.lastUpdated) / rl.interval)
		if v.tokens+refill*rl.rate >= rl.burst {
			delete(rl.visitors, key)
		}
	}
}

func RateLimiterMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			metrics.RateLimiterRejections.WithLabelValues(c.FullPath()).Inc()
			response.FromStatus(c, status.Error(codes.ResourceExhausted, "too many requests, please try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}
