package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// AIRateLimiter implements a per-user token bucket for assistant calls.
type AIRateLimiter struct {
	users map[uint]*userLimiter
	mu    sync.Mutex
	rate  rate.Limit
	burst int
	done  chan struct{}
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewAIRateLimiter allows requestsPerMinute sustained AI calls per user,
// with a small burst.
func NewAIRateLimiter(requestsPerMinute int) *AIRateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}
	rl := &AIRateLimiter{
		users: make(map[uint]*userLimiter),
		rate:  rate.Limit(float64(requestsPerMinute) / 60.0),
		burst: 3,
		done:  make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Stop ends the idle-entry cleanup goroutine.
func (rl *AIRateLimiter) Stop() {
	close(rl.done)
}

func (rl *AIRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
			return
		}

		rl.mu.Lock()
		u, exists := rl.users[userID]
		if !exists {
			u = &userLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
			rl.users[userID] = u
		}
		u.lastSeen = time.Now()
		rl.mu.Unlock()

		if !u.limiter.Allow() {
			c.Header("Retry-After", "10")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many AI requests, slow down",
			})
			return
		}

		c.Next()
	}
}

func (rl *AIRateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for id, u := range rl.users {
				if time.Since(u.lastSeen) > 10*time.Minute {
					delete(rl.users, id)
				}
			}
			rl.mu.Unlock()
		}
	}
}
