package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func limiterRequest(rl *AIRateLimiter, userID uint) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/chat/conversations/1/messages", nil)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	rl.Middleware()(c)
	return w
}

func TestAIRateLimiterAllowsBurstThenThrottles(t *testing.T) {
	rl := NewAIRateLimiter(10)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		w := limiterRequest(rl, 1)
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass within burst", i+1)
	}

	w := limiterRequest(rl, 1)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))
}

func TestAIRateLimiterIsolatesUsers(t *testing.T) {
	rl := NewAIRateLimiter(10)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		limiterRequest(rl, 1)
	}
	assert.Equal(t, http.StatusTooManyRequests, limiterRequest(rl, 1).Code)
	assert.Equal(t, http.StatusOK, limiterRequest(rl, 2).Code)
}

func TestAIRateLimiterRejectsAnonymous(t *testing.T) {
	rl := NewAIRateLimiter(10)
	defer rl.Stop()

	assert.Equal(t, http.StatusUnauthorized, limiterRequest(rl, 0).Code)
}
