package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCheckDeniesSixthCallInWindow(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		decision := rl.Check("login:1.2.3.4")
		assert.True(t, decision.Allowed, "call %d should be allowed", i+1)
		assert.Equal(t, 4-i, decision.Remaining)
	}

	decision := rl.Check("login:1.2.3.4")
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.True(t, decision.ResetAt.After(time.Now()))
}

func TestCheckKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.Check("login:1.2.3.4").Allowed)
	assert.False(t, rl.Check("login:1.2.3.4").Allowed)
	assert.True(t, rl.Check("login:5.6.7.8").Allowed)
	assert.True(t, rl.Check("cancel:1.2.3.4").Allowed)
}

func TestCheckResetsAfterWindow(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)

	assert.True(t, rl.Check("login:1.2.3.4").Allowed)
	assert.False(t, rl.Check("login:1.2.3.4").Allowed)

	time.Sleep(30 * time.Millisecond)

	decision := rl.Check("login:1.2.3.4")
	assert.True(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
}

func TestThrottleDenialUsesErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, time.Minute)
	r := gin.New()
	r.GET("/", rl.Throttle("login", nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"status":"error","message":"too many requests"}`, w.Body.String())
}
