package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskhub/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupLimitedRouter(t *testing.T, rpm, burst int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	limiter := middleware.NewRateLimiter(rpm, burst, time.Minute)
	t.Cleanup(limiter.Stop)

	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return router
}

func ping(router *gin.Engine, ip string) int {
	req, _ := http.NewRequest("GET", "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	router := setupLimitedRouter(t, 60, 5)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, ping(router, "10.0.0.1"), "request %d", i)
	}
}

func TestRateLimiterBlocksBeyondBurst(t *testing.T) {
	router := setupLimitedRouter(t, 1, 2)

	assert.Equal(t, http.StatusOK, ping(router, "10.0.0.2"))
	assert.Equal(t, http.StatusOK, ping(router, "10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, ping(router, "10.0.0.2"))
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	router := setupLimitedRouter(t, 1, 1)

	assert.Equal(t, http.StatusOK, ping(router, "10.0.0.3"))
	assert.Equal(t, http.StatusTooManyRequests, ping(router, "10.0.0.3"))

	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, ping(router, "10.0.0.4"))
}
