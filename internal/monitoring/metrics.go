package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type Metrics struct {
	mu            sync.RWMutex
	requestCount  int64
	errorCount    int64
	active        int64
	totalDuration time.Duration
	statusCodes   map[string]int64
	startTime     time.Time
}

type HealthCheckFunc func(ctx context.Context) error

type healthRegistry struct {
	mu     sync.RWMutex
	checks map[string]HealthCheckFunc
}

var (
	metrics = &Metrics{
		statusCodes: make(map[string]int64),
		startTime:   time.Now(),
	}
	health = &healthRegistry{checks: make(map[string]HealthCheckFunc)}
)

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.mu.Lock()
		metrics.active++
		metrics.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		metrics.mu.Lock()
		metrics.active--
		metrics.requestCount++
		metrics.totalDuration += duration
		if status >= 400 {
			metrics.errorCount++
		}
		metrics.statusCodes[strconv.Itoa(status)]++
		metrics.mu.Unlock()
	}
}

// RegisterHealthCheck adds a named probe executed on every /health
// request.
func RegisterHealthCheck(name string, fn HealthCheckFunc) {
	health.mu.Lock()
	defer health.mu.Unlock()
	health.checks[name] = fn
}

func runHealthChecks(ctx context.Context) (map[string]string, bool) {
	health.mu.RLock()
	defer health.mu.RUnlock()

	results := make(map[string]string, len(health.checks))
	healthy := true
	for name, fn := range health.checks {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := fn(checkCtx); err != nil {
			results[name] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			results[name] = "healthy"
		}
		cancel()
	}
	return results, healthy
}

func MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		metrics.mu.RLock()
		requestCount := metrics.requestCount
		errorCount := metrics.errorCount
		active := metrics.active
		var avgDuration time.Duration
		if requestCount > 0 {
			avgDuration = metrics.totalDuration / time.Duration(requestCount)
		}
		statusCodes := make(map[string]int64, len(metrics.statusCodes))
		for k, v := range metrics.statusCodes {
			statusCodes[k] = v
		}
		uptime := time.Since(metrics.startTime)
		metrics.mu.RUnlock()

		c.JSON(http.StatusOK, gin.H{
			"application": gin.H{
				"request_count":      requestCount,
				"error_count":        errorCount,
				"active_requests":    active,
				"avg_request_millis": avgDuration.Milliseconds(),
				"status_codes":       statusCodes,
				"uptime":             uptime.String(),
			},
			"system": gin.H{
				"goroutines": runtime.NumGoroutine(),
				"alloc_mb":   m.Alloc / 1024 / 1024,
				"num_gc":     m.NumGC,
				"go_version": runtime.Version(),
			},
			"timestamp": time.Now(),
		})
	}
}

func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		checks, healthy := runHealthChecks(c.Request.Context())

		status := http.StatusOK
		overall := "healthy"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":    overall,
			"checks":    checks,
			"uptime":    time.Since(metrics.startTime).String(),
			"timestamp": time.Now(),
		})
	}
}
