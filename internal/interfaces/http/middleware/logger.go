package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"midatopay.backend/internal/infrastructure/metrics"
	"midatopay.backend/pkg/logger"
)

// LoggerMiddleware logs every request and records its latency
func LoggerMiddleware(recorder metrics.Recorder) gin.HandlerFunc {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), latency, c.ClientIP())

		// route templates keep label cardinality bounded
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.IncCounter(metrics.HTTPRequests, map[string]string{
			"component": route,
			"status":    strconv.Itoa(c.Writer.Status()),
		})
		recorder.ObserveLatency(metrics.HTTPLatency, latency, map[string]string{"component": route})
	}
}
