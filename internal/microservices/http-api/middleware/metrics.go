package middleware

import (
	"time"

	"elibrary/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records each request under its route template, not the raw path.
func Metrics(recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
