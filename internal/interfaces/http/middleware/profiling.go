package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling labels
const (
	ProfilingLabelRoute  = "route"
	ProfilingLabelMethod = "method"
)

// Profiling tags CPU samples taken while a request runs with its route and
// method, so profiles can be split per endpoint. It only has an effect while
// the pyroscope agent is running.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" {
			c.Next()
			return
		}
		labels := pyroscope.Labels(ProfilingLabelRoute, route, ProfilingLabelMethod, c.Request.Method)
		pyroscope.TagWrapper(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
