package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/playbook-backend/internal/observability"
)

// Metrics records request count, latency and in-flight gauges by route
// template. Paths under skipPrefixes (scrapes, event streams) are not observed.
func Metrics(m *observability.Metrics, skipPrefixes ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, p := range skipPrefixes {
			if p != "" && strings.HasPrefix(path, p) {
				c.Next()
				return
			}
		}

		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
