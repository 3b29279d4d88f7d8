package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/chattu/internal/monitoring"
)

// Metrics records request latency. Websocket upgrades are skipped: their
// handler runs for the lifetime of the session, so the duration would
// measure how long a user stayed connected rather than request latency.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isUpgrade(c) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		monitoring.ObserveAPILatency(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

func isUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}
