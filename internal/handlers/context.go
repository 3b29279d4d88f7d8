package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// handshakeContext bounds credential verification for c. Contexts built in
// tests without a request fall back to the background context.
func handshakeContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	parent := context.Background()
	if c != nil && c.Request != nil {
		parent = c.Request.Context()
	}
	return context.WithTimeout(parent, timeout)
}
