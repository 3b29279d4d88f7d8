package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/chattu/internal/middleware"
	"github.com/charlesng35/chattu/internal/monitoring"
	"github.com/charlesng35/chattu/internal/realtime"
	appErrors "github.com/charlesng35/chattu/pkg/errors"
	"github.com/charlesng35/chattu/pkg/logger"
	"github.com/charlesng35/chattu/pkg/response"
)

const defaultHandshakeTimeout = 10 * time.Second

// Authenticator resolves a handshake credential into a verified identity.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (realtime.Identity, error)
}

// RealtimeHandler authenticates websocket handshakes and hands accepted
// connections to the hub.
type RealtimeHandler struct {
	hub        *realtime.Hub
	authn      Authenticator
	cookieName string
	timeout    time.Duration
	log        *zap.Logger
}

// NewRealtimeHandler constructs a realtime handler. cookieName names the
// cookie carrying the token; timeout bounds authentication.
func NewRealtimeHandler(hub *realtime.Hub, authn Authenticator, cookieName string, timeout time.Duration) *RealtimeHandler {
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}
	return &RealtimeHandler{
		hub:        hub,
		authn:      authn,
		cookieName: cookieName,
		timeout:    timeout,
		log:        logger.WithModule("realtime"),
	}
}

// Stream validates the caller and upgrades the request. A rejected handshake
// never reaches the hub, so no event handler sees an unauthenticated socket.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	if h.hub == nil || h.authn == nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	ctx, cancel := handshakeContext(c, h.timeout)
	identity, err := h.authn.Authenticate(ctx, h.credential(c))
	cancel()

	if err != nil {
		switch {
		case errors.Is(err, realtime.ErrAuthFailure):
			monitoring.RecordHandshake("rejected")
			h.log.Debug("handshake rejected", zap.String("client_ip", c.ClientIP()), zap.Error(err))
			response.Error(c, appErrors.ErrUnauthorized)
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			monitoring.RecordHandshake("timeout")
			h.log.Warn("handshake timed out", zap.String("client_ip", c.ClientIP()), zap.Duration("timeout", h.timeout))
			response.Error(c, appErrors.ErrUnauthorized)
		default:
			monitoring.RecordHandshake("error")
			h.log.Error("handshake authentication unavailable", zap.Error(err))
			response.Error(c, appErrors.ErrServiceUnavailable)
		}
		return
	}

	monitoring.RecordHandshake("accepted")
	c.Set(middleware.CtxUserIDKey, identity.ID)
	h.hub.Serve(identity, c.Writer, c.Request)
}

// credential reads the token from the cookie, the token or access_token
// query parameters, then the Authorization header.
func (h *RealtimeHandler) credential(c *gin.Context) string {
	if h.cookieName != "" {
		if cookie, err := c.Cookie(h.cookieName); err == nil {
			if token := strings.TrimSpace(cookie); token != "" {
				return token
			}
		}
	}
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return token
	}
	if token := strings.TrimSpace(c.Query("access_token")); token != "" {
		return token
	}
	return middleware.BearerToken(c)
}
