package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/chattu/internal/app"
	iauth "github.com/charlesng35/chattu/internal/auth"
	"github.com/charlesng35/chattu/internal/handlers"
	"github.com/charlesng35/chattu/internal/middleware"
	"github.com/charlesng35/chattu/internal/monitoring"
	"github.com/charlesng35/chattu/internal/realtime"
)

// Dependencies carries the services the HTTP surface is built on.
type Dependencies struct {
	Config        *app.Config
	Hub           *realtime.Hub
	Authenticator handlers.Authenticator
	JWT           *iauth.JWTService
	Monitoring    *monitoring.Module
	// RateStore backs the rate limiter. Nil uses a process-local counter.
	RateStore middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers the
// websocket endpoint together with the REST routes around it.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.Hub == nil {
		return nil, fmt.Errorf("realtime hub must be provided")
	}
	if deps.Authenticator == nil {
		return nil, fmt.Errorf("authenticator must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	cfg := deps.Config

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	registerRealtimeRoutes(r, deps)

	limited := r.Group("")
	limited.Use(middleware.RateLimit(deps.RateStore, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))

	registerHealthRoutes(limited, cfg, deps.Monitoring)

	api := limited.Group("/api")
	api.Use(middleware.Auth(deps.JWT, cfg.Auth.Cookie()))

	registerEventRoutes(api, handlers.NewEventsHandler(deps.Hub))
	registerMonitoringRoutes(r, api, cfg, deps.Monitoring)

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
