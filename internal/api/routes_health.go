package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/chattu/internal/app"
	"github.com/charlesng35/chattu/internal/handlers"
	"github.com/charlesng35/chattu/internal/monitoring"
)

func registerHealthRoutes(router gin.IRouter, cfg *app.Config, mon *monitoring.Module) {
	var handler *handlers.HealthHandler
	if cfg.Monitoring.Health.Enabled && mon != nil {
		handler = handlers.NewHealthHandler(mon.Health())
	}

	if handler == nil {
		for _, group := range []gin.IRouter{router, router.Group("/api")} {
			group.GET("/health", handlers.DisabledHealth)
			group.GET("/health/live", handlers.DisabledHealth)
			group.GET("/health/ready", handlers.DisabledHealth)
		}
		return
	}

	registerHealthEndpoints(router, handler)
	registerHealthEndpoints(router.Group("/api"), handler)
}

func registerHealthEndpoints(router gin.IRouter, handler *handlers.HealthHandler) {
	router.GET("/health", handler.Overall)
	router.GET("/health/live", handler.Live)
	router.GET("/health/ready", handler.Ready)
}
