package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/chattu/internal/app"
	"github.com/charlesng35/chattu/internal/handlers"
	"github.com/charlesng35/chattu/internal/monitoring"
)

func registerMonitoringRoutes(r *gin.Engine, api *gin.RouterGroup, cfg *app.Config, mon *monitoring.Module) {
	if mon == nil {
		return
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		if !strings.HasPrefix(endpoint, "/") {
			endpoint = "/" + endpoint
		}
		r.GET(endpoint, gin.WrapH(mon.Handler()))
	}

	handler := handlers.NewMonitoringHandler(mon, cfg)
	if handler == nil {
		return
	}
	api.GET("/monitoring/summary", handler.Summary)
}
