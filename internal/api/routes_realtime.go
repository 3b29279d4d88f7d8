package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/chattu/internal/handlers"
)

// registerRealtimeRoutes mounts the websocket upgrade outside the rate limiter.
func registerRealtimeRoutes(r *gin.Engine, deps Dependencies) {
	handler := handlers.NewRealtimeHandler(
		deps.Hub,
		deps.Authenticator,
		deps.Config.Auth.Cookie(),
		deps.Config.Realtime.Handshake(),
	)
	r.GET("/ws", handler.Stream)
	r.GET("/socket", handler.Stream)
}

func registerEventRoutes(api *gin.RouterGroup, handler *handlers.EventsHandler) {
	group := api.Group("/realtime")
	group.GET("/online", handler.Online)
	group.POST("/emit", handler.Emit)
}
