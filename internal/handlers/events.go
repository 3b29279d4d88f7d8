package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/chattu/internal/realtime"
	appErrors "github.com/charlesng35/chattu/pkg/errors"
	"github.com/charlesng35/chattu/pkg/response"
)

// EventsHandler lets the REST layer read presence and push server events.
type EventsHandler struct {
	hub *realtime.Hub
}

func NewEventsHandler(hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

type emitRequest struct {
	Event string   `json:"event" validate:"required"`
	Users []string `json:"users" validate:"required,min=1,dive,notblank"`
	Data  any      `json:"data"`
}

// Online returns the online snapshot next to the users holding a connection.
func (h *EventsHandler) Online(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"users":       h.hub.OnlineUsers(),
		"connected":   h.hub.State().ConnectedUsers(),
		"connections": h.hub.ActiveConnections(),
	})
}

// Emit delivers a whitelisted server event to the listed users.
func (h *EventsHandler) Emit(c *gin.Context) {
	var req emitRequest
	if !bindAndValidate(c, &req) {
		return
	}

	report, err := h.hub.Emit(req.Event, req.Users, req.Data)
	if err != nil {
		response.Error(c, appErrors.ErrForbidden.WithMessage("event "+req.Event+" cannot be emitted").WithInternal(err))
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{
		"event":     req.Event,
		"attempted": report.Attempted,
		"delivered": report.Delivered,
		"failed":    report.Failed,
	})
}
