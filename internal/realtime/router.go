package realtime

import (
	"errors"

	"go.uber.org/zap"

	"github.com/charlesng35/chattu/internal/monitoring"
)

// DeliveryReport summarises one fan-out.
type DeliveryReport struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Router resolves recipients against the registry and sends to each live
// handle independently. Send failures are logged and counted, never returned.
type Router struct {
	state *State
	log   *zap.Logger
}

// NewRouter builds a router over state.
func NewRouter(state *State, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{state: state, log: log}
}

// Deliver sends event to the live handle of every recipient.
func (r *Router) Deliver(recipients []string, event string, payload any) DeliveryReport {
	return r.send(r.state.Resolve(recipients), nil, Envelope{Event: event, Data: payload})
}

// DeliverExcept behaves like Deliver but never sends to origin.
func (r *Router) DeliverExcept(origin Handle, recipients []string, event string, payload any) DeliveryReport {
	return r.send(r.state.Resolve(recipients), origin, Envelope{Event: event, Data: payload})
}

// Broadcast sends event to every registered handle.
func (r *Router) Broadcast(event string, payload any) DeliveryReport {
	return r.send(r.state.Handles(), nil, Envelope{Event: event, Data: payload})
}

// BroadcastExcept sends event to every registered handle other than origin.
func (r *Router) BroadcastExcept(origin Handle, event string, payload any) DeliveryReport {
	return r.send(r.state.Handles(), origin, Envelope{Event: event, Data: payload})
}

// Reply sends directly to one handle, bypassing the registry.
func (r *Router) Reply(handle Handle, event string, payload any) DeliveryReport {
	if handle == nil {
		return DeliveryReport{}
	}
	return r.send([]Handle{handle}, nil, Envelope{Event: event, Data: payload})
}

func (r *Router) send(handles []Handle, origin Handle, envelope Envelope) DeliveryReport {
	var report DeliveryReport
	for _, handle := range handles {
		if origin != nil && handle == origin {
			continue
		}
		report.Attempted++
		if err := handle.Send(envelope); err != nil {
			report.Failed++
			r.logFailure(handle, envelope.Event, err)
			continue
		}
		report.Delivered++
	}
	if report.Attempted > 0 {
		monitoring.RecordRealtimeDelivery(envelope.Event, report.Delivered, report.Failed)
	}
	return report
}

func (r *Router) logFailure(handle Handle, event string, err error) {
	reason := "closed"
	fields := []zap.Field{
		zap.String("event", event),
		zap.String("user_id", handle.UserID()),
		zap.String("handle_id", handle.ID()),
		zap.Error(err),
	}
	if errors.Is(err, ErrBackpressure) {
		reason = "backpressure"
		r.log.Warn("dropping backpressured connection", fields...)
	} else {
		r.log.Debug("delivery to stale connection failed", fields...)
	}
	monitoring.RecordRealtimeFailure(event, reason, err.Error())
}
