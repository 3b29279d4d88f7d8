package monitoring

import (
	"strconv"
	"strings"
	"time"
)

// RecordHandshake counts websocket handshakes by result (accepted, rejected, timeout).
func RecordHandshake(result string) {
	module := ensureModule()
	if module == nil {
		return
	}
	label := normalizeLabel(result)
	if label == "" {
		label = "unknown"
	}
	module.metrics.handshakes.WithLabelValues(label).Inc()
	module.stats.recordHandshake(label)
}

// ObserveAPILatency captures the HTTP request latency for the supplied route.
func ObserveAPILatency(method, path string, status int, duration time.Duration) {
	module := ensureModule()
	if module == nil {
		return
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "UNKNOWN"
	}
	path = sanitizePath(path)
	if path == "" {
		path = "unknown"
	}
	code := "unknown"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	observeDuration(module.metrics.apiLatency.WithLabelValues(method, path, code), duration)
}

// RecordRealtimeConnection adjusts the websocket connection gauge.
func RecordRealtimeConnection(delta int64) {
	module := ensureModule()
	if module == nil || delta == 0 {
		return
	}
	module.metrics.realtimeConnections.Add(float64(delta))
	module.stats.recordRealtimeConnection(delta)
	if module.stats.realtimeConnections.Load() < 0 {
		module.stats.realtimeConnections.Store(0)
		module.metrics.realtimeConnections.Set(0)
	}
}

// SetOnlineUsers records the current size of the online set.
func SetOnlineUsers(count int) {
	module := ensureModule()
	if module == nil {
		return
	}
	if count < 0 {
		count = 0
	}
	module.metrics.onlineUsers.Set(float64(count))
	module.stats.onlineUsers.Store(int64(count))
}

// RecordRealtimeDelivery counts the outcome of one fan-out.
func RecordRealtimeDelivery(event string, delivered, failed int) {
	module := ensureModule()
	if module == nil {
		return
	}
	event = eventLabel(event)
	if delivered > 0 {
		module.metrics.realtimeDeliveries.WithLabelValues(event, "delivered").Add(float64(delivered))
		module.stats.realtimeDelivered.Add(uint64(delivered))
	}
	if failed > 0 {
		module.metrics.realtimeDeliveries.WithLabelValues(event, "failed").Add(float64(failed))
	}
}

// RecordRealtimeFailure snapshots a per-connection delivery failure.
func RecordRealtimeFailure(event, reason, message string) {
	module := ensureModule()
	if module == nil {
		return
	}
	event = eventLabel(event)
	reason = normalizeLabel(reason)
	if reason == "" {
		reason = "unknown"
	}
	module.metrics.realtimeFailures.WithLabelValues(event, reason).Inc()
	module.stats.recordRealtimeFailure(FailureRecord{
		Event:    event,
		Type:     reason,
		Message:  strings.TrimSpace(message),
		Occurred: time.Now(),
	})
}

// RecordRealtimeDropped counts inbound events discarded before or during dispatch.
func RecordRealtimeDropped(event, reason string) {
	module := ensureModule()
	if module == nil {
		return
	}
	reason = normalizeLabel(reason)
	if reason == "" {
		reason = "unknown"
	}
	module.metrics.realtimeDropped.WithLabelValues(eventLabel(event), reason).Inc()
	module.stats.realtimeDropped.Add(1)
}

// RecordPersistence records one message write against a sink.
func RecordPersistence(sink, result string, duration time.Duration) {
	module := ensureModule()
	if module == nil {
		return
	}
	sink = normalizeLabel(sink)
	if sink == "" {
		sink = "unknown"
	}
	result = normalizeLabel(result)
	if result == "" {
		result = "unknown"
	}
	module.metrics.persistenceWrites.WithLabelValues(sink, result).Inc()
	observeDuration(module.metrics.persistenceLatency.WithLabelValues(sink), duration)
	module.stats.persistenceEntry(sink).record(result, duration)
}

// RecordMaintenanceRun records the completion of a maintenance job.
func RecordMaintenanceRun(job, result, message string, duration time.Duration) {
	module := ensureModule()
	if module == nil {
		return
	}
	jobID := normalizeLabel(job)
	if jobID == "" {
		jobID = "unknown"
	}
	result = normalizeLabel(result)
	if result == "" {
		result = "unknown"
	}
	module.metrics.maintenanceRuns.WithLabelValues(jobID, result).Inc()
	observeDuration(module.metrics.maintenanceDuration.WithLabelValues(jobID), duration)
	if result == "success" {
		module.metrics.maintenanceLastRun.WithLabelValues(jobID).Set(float64(time.Now().Unix()))
	}
	module.stats.maintenanceEntry(jobID).record(result, strings.TrimSpace(message), duration)
}

// eventLabel keeps label cardinality bounded: event names come off the wire.
func eventLabel(event string) string {
	event = normalizeLabel(event)
	if event == "" {
		return "unknown"
	}
	if _, ok := knownEvents[event]; !ok {
		return "other"
	}
	return event
}

var knownEvents = map[string]struct{}{
	"new-message":       {},
	"new-message-alert": {},
	"typing-start":      {},
	"typing-stop":       {},
	"chat-joined":       {},
	"chat-left":         {},
	"online-users":      {},
	"ping":              {},
	"pong":              {},
	"refetch-chats":     {},
	"new-request":       {},
	"alert":             {},
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	value = strings.ReplaceAll(value, " ", "_")
	return value
}

func sanitizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
