package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/charlesng35/chattu/internal/monitoring"
)

const recentFailureWindow = time.Minute

// RealtimeObserver exposes the minimal state required to evaluate realtime health.
type RealtimeObserver interface {
	ActiveConnections() int64
	OnlineUsers() []string
}

// Realtime reports the hub's session count. It degrades while connections
// are being dropped for backpressure.
func Realtime(observer RealtimeObserver) monitoring.Check {
	return monitoring.NewCheck("realtime", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if observer == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  "realtime hub unavailable",
				Duration: time.Since(start),
			}
		}

		active := observer.ActiveConnections()
		online := len(observer.OnlineUsers())
		status := monitoring.StatusUp
		details := fmt.Sprintf("%d connections, %d online", active, online)

		if active < 0 {
			status = monitoring.StatusDegraded
			details = "negative connection count"
		}
		if last := monitoring.Snapshot().Realtime.LastFailure; last != nil &&
			last.Type == "backpressure" && time.Since(last.Occurred) < recentFailureWindow {
			status = monitoring.StatusDegraded
			details += "; dropping slow connections"
		}

		return monitoring.ProbeResult{
			Status:   status,
			Details:  details,
			Duration: time.Since(start),
		}
	})
}
