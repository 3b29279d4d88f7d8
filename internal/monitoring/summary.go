package monitoring

import "time"

// Summary is the JSON view of the process statistics.
type Summary struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Handshakes  HandshakeSummary     `json:"handshakes"`
	Realtime    RealtimeSummary      `json:"realtime"`
	Persistence []PersistenceSummary `json:"persistence"`
	Maintenance MaintenanceSummary   `json:"maintenance"`
}

type HandshakeSummary struct {
	Accepted uint64 `json:"accepted"`
	Rejected uint64 `json:"rejected"`
}

type FailureRecord struct {
	Event    string    `json:"event"`
	Type     string    `json:"type"`
	Message  string    `json:"message"`
	Occurred time.Time `json:"occurred_at"`
}

type RealtimeSummary struct {
	ActiveConnections int64          `json:"active_connections"`
	OnlineUsers       int64          `json:"online_users"`
	Delivered         uint64         `json:"delivered"`
	Failures          uint64         `json:"failures"`
	Dropped           uint64         `json:"dropped"`
	LastFailure       *FailureRecord `json:"last_failure,omitempty"`
}

type PersistenceSummary struct {
	Sink                  string    `json:"sink"`
	Success               uint64    `json:"success"`
	Failure               uint64    `json:"failure"`
	LastStatus            string    `json:"last_status"`
	LastCompletedAt       time.Time `json:"last_completed_at"`
	AverageLatencySeconds float64   `json:"average_latency_seconds"`
}

type MaintenanceSummary struct {
	Jobs []MaintenanceJobSummary `json:"jobs"`
}

type MaintenanceJobSummary struct {
	Job                 string        `json:"job"`
	LastStatus          string        `json:"last_status"`
	LastRunAt           time.Time     `json:"last_run_at"`
	LastDuration        time.Duration `json:"last_duration"`
	LastError           string        `json:"last_error,omitempty"`
	ConsecutiveFailures uint64        `json:"consecutive_failures"`
	ConsecutiveSuccess  uint64        `json:"consecutive_success"`
	LastSuccessAt       time.Time     `json:"last_success_at"`
	TotalRuns           uint64        `json:"total_runs"`
}

// Snapshot returns a point-in-time summary from the current module when configured.
func Snapshot() Summary {
	if module := ensureModule(); module != nil {
		return module.Summary()
	}
	return Summary{GeneratedAt: time.Now()}
}
