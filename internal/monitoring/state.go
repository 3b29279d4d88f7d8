package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type statStore struct {
	handshakeAccepted atomic.Uint64
	handshakeRejected atomic.Uint64

	realtimeConnections atomic.Int64
	onlineUsers         atomic.Int64
	realtimeDelivered   atomic.Uint64
	realtimeFailures    atomic.Uint64
	realtimeDropped     atomic.Uint64
	realtimeLastFailure atomic.Pointer[FailureRecord]

	maintenance sync.Map // string -> *maintenanceStats
	persistence sync.Map // string -> *persistenceStats
}

func newStatStore() *statStore {
	return &statStore{}
}

func (s *statStore) summary() Summary {
	return Summary{
		GeneratedAt: time.Now(),
		Handshakes: HandshakeSummary{
			Accepted: s.handshakeAccepted.Load(),
			Rejected: s.handshakeRejected.Load(),
		},
		Realtime: RealtimeSummary{
			ActiveConnections: s.realtimeConnections.Load(),
			OnlineUsers:       s.onlineUsers.Load(),
			Delivered:         s.realtimeDelivered.Load(),
			Failures:          s.realtimeFailures.Load(),
			Dropped:           s.realtimeDropped.Load(),
			LastFailure:       s.realtimeLastFailure.Load(),
		},
		Persistence: s.clonePersistence(),
		Maintenance: MaintenanceSummary{
			Jobs: s.cloneMaintenance(),
		},
	}
}

func (s *statStore) recordHandshake(result string) {
	if result == "accepted" {
		s.handshakeAccepted.Add(1)
		return
	}
	s.handshakeRejected.Add(1)
}

func (s *statStore) recordRealtimeConnection(delta int64) {
	s.realtimeConnections.Add(delta)
}

func (s *statStore) recordRealtimeFailure(record FailureRecord) {
	s.realtimeFailures.Add(1)
	s.realtimeLastFailure.Store(&record)
}

func (s *statStore) maintenanceEntry(job string) *maintenanceStats {
	value, _ := s.maintenance.LoadOrStore(job, &maintenanceStats{})
	return value.(*maintenanceStats)
}

func (s *statStore) persistenceEntry(sink string) *persistenceStats {
	value, _ := s.persistence.LoadOrStore(sink, &persistenceStats{})
	return value.(*persistenceStats)
}

func (s *statStore) cloneMaintenance() []MaintenanceJobSummary {
	summaries := []MaintenanceJobSummary{}
	s.maintenance.Range(func(key, value any) bool {
		summaries = append(summaries, value.(*maintenanceStats).snapshot(key.(string)))
		return true
	})
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Job < summaries[j].Job })
	return summaries
}

func (s *statStore) clonePersistence() []PersistenceSummary {
	summaries := []PersistenceSummary{}
	s.persistence.Range(func(key, value any) bool {
		summaries = append(summaries, value.(*persistenceStats).snapshot(key.(string)))
		return true
	})
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Sink < summaries[j].Sink })
	return summaries
}

type maintenanceStats struct {
	lastStatus           atomic.Value // string
	lastError            atomic.Value // string
	lastRun              atomic.Int64 // unix nano
	lastDuration         atomic.Int64 // nanoseconds
	consecutiveFailures  atomic.Uint64
	totalRuns            atomic.Uint64
	lastSuccessfulRun    atomic.Int64
	consecutiveSuccesses atomic.Uint64
}

func (m *maintenanceStats) snapshot(job string) MaintenanceJobSummary {
	status, _ := m.lastStatus.Load().(string)
	errMsg, _ := m.lastError.Load().(string)

	return MaintenanceJobSummary{
		Job:                 job,
		LastStatus:          status,
		LastRunAt:           unixOrZero(m.lastRun.Load()),
		LastDuration:        time.Duration(m.lastDuration.Load()),
		LastError:           errMsg,
		ConsecutiveFailures: m.consecutiveFailures.Load(),
		ConsecutiveSuccess:  m.consecutiveSuccesses.Load(),
		LastSuccessAt:       unixOrZero(m.lastSuccessfulRun.Load()),
		TotalRuns:           m.totalRuns.Load(),
	}
}

func (m *maintenanceStats) record(result, message string, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	now := time.Now()
	m.lastStatus.Store(result)
	m.lastError.Store(message)
	m.lastRun.Store(now.UnixNano())
	m.lastDuration.Store(int64(duration))
	m.totalRuns.Add(1)

	switch result {
	case "success":
		m.consecutiveFailures.Store(0)
		m.consecutiveSuccesses.Add(1)
		m.lastSuccessfulRun.Store(now.UnixNano())
	default:
		m.consecutiveFailures.Add(1)
		m.consecutiveSuccesses.Store(0)
	}
}

type persistenceStats struct {
	success        atomic.Uint64
	failure        atomic.Uint64
	lastStatus     atomic.Value // string
	lastCompleted  atomic.Int64
	totalLatencyNs atomic.Uint64
}

func (p *persistenceStats) snapshot(sink string) PersistenceSummary {
	status, _ := p.lastStatus.Load().(string)
	success := p.success.Load()
	failure := p.failure.Load()

	var avg float64
	if total := success + failure; total > 0 {
		avg = float64(p.totalLatencyNs.Load()) / float64(total) / float64(time.Second)
	}

	return PersistenceSummary{
		Sink:                  sink,
		Success:               success,
		Failure:               failure,
		LastStatus:            status,
		LastCompletedAt:       unixOrZero(p.lastCompleted.Load()),
		AverageLatencySeconds: avg,
	}
}

func (p *persistenceStats) record(result string, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	if result == "success" {
		p.success.Add(1)
	} else {
		p.failure.Add(1)
	}
	p.lastStatus.Store(result)
	p.lastCompleted.Store(time.Now().UnixNano())
	p.totalLatencyNs.Add(uint64(duration))
}

func unixOrZero(nanos int64) time.Time {
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}
