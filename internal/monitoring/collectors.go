package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type collectors struct {
	handshakes          *prometheus.CounterVec
	apiLatency          *prometheus.HistogramVec
	realtimeConnections prometheus.Gauge
	onlineUsers         prometheus.Gauge
	realtimeDeliveries  *prometheus.CounterVec
	realtimeFailures    *prometheus.CounterVec
	realtimeDropped     *prometheus.CounterVec
	persistenceWrites   *prometheus.CounterVec
	persistenceLatency  *prometheus.HistogramVec
	maintenanceRuns     *prometheus.CounterVec
	maintenanceDuration *prometheus.HistogramVec
	maintenanceLastRun  *prometheus.GaugeVec
}

func newCollectors(namespace string) *collectors {
	buckets := prometheus.DefBuckets
	writeBuckets := []float64{
		0.001, 0.005, 0.01, 0.025, 0.05,
		0.1, 0.25, 0.5, 1, 2.5, 5,
	}

	return &collectors{
		handshakes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "realtime_handshakes_total",
				Help:      "Websocket handshakes by result",
			},
			[]string{"result"},
		),
		apiLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_latency_seconds",
				Help:      "API endpoint latency",
				Buckets:   buckets,
			},
			[]string{"method", "path", "status"},
		),
		realtimeConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "realtime_connections",
				Help:      "Active websocket sessions",
			},
		),
		onlineUsers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "realtime_online_users",
				Help:      "Users currently present in a chat",
			},
		),
		realtimeDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "realtime_deliveries_total",
				Help:      "Outbound events handed to connections, by event and result",
			},
			[]string{"event", "result"},
		),
		realtimeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "realtime_failures_total",
				Help:      "Per-connection delivery failures by event and reason",
			},
			[]string{"event", "reason"},
		),
		realtimeDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "realtime_dropped_events_total",
				Help:      "Inbound events dropped before dispatch",
			},
			[]string{"event", "reason"},
		),
		persistenceWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "message_persistence_total",
				Help:      "Message writes per sink by result",
			},
			[]string{"sink", "result"},
		),
		persistenceLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "message_persistence_seconds",
				Help:      "Message write latency per sink",
				Buckets:   writeBuckets,
			},
			[]string{"sink"},
		),
		maintenanceRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "maintenance_job_runs_total",
				Help:      "Maintenance job executions by result",
			},
			[]string{"job", "result"},
		),
		maintenanceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "maintenance_job_duration_seconds",
				Help:      "Maintenance job execution time",
				Buckets:   buckets,
			},
			[]string{"job"},
		),
		maintenanceLastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "maintenance_job_last_success_timestamp",
				Help:      "Unix timestamp of the last successful maintenance run",
			},
			[]string{"job"},
		),
	}
}

func (c *collectors) all() []prometheus.Collector {
	return []prometheus.Collector{
		c.handshakes,
		c.apiLatency,
		c.realtimeConnections,
		c.onlineUsers,
		c.realtimeDeliveries,
		c.realtimeFailures,
		c.realtimeDropped,
		c.persistenceWrites,
		c.persistenceLatency,
		c.maintenanceRuns,
		c.maintenanceDuration,
		c.maintenanceLastRun,
	}
}

// observeDuration records a duration in seconds on the supplied histogram observer.
func observeDuration(observer prometheus.Observer, d time.Duration) {
	if observer == nil {
		return
	}
	if d < 0 {
		d = 0
	}
	observer.Observe(d.Seconds())
}
