package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes queue and ledger gauges for the monitoring console.
type Metrics struct {
	registry *prometheus.Registry

	QueueDepth     prometheus.Gauge
	AbandonedTasks prometheus.Gauge
	AvgLatencyMS   prometheus.Gauge
	HealthStatus   prometheus.Gauge // 0=HEALTHY, 1=WARNING, 2=CRITICAL

	EntriesPosted prometheus.Counter
	SyncSuccesses prometheus.Counter
	SyncFailures  prometheus.Counter
}

// New creates and registers the application metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_sync_queue_depth",
			Help: "Number of due, unprocessed sync tasks.",
		}),
		AbandonedTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_sync_abandoned_tasks",
			Help: "Number of tasks abandoned after exhausting retries.",
		}),
		AvgLatencyMS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_sync_avg_latency_ms",
			Help: "Average task processing latency in milliseconds.",
		}),
		HealthStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_sync_health_status",
			Help: "Queue health classification: 0 healthy, 1 warning, 2 critical.",
		}),
		EntriesPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_entries_posted_total",
			Help: "Journal entries posted successfully.",
		}),
		SyncSuccesses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_sync_tasks_succeeded_total",
			Help: "Sync tasks processed successfully.",
		}),
		SyncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_sync_tasks_failed_total",
			Help: "Sync task attempts that failed.",
		}),
	}

	m.registry.MustRegister(
		m.QueueDepth,
		m.AbandonedTasks,
		m.AvgLatencyMS,
		m.HealthStatus,
		m.EntriesPosted,
		m.SyncSuccesses,
		m.SyncFailures,
	)
	return m
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
