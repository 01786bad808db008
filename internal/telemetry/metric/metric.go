// Package metric provides Prometheus metrics for SyncBoard.
//
// It exposes board activity (connected clients, clipboard updates,
// stored files) and HTTP request metrics in Prometheus format.
package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Presence metrics
	ClientsConnected prometheus.Gauge

	// Clipboard metrics
	TextUpdates   prometheus.Counter
	TextConflicts prometheus.Counter

	// File store metrics
	FilesStored  prometheus.Gauge
	BytesStored  prometheus.Gauge
	FilesAdded   prometheus.Counter
	FilesExpired prometheus.Counter

	// Fan-out metrics
	EventsBroadcast prometheus.Counter
	SendFailures    prometheus.Counter

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a metrics registry with all collectors registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		ClientsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "syncboard_clients_connected",
			Help: "Number of currently connected clients.",
		}),
		TextUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "syncboard_text_updates_total",
			Help: "Accepted clipboard text updates.",
		}),
		TextConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "syncboard_text_conflicts_total",
			Help: "Clipboard updates rejected for stale version.",
		}),
		FilesStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "syncboard_files_stored",
			Help: "Files currently held in memory.",
		}),
		BytesStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "syncboard_file_bytes_stored",
			Help: "Aggregate size of files held in memory.",
		}),
		FilesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "syncboard_files_added_total",
			Help: "Accepted file uploads.",
		}),
		FilesExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "syncboard_files_expired_total",
			Help: "Files evicted by the expiry sweep.",
		}),
		EventsBroadcast: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "syncboard_events_broadcast_total",
			Help: "Events fanned out to connected clients.",
		}),
		SendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "syncboard_send_failures_total",
			Help: "Per-client sends treated as disconnect signals.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "syncboard_http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "syncboard_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		r.ClientsConnected,
		r.TextUpdates,
		r.TextConflicts,
		r.FilesStored,
		r.BytesStored,
		r.FilesAdded,
		r.FilesExpired,
		r.EventsBroadcast,
		r.SendFailures,
		r.RequestsTotal,
		r.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide metrics registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}
