package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	connections prometheus.Gauge
	broadcasts  *prometheus.CounterVec
	receivers   *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		connections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "hostpulse_ws_connections",
				Help: "Current number of live websocket connections",
			},
		),
		broadcasts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostpulse_broadcasts_total",
				Help: "Total number of broadcast fan-outs per topic",
			},
			[]string{"topic"},
		),
		receivers: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostpulse_broadcast_receivers_total",
				Help: "Total number of envelopes delivered per topic",
			},
			[]string{"topic"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostpulse_cache_hits_total",
				Help: "Snapshot cache hits per cache name",
			},
			[]string{"cache"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostpulse_cache_misses_total",
				Help: "Snapshot cache misses per cache name",
			},
			[]string{"cache"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hostpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordConnections sets the live connection gauge.
func (r *Recorder) RecordConnections(n int) {
	r.connections.Set(float64(n))
}

// RecordBroadcast records one fan-out and how many clients received it.
func (r *Recorder) RecordBroadcast(topic string, receivers int) {
	r.broadcasts.WithLabelValues(topic).Inc()
	r.receivers.WithLabelValues(topic).Add(float64(receivers))
}

// RecordCache records a hit or miss for a named cache.
func (r *Recorder) RecordCache(name string, hit bool) {
	if hit {
		r.cacheHits.WithLabelValues(name).Inc()
		return
	}
	r.cacheMisses.WithLabelValues(name).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
