// Package metrics exposes Prometheus instrumentation for the relay and
// recording paths.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Relay counters.
	samplesPulled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lslview",
		Subsystem: "relay",
		Name:      "samples_pulled_total",
		Help:      "Samples pulled from upstream inlets per stream",
	}, []string{"uid"})

	samplesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lslview",
		Subsystem: "relay",
		Name:      "samples_dropped_total",
		Help:      "Samples evicted from full subscriber queues per stream",
	}, []string{"uid"})

	// Relay gauges.
	activeInlets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lslview",
		Subsystem: "relay",
		Name:      "active_inlets",
		Help:      "Number of currently open upstream inlets",
	})

	subscribers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "lslview",
		Subsystem: "relay",
		Name:      "subscribers",
		Help:      "Current subscriber count per stream",
	}, []string{"uid"})

	// Recording counters.
	recordedSamples = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lslview",
		Subsystem: "recording",
		Name:      "samples_total",
		Help:      "Samples written to disk per recording session",
	}, []string{"id"})

	recordedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lslview",
		Subsystem: "recording",
		Name:      "bytes_total",
		Help:      "Bytes flushed to disk per recording session",
	}, []string{"id"})

	activeRecordings = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lslview",
		Subsystem: "recording",
		Name:      "active_sessions",
		Help:      "Number of currently active recording sessions",
	})
)

// AddSamplesPulled records samples pulled from an inlet.
func AddSamplesPulled(uid string, n int) {
	samplesPulled.WithLabelValues(uid).Add(float64(n))
}

// IncSamplesDropped records one drop-oldest eviction on a subscriber queue.
func IncSamplesDropped(uid string) {
	samplesDropped.WithLabelValues(uid).Inc()
}

// SetActiveInlets updates the open-inlet gauge.
func SetActiveInlets(n int) {
	activeInlets.Set(float64(n))
}

// SetSubscribers updates the subscriber gauge for a stream.
func SetSubscribers(uid string, n int) {
	subscribers.WithLabelValues(uid).Set(float64(n))
}

// ClearStream drops per-stream series once a stream has no inlet.
func ClearStream(uid string) {
	subscribers.DeleteLabelValues(uid)
}

// AddRecordedSamples records samples accepted by a recording writer.
func AddRecordedSamples(id string, n int) {
	recordedSamples.WithLabelValues(id).Add(float64(n))
}

// AddRecordedBytes records bytes flushed to a recording data file.
func AddRecordedBytes(id string, n int) {
	recordedBytes.WithLabelValues(id).Add(float64(n))
}

// SetActiveRecordings updates the active-session gauge.
func SetActiveRecordings(n int) {
	activeRecordings.Set(float64(n))
}

// Handler returns the HTTP handler serving the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
