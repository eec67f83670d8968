// Package metrics exposes detection counters for Prometheus.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP backend's counters.
type Metrics struct {
	// Frame counters
	FramesReceived atomic.Uint64
	FramesDetected atomic.Uint64
	FramesDropped  atomic.Uint64
	ObjectsFound   atomic.Uint64

	// Error counters
	DecodeErrors atomic.Uint64
	DetectErrors atomic.Uint64

	// WebSocket clients
	ActiveStreams atomic.Int64
	TotalStreams  atomic.Uint64

	// Last detection latency
	LastLatencyMs atomic.Uint64

	detectLatency prometheus.Histogram
	registry      *prometheus.Registry
}

// New creates a Metrics instance with its own Prometheus registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		detectLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shapes_detect_duration_seconds",
			Help:    "Time spent detecting and classifying objects in one frame",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
	}
	m.register()
	return m
}

func (m *Metrics) register() {
	counter := func(name, help string, v *atomic.Uint64) {
		m.registry.MustRegister(prometheus.NewCounterFunc(
			prometheus.CounterOpts{Name: name, Help: help},
			func() float64 { return float64(v.Load()) },
		))
	}

	counter("shapes_frames_received_total", "Total frames received", &m.FramesReceived)
	counter("shapes_frames_detected_total", "Total frames run through detection", &m.FramesDetected)
	counter("shapes_frames_dropped_total", "Total stream frames dropped because the queue was full", &m.FramesDropped)
	counter("shapes_objects_detected_total", "Total objects reported", &m.ObjectsFound)
	counter("shapes_decode_errors_total", "Total frames that could not be decoded", &m.DecodeErrors)
	counter("shapes_detect_errors_total", "Total detection failures", &m.DetectErrors)
	counter("shapes_streams_total", "Total WebSocket streams opened", &m.TotalStreams)

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "shapes_active_streams",
			Help: "Number of open WebSocket streams",
		},
		func() float64 { return float64(m.ActiveStreams.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "shapes_last_detect_latency_ms",
			Help: "Latency of the most recent detection in milliseconds",
		},
		func() float64 { return float64(m.LastLatencyMs.Load()) },
	))

	m.registry.MustRegister(m.detectLatency)
}

// ObserveDetection records one completed detection.
func (m *Metrics) ObserveDetection(d time.Duration, objects int) {
	m.FramesDetected.Add(1)
	m.ObjectsFound.Add(uint64(objects))
	m.LastLatencyMs.Store(uint64(d.Milliseconds()))
	m.detectLatency.Observe(d.Seconds())
}

// StreamOpened and StreamClosed track WebSocket clients.
func (m *Metrics) StreamOpened() {
	m.ActiveStreams.Add(1)
	m.TotalStreams.Add(1)
}

func (m *Metrics) StreamClosed() {
	m.ActiveStreams.Add(-1)
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
