// Package metrics exports run outcomes as Prometheus metrics. A wfsync run
// is a batch job, so metrics are written to a node-exporter textfile rather
// than served.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/viant/wfsync/transfer"
)

// Metrics holds the collectors of one run.
type Metrics struct {
	registry *prometheus.Registry

	layers      *prometheus.CounterVec
	features    *prometheus.CounterVec
	bytes       *prometheus.CounterVec
	duration    *prometheus.GaugeVec
	watermark   *prometheus.GaugeVec
	lastSuccess prometheus.Gauge
	runSeconds  prometheus.Gauge
}

// New registers the collectors with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		layers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wfsync",
			Subsystem: "transfer",
			Name:      "layers_total",
			Help:      "Number of layers processed, by mode and status.",
		}, []string{
			"mode",
			"status",
		}),
		features: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wfsync",
			Subsystem: "transfer",
			Name:      "features_total",
			Help:      "Number of features applied to the destination.",
		}, []string{
			"layer",
		}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wfsync",
			Subsystem: "transfer",
			Name:      "bytes_total",
			Help:      "Number of payload bytes read from the source.",
		}, []string{
			"layer",
		}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "wfsync",
			Subsystem: "transfer",
			Name:      "layer_duration_seconds",
			Help:      "Wall time spent transferring a layer.",
		}, []string{
			"layer",
		}),
		watermark: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "wfsync",
			Subsystem: "transfer",
			Name:      "watermark_timestamp_seconds",
			Help:      "Watermark recorded for a layer by this run.",
		}, []string{
			"layer",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wfsync",
			Name:      "last_success_timestamp_seconds",
			Help:      "Time the last run without failed layers finished.",
		}),
		runSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wfsync",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
	}
	m.registry.MustRegister(m.layers, m.features, m.bytes, m.duration, m.watermark, m.lastSuccess, m.runSeconds)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Observe records report.
func (m *Metrics) Observe(report *transfer.Report) {
	if report == nil {
		return
	}
	for _, r := range report.Results {
		m.layers.WithLabelValues(string(r.Mode), string(r.Status)).Inc()
		if r.Status != transfer.StatusOK {
			continue
		}
		id := string(r.Layer.Normalize())
		m.features.WithLabelValues(id).Add(float64(r.Features))
		m.bytes.WithLabelValues(id).Add(float64(r.Bytes))
		m.duration.WithLabelValues(id).Set(r.Duration().Seconds())
		m.watermark.WithLabelValues(id).Set(float64(r.Watermark.Unix()))
	}
	m.runSeconds.Set(report.Finished.Sub(report.Started).Seconds())
	if len(report.Failed()) == 0 {
		m.lastSuccess.Set(float64(report.Finished.Unix()))
	}
}

// WriteFile writes the registry to path in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
