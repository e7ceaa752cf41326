// Package prometheus implements pkg/metrics interfaces with Prometheus
// collectors. Import it for side effects to enable the implementations.
package prometheus

import (
	"time"

	"github.com/adept-ml/preprocessing/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterPreprocessMetricsConstructor(NewPreprocessMetrics)
}

type preprocessMetrics struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	buildings      *prometheus.CounterVec
	sensorsRemoved *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

// NewPreprocessMetrics creates a Prometheus-backed PreprocessMetrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewPreprocessMetrics() metrics.PreprocessMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &preprocessMetrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "preprocessing_requests_total",
				Help: "Total number of preprocessing operations by outcome",
			},
			[]string{"operation", "status"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "preprocessing_operation_duration_milliseconds",
				Help: "Duration of preprocessing operations in milliseconds",
				Buckets: []float64{
					1, // tiny payloads
					5,
					10,
					50,
					100,
					500,
					1000,
					5000,
					30000, // large multi-building payloads
				},
			},
			[]string{"operation"},
		),
		buildings: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "preprocessing_buildings_processed_total",
				Help: "Total number of buildings handed to preprocessing operations",
			},
			[]string{"operation"},
		),
		sensorsRemoved: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "preprocessing_sensors_removed_total",
				Help: "Total number of sensor columns removed by cleaning step",
			},
			[]string{"step"},
		),
		cacheLookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "preprocessing_cache_lookups_total",
				Help: "Total number of result cache lookups by result",
			},
			[]string{"result"}, // "hit", "miss"
		),
	}
}

func (m *preprocessMetrics) RecordRequest(operation, status string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, status).Inc()
}

func (m *preprocessMetrics) ObserveDuration(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(float64(d.Microseconds()) / 1000)
}

func (m *preprocessMetrics) AddBuildings(operation string, n int) {
	if m == nil {
		return
	}
	m.buildings.WithLabelValues(operation).Add(float64(n))
}

func (m *preprocessMetrics) AddSensorsRemoved(step string, n int) {
	if m == nil {
		return
	}
	m.sensorsRemoved.WithLabelValues(step).Add(float64(n))
}

func (m *preprocessMetrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
