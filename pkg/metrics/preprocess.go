package metrics

import "time"

// PreprocessMetrics records preprocessing activity.
//
// Pass nil to disable collection:
//
//	p := preprocess.New(cfg, resultCache, metrics.NewPreprocessMetrics())
type PreprocessMetrics interface {
	// RecordRequest counts a finished operation by outcome ("ok", "client_error", "error").
	RecordRequest(operation, status string)

	// ObserveDuration records how long an operation took.
	ObserveDuration(operation string, d time.Duration)

	// AddBuildings counts buildings handed to an operation.
	AddBuildings(operation string, n int)

	// AddSensorsRemoved counts columns removed by a cleaning step.
	AddSensorsRemoved(step string, n int)

	// RecordCacheLookup counts result cache lookups ("hit" or "miss").
	RecordCacheLookup(result string)
}

var newPrometheusPreprocessMetrics func() PreprocessMetrics

// RegisterPreprocessMetricsConstructor is called by pkg/metrics/prometheus
// during initialization.
func RegisterPreprocessMetricsConstructor(constructor func() PreprocessMetrics) {
	newPrometheusPreprocessMetrics = constructor
}

// NewPreprocessMetrics returns the Prometheus implementation, or nil when
// metrics are disabled or no implementation is linked in.
func NewPreprocessMetrics() PreprocessMetrics {
	if !IsEnabled() || newPrometheusPreprocessMetrics == nil {
		return nil
	}
	return newPrometheusPreprocessMetrics()
}

// RecordRequest is a nil-safe PreprocessMetrics.RecordRequest.
func RecordRequest(m PreprocessMetrics, operation, status string) {
	if m != nil {
		m.RecordRequest(operation, status)
	}
}

// ObserveDuration is a nil-safe PreprocessMetrics.ObserveDuration.
func ObserveDuration(m PreprocessMetrics, operation string, d time.Duration) {
	if m != nil {
		m.ObserveDuration(operation, d)
	}
}

// AddBuildings is a nil-safe PreprocessMetrics.AddBuildings.
func AddBuildings(m PreprocessMetrics, operation string, n int) {
	if m != nil && n > 0 {
		m.AddBuildings(operation, n)
	}
}

// AddSensorsRemoved is a nil-safe PreprocessMetrics.AddSensorsRemoved.
func AddSensorsRemoved(m PreprocessMetrics, step string, n int) {
	if m != nil && n > 0 {
		m.AddSensorsRemoved(step, n)
	}
}

// RecordCacheLookup is a nil-safe PreprocessMetrics.RecordCacheLookup.
func RecordCacheLookup(m PreprocessMetrics, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.RecordCacheLookup("hit")
	} else {
		m.RecordCacheLookup("miss")
	}
}
