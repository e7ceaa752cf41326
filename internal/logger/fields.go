package logger

import (
	"log/slog"
)

// Standard field keys. Use these consistently so log queries work across
// the HTTP layer, the processing pipeline and the cache.
const (
	// Tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// HTTP request
	KeyRequestID  = "request_id"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyClientIP   = "client_ip"
	KeyBytes      = "bytes"
	KeyDurationMs = "duration_ms"

	// Processing
	KeyOperation     = "operation" // clean, interpolate, normalize
	KeyStep          = "step"      // merge_duplicates, remove_empty, ...
	KeyBuilding      = "building"
	KeySensor        = "sensor"
	KeyBuildings     = "buildings"
	KeySensors       = "sensors"
	KeyRows          = "rows"
	KeyRemoved       = "removed"
	KeyNormalization = "normalization"

	// Cache
	KeyCacheHit  = "cache_hit"
	KeyCacheType = "cache_type"
	KeyCacheKey  = "cache_key"

	// Upstream services
	KeyUpstream = "upstream"
	KeyURL      = "url"

	KeyError = "error"
)

// TraceID returns a slog.Attr for an OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// RequestID returns a slog.Attr for the HTTP request ID
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Operation returns a slog.Attr for a preprocessing operation
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Step returns a slog.Attr for a cleaning step
func Step(name string) slog.Attr {
	return slog.String(KeyStep, name)
}

// Building returns a slog.Attr for a building name
func Building(name string) slog.Attr {
	return slog.String(KeyBuilding, name)
}

// Sensor returns a slog.Attr for a sensor column name
func Sensor(name string) slog.Attr {
	return slog.String(KeySensor, name)
}

// Removed returns a slog.Attr for the number of dropped items
func Removed(n int) slog.Attr {
	return slog.Int(KeyRemoved, n)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// CacheHit returns a slog.Attr for cache hit indicator
func CacheHit(hit bool) slog.Attr {
	return slog.Bool(KeyCacheHit, hit)
}

// Err returns a slog.Attr for an error; empty for nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
