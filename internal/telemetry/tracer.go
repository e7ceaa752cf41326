package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for preprocessing spans.
const (
	AttrOperation     = "preprocess.operation"
	AttrStep          = "preprocess.step"
	AttrBuildings     = "preprocess.buildings"
	AttrSensors       = "preprocess.sensors"
	AttrRemoved       = "preprocess.removed"
	AttrNormalization = "preprocess.normalization"
	AttrBuilding      = "building.name"
	AttrRows          = "building.rows"
	AttrPayloadBytes  = "payload.bytes"
	AttrCacheHit      = "cache.hit"
	AttrCacheType     = "cache.type"
	AttrUpstream      = "upstream.name"
)

// Span names.
const (
	SpanClean        = "preprocess.clean"
	SpanInterpolate  = "preprocess.interpolate"
	SpanNormalize    = "preprocess.normalize"
	SpanBuilding     = "preprocess.building"
	SpanDecode       = "building.decode"
	SpanEncode       = "building.encode"
	SpanCacheLookup  = "cache.lookup"
	SpanCacheStore   = "cache.store"
	SpanUpstreamPing = "upstream.ping"
)

// Operation returns an attribute for a preprocessing operation name
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// Step returns an attribute for a cleaning step name
func Step(step string) attribute.KeyValue {
	return attribute.String(AttrStep, step)
}

// Buildings returns an attribute for a building count
func Buildings(n int) attribute.KeyValue {
	return attribute.Int(AttrBuildings, n)
}

// Sensors returns an attribute for a sensor count
func Sensors(n int) attribute.KeyValue {
	return attribute.Int(AttrSensors, n)
}

// Removed returns an attribute for the number of removed items
func Removed(n int) attribute.KeyValue {
	return attribute.Int(AttrRemoved, n)
}

// Normalization returns an attribute for a normalization method
func Normalization(method string) attribute.KeyValue {
	return attribute.String(AttrNormalization, method)
}

// Building returns an attribute for a building name
func Building(name string) attribute.KeyValue {
	return attribute.String(AttrBuilding, name)
}

// Rows returns an attribute for a frame length
func Rows(n int) attribute.KeyValue {
	return attribute.Int(AttrRows, n)
}

// PayloadBytes returns an attribute for a request payload size
func PayloadBytes(n int) attribute.KeyValue {
	return attribute.Int(AttrPayloadBytes, n)
}

// CacheHit returns an attribute for cache hit indicator
func CacheHit(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// CacheType returns an attribute for the cache backend
func CacheType(t string) attribute.KeyValue {
	return attribute.String(AttrCacheType, t)
}

// Upstream returns an attribute for a probed dependency
func Upstream(name string) attribute.KeyValue {
	return attribute.String(AttrUpstream, name)
}

// StartOperationSpan starts the root span of a preprocessing operation.
func StartOperationSpan(ctx context.Context, name, operation string, buildings int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{Operation(operation), Buildings(buildings)}, attrs...)
	return StartSpan(ctx, name, trace.WithAttributes(all...))
}

// StartBuildingSpan starts a child span for one building.
func StartBuildingSpan(ctx context.Context, building string, rows int) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanBuilding, trace.WithAttributes(Building(building), Rows(rows)))
}

// StartCacheSpan starts a span for a cache operation.
func StartCacheSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(attrs...))
}
