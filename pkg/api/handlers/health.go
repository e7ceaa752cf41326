package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adept-ml/preprocessing/internal/logger"
	"github.com/adept-ml/preprocessing/internal/telemetry"
)

// ServiceName is reported by the liveness probe.
const ServiceName = "preprocessing"

// readinessTimeout bounds the upstream probe of a readiness check.
const readinessTimeout = 5 * time.Second

// Pinger is the upstream the readiness probe depends on.
// *datamgmt.Client implements it.
type Pinger interface {
	Ping(ctx context.Context) error
	BaseURL() string
}

// Checker is a local dependency that can report its own health, such as
// the badger result cache.
type Checker interface {
	Healthcheck(ctx context.Context) error
}

// dependency is one readiness check.
type dependency struct {
	name  string
	label string // used in the readiness error message
	url   string
	check func(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
//
// Health endpoints provide:
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Are the Data-Management-Service and the result
//     cache usable?
type HealthHandler struct {
	deps      []dependency
	startedAt time.Time
}

// NewHealthHandler creates a new health handler.
//
// upstream may be nil, in which case the Data-Management-Service is not
// probed.
func NewHealthHandler(upstream Pinger) *HealthHandler {
	h := &HealthHandler{startedAt: time.Now()}
	if upstream != nil {
		h.deps = append(h.deps, dependency{
			name:  "data-management",
			label: "data management service",
			url:   upstream.BaseURL(),
			check: upstream.Ping,
		})
	}
	return h
}

// WithChecker adds a local dependency to the readiness probe.
func (h *HealthHandler) WithChecker(name string, c Checker) *HealthHandler {
	h.deps = append(h.deps, dependency{
		name:  name,
		label: strings.ReplaceAll(name, "-", " "),
		check: c.Healthcheck,
	})
	return h
}

// UpstreamHealth describes the result of probing one dependency.
type UpstreamHealth struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK as long as the HTTP server is responsive, with the
// service name and uptime.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startedAt)
	WriteJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":     ServiceName,
		"instance_id": telemetry.InstanceID(),
		"started_at":  h.startedAt.UTC().Format(time.RFC3339),
		"uptime":      uptime.Round(time.Second).String(),
		"uptime_sec":  int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready - readiness probe.
//
// Returns 200 OK when every dependency answers (or none is configured)
// and 503 Service Unavailable otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	results := make([]UpstreamHealth, 0, len(h.deps))
	var failed []string
	for _, dep := range h.deps {
		result := probe(ctx, dep)
		if result.Status != "healthy" {
			failed = append(failed, dep.label)
		}
		results = append(results, result)
	}

	data := map[string]any{"upstreams": results}
	if len(failed) > 0 {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse(unreachableMessage(failed), data))
		return
	}
	WriteJSON(w, http.StatusOK, healthyResponse(data))
}

func probe(ctx context.Context, dep dependency) UpstreamHealth {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanUpstreamPing,
		trace.WithAttributes(telemetry.Upstream(dep.name)))
	defer span.End()

	start := time.Now()
	err := dep.check(ctx)
	result := UpstreamHealth{
		Name:    dep.name,
		URL:     dep.url,
		Status:  "healthy",
		Latency: time.Since(start).String(),
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.WarnCtx(ctx, "Readiness probe failed",
			logger.KeyUpstream, dep.name,
			logger.KeyURL, dep.url,
			logger.Err(err))
		result.Status = "unhealthy"
		result.Error = err.Error()
	}
	return result
}

func unreachableMessage(labels []string) string {
	return strings.Join(labels, ", ") + " unreachable"
}
