// Package health decodes the probe responses of a running preprocessing
// server for CLI output.
package health

// Response is the envelope returned by /health and /health/ready.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      Data   `json:"data"`
	Error     string `json:"error,omitempty"`
}

// Data merges the fields of both probes; each fills its own subset.
type Data struct {
	// Liveness
	Service    string `json:"service,omitempty"`
	InstanceID string `json:"instance_id,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
	Uptime     string `json:"uptime,omitempty"`
	UptimeSec  int64  `json:"uptime_sec,omitempty"`

	// Readiness
	Upstreams []Upstream `json:"upstreams,omitempty"`
}

// Upstream is the readiness result of one dependency.
type Upstream struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Healthy reports whether the probe succeeded.
func (r *Response) Healthy() bool {
	return r.Status == "healthy"
}
