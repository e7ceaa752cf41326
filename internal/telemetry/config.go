package telemetry

// DefaultEndpoint is the OTLP gRPC collector address used when none is set.
const DefaultEndpoint = "localhost:4317"

// Config selects whether and where spans are exported. The zero value
// disables tracing.
type Config struct {
	Enabled bool

	// ServiceName and ServiceVersion become the service.name and
	// service.version resource attributes.
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP gRPC collector address, host:port.
	Endpoint string
	Insecure bool

	// SampleRate is the fraction of root spans kept, 0 to 1.
	SampleRate float64
}

// DefaultConfig is tracing disabled, pointed at a local collector.
func DefaultConfig() Config {
	return Config{
		ServiceName:    ServiceName,
		ServiceVersion: "dev",
		Endpoint:       DefaultEndpoint,
		Insecure:       true,
		SampleRate:     1.0,
	}
}

// withDefaults fills an empty service identity and endpoint.
func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = ServiceName
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	return c
}
