package datamgmt

import "time"

// DefaultTimeout bounds every request to the service.
const DefaultTimeout = 5 * time.Second

// Config locates the Data-Management-Service.
type Config struct {
	// URL is the service base URL, e.g. "http://data-management:8000".
	// Empty disables the readiness probe.
	URL string `mapstructure:"url" validate:"omitempty,url" yaml:"url"`

	// Timeout bounds each request.
	// Default: 5s
	Timeout time.Duration `mapstructure:"timeout" validate:"omitempty,gt=0" yaml:"timeout"`
}

// Enabled reports whether a URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// NewClient returns a client for c, or nil when no URL is configured.
func (c Config) NewClient() *Client {
	if !c.Enabled() {
		return nil
	}
	return New(c.URL, c.Timeout)
}
