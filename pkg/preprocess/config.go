package preprocess

import "runtime"

// Default thresholds of the cleaning pipeline.
const (
	DefaultDuplicateThreshold = 10
	DefaultUniqueThreshold    = 10
)

// Config configures a Processor.
type Config struct {
	// DuplicateThreshold is the number of mismatching valid values below
	// which two equally long columns count as duplicates.
	// Default: 10
	DuplicateThreshold int `mapstructure:"duplicate_threshold" validate:"gte=0" yaml:"duplicate_threshold"`

	// UniqueThreshold is the minimum number of distinct valid values a
	// column needs to survive cleaning.
	// Default: 10
	UniqueThreshold int `mapstructure:"unique_threshold" validate:"gte=0" yaml:"unique_threshold"`

	// Workers bounds how many buildings are processed concurrently.
	// Default: number of CPUs
	Workers int `mapstructure:"workers" validate:"gte=0" yaml:"workers"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DuplicateThreshold: DefaultDuplicateThreshold,
		UniqueThreshold:    DefaultUniqueThreshold,
		Workers:            runtime.NumCPU(),
	}
}

// ApplyDefaults fills in the worker count. Thresholds keep their value
// since zero is meaningful for both.
func (c *Config) ApplyDefaults() {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}
