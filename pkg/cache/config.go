package cache

import "time"

// Backend names.
const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeBadger = "badger"
)

// Config configures the result cache.
type Config struct {
	// Type selects the backend: none, memory or badger.
	// Default: none
	Type string `mapstructure:"type" validate:"omitempty,oneof=none memory badger" yaml:"type"`

	// Size is the maximum number of entries held by the memory backend.
	// Default: 256
	Size int `mapstructure:"size" validate:"omitempty,min=1" yaml:"size"`

	// TTL is how long an entry stays valid.
	// Default: 10m
	TTL time.Duration `mapstructure:"ttl" validate:"omitempty,gte=0" yaml:"ttl"`

	// Path is the BadgerDB directory. Empty runs badger in memory.
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// ApplyDefaults fills in zero values.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = TypeNone
	}
	if c.Size <= 0 {
		c.Size = 256
	}
	if c.TTL == 0 {
		c.TTL = 10 * time.Minute
	}
}
