package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// sampleConfig is written by InitConfig. Every value matches
// GetDefaultConfig so a generated file behaves like no file at all.
const sampleConfig = `# Preprocessing Service Configuration File
#
# Every setting can be overridden with an environment variable:
# PREPROCESSING_<SECTION>_<KEY>, e.g. PREPROCESSING_SERVER_PORT=8080 or
# PREPROCESSING_DATA_MANAGEMENT_URL=http://data-management:8000

logging:
  # DEBUG, INFO, WARN or ERROR
  level: INFO
  # text or json
  format: text
  # stdout, stderr or a file path
  output: stdout

telemetry:
  enabled: false
  endpoint: localhost:4317
  insecure: true
  sample_rate: 1.0
  profiling:
    enabled: false
    endpoint: http://localhost:4040
    profile_types:
      - cpu
      - alloc_objects
      - alloc_space
      - inuse_objects
      - inuse_space
      - goroutines

shutdown_timeout: 30s

metrics:
  enabled: false
  port: 9090

server:
  port: 8000
  read_timeout: 30s
  write_timeout: 60s
  idle_timeout: 60s
  request_timeout: 60s
  max_body_size: 64MiB

preprocessing:
  # Columns with fewer mismatching values than this are merged
  duplicate_threshold: 10
  # Columns need at least this many distinct values to be kept
  unique_threshold: 10
  # Concurrent buildings per request (0 = number of CPUs)
  workers: 0

data_management:
  # Leave empty to report ready without probing the service
  url: ""
  timeout: 5s

cache:
  # none, memory or badger
  type: none
  size: 256
  ttl: 10m
  # BadgerDB directory; empty keeps badger in memory
  path: ""
`

// InitConfig writes a sample configuration to the default location and
// returns its path.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a sample configuration to path. An existing file
// is only replaced when force is set.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
