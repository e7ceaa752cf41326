package config

import (
	"fmt"

	"github.com/adept-ml/preprocessing/internal/logger"
	"github.com/adept-ml/preprocessing/pkg/cache"
	"github.com/adept-ml/preprocessing/pkg/metrics"
	"github.com/adept-ml/preprocessing/pkg/preprocess"
)

// MetricsResult holds what InitializeMetrics created. Both fields are nil
// when metrics are disabled.
type MetricsResult struct {
	Server     *metrics.Server
	Preprocess metrics.PreprocessMetrics
}

// InitializeMetrics sets up the Prometheus registry and metrics server when
// enabled. Call it before creating components that record metrics so
// metrics.IsEnabled() already reports true.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{}
	}

	metrics.InitRegistry()
	return &MetricsResult{
		Server:     metrics.NewServer(cfg.Metrics.Port),
		Preprocess: metrics.NewPreprocessMetrics(),
	}
}

// CreateCache creates the configured result cache. It returns nil when
// caching is disabled.
func CreateCache(cfg cache.Config) (cache.Cache, error) {
	c, err := cache.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache: %w", cfg.Type, err)
	}
	if c == nil {
		logger.Info("Result cache disabled")
		return nil, nil
	}

	logger.Info("Result cache enabled",
		logger.KeyCacheType, c.Type(),
		"ttl", cfg.TTL.String())
	return c, nil
}

// CreateProcessor builds the processor from the preprocessing section.
func CreateProcessor(cfg *Config, resultCache cache.Cache, m metrics.PreprocessMetrics) *preprocess.Processor {
	return preprocess.New(cfg.Preprocessing, resultCache, m)
}
