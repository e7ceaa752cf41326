package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/adept-ml/preprocessing/internal/logger"
	"github.com/adept-ml/preprocessing/internal/telemetry"
	"github.com/adept-ml/preprocessing/pkg/api"
	"github.com/adept-ml/preprocessing/pkg/api/handlers"
	"github.com/adept-ml/preprocessing/pkg/config"
	"github.com/adept-ml/preprocessing/pkg/datamgmt"

	// Import prometheus metrics to register init() functions
	_ "github.com/adept-ml/preprocessing/pkg/metrics/prometheus"
)

var pidFile string

const upstreamProbeTimeout = 3 * time.Second

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the preprocessing server",
	Long: `Start the preprocessing HTTP server in the foreground.

The server runs until it receives SIGINT or SIGTERM and then shuts down
gracefully within shutdown_timeout.

Use --config to specify a configuration file. Without one, the default
location $XDG_CONFIG_HOME/preprocessing/config.yaml is used if it exists,
otherwise built-in defaults plus PREPROCESSING_* environment variables.

Examples:
  # Start with defaults
  preprocessing start

  # Start with custom config file
  preprocessing start --config /etc/preprocessing/config.yaml

  # Start with environment variable overrides
  PREPROCESSING_DATA_MANAGEMENT_URL=http://data-management:8000 preprocessing start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (not written when empty)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry (if enabled)
	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// Initialize metrics FIRST so the processor records into the registry
	metricsResult := config.InitializeMetrics(cfg)

	resultCache, err := config.CreateCache(cfg.Cache)
	if err != nil {
		return err
	}
	if resultCache != nil {
		defer func() {
			if err := resultCache.Close(); err != nil {
				logger.Error("cache close error", logger.Err(err))
			}
		}()
	}

	processor := config.CreateProcessor(cfg, resultCache, metricsResult.Preprocess)
	logger.Info("Processor configured",
		"duplicate_threshold", cfg.Preprocessing.DuplicateThreshold,
		"unique_threshold", cfg.Preprocessing.UniqueThreshold,
		"workers", processor.Config().Workers)

	deps := api.Dependencies{Processor: processor}
	if checker, ok := resultCache.(handlers.Checker); ok {
		deps.Checkers = map[string]handlers.Checker{"result-cache": checker}
	}
	if client := cfg.DataManagement.NewClient(); client != nil {
		deps.Upstream = client
		logger.Info("Data management service configured", logger.KeyURL, client.BaseURL())
		probeUpstream(ctx, client)
	} else {
		logger.Info("Data management service not configured, readiness is unconditional")
	}

	apiServer := api.NewServer(cfg.Server, deps)

	if pidFile != "" {
		if err := writePidFile(pidFile); err != nil {
			return err
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serveCtx, cancelServe := context.WithCancel(context.Background())
	defer cancelServe()

	g, gctx := errgroup.WithContext(serveCtx)
	g.Go(func() error { return apiServer.Start(gctx) })
	if metricsResult.Server != nil {
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
		g.Go(func() error { return metricsResult.Server.Start(gctx) })
	} else {
		logger.Info("Metrics collection disabled")
	}

	logger.Info("Server is running. Press Ctrl+C to stop.")

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		shutdownErr := apiServer.Stop(shutdownCtx)
		if metricsResult.Server != nil {
			shutdownErr = errors.Join(shutdownErr, metricsResult.Server.Stop(shutdownCtx))
		}
		cancelServe()

		if err := errors.Join(shutdownErr, <-done); err != nil {
			logger.Error("Server shutdown error", logger.Err(err))
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-done:
		if err != nil {
			logger.Error("Server error", logger.Err(err))
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}

// probeUpstream lists the data management routes once at startup. Failure is
// logged only; readiness reports the upstream state afterwards.
func probeUpstream(ctx context.Context, client *datamgmt.Client) {
	ctx, cancel := context.WithTimeout(ctx, upstreamProbeTimeout)
	defer cancel()

	routes, err := client.Routes(ctx)
	if err != nil {
		logger.Warn("Data management service not reachable at startup",
			logger.KeyURL, client.BaseURL(), logger.Err(err))
		return
	}
	names := make([]string, 0, len(routes))
	for _, r := range routes {
		names = append(names, r.Name)
	}
	logger.Debug("Data management routes", "count", len(routes), "routes", names)
}
