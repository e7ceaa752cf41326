package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adept-ml/preprocessing/internal/cli/health"
	"github.com/adept-ml/preprocessing/internal/cli/output"
	"github.com/adept-ml/preprocessing/internal/cli/timeutil"
	"github.com/adept-ml/preprocessing/pkg/config"
)

const statusTimeout = 5 * time.Second

var (
	statusServer string
	statusFormat string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running server",
	Long: `Query the liveness and readiness probes of a running preprocessing
server and display status, uptime and upstream reachability.

When --server is not given, the server is assumed to listen on localhost
at the port from the configuration.

Examples:
  # Check the local server
  preprocessing status

  # Check a remote server as JSON
  preprocessing status --server http://preprocessing:8000 -o json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusServer, "server", "", "Server base URL (default: http://localhost:<server.port>)")
	statusCmd.Flags().StringVarP(&statusFormat, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the server status for display.
type ServerStatus struct {
	Server    string            `json:"server" yaml:"server"`
	Status    string            `json:"status" yaml:"status"`
	Healthy   bool              `json:"healthy" yaml:"healthy"`
	Ready     bool              `json:"ready" yaml:"ready"`
	Service   string            `json:"service,omitempty" yaml:"service,omitempty"`
	Instance  string            `json:"instance_id,omitempty" yaml:"instance_id,omitempty"`
	StartedAt string            `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime    string            `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Upstreams []health.Upstream `json:"upstreams,omitempty" yaml:"upstreams,omitempty"`
	Error     string            `json:"error,omitempty" yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusFormat)
	if err != nil {
		return err
	}

	serverURL := statusServer
	if serverURL == "" {
		cfg, err := config.Load(GetConfigFile())
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		serverURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	serverURL = strings.TrimRight(serverURL, "/")

	client := &http.Client{Timeout: statusTimeout}
	status := checkStatus(cmd.Context(), client, serverURL)

	printer := output.NewPrinter(cmd.OutOrStdout(), format)
	if format != output.FormatTable {
		return printer.Print(status)
	}
	printStatusTable(cmd.OutOrStdout(), status)
	if !status.Healthy || !status.Ready {
		printer.Warning(fmt.Sprintf("%s is %s", status.Server, status.Status))
	}
	return nil
}

// checkStatus queries /health and, when the server is alive, /health/ready.
func checkStatus(ctx context.Context, client *http.Client, serverURL string) ServerStatus {
	status := ServerStatus{Server: serverURL, Status: "unreachable"}

	live, err := fetchProbe(ctx, client, serverURL+"/health")
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Status = live.Status
	status.Healthy = live.Healthy()
	status.Service = live.Data.Service
	status.Instance = live.Data.InstanceID
	status.StartedAt = live.Data.StartedAt
	status.Uptime = live.Data.Uptime

	ready, err := fetchProbe(ctx, client, serverURL+"/health/ready")
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Ready = ready.Healthy()
	status.Upstreams = ready.Data.Upstreams
	if !status.Ready {
		status.Status = "not ready"
		status.Error = ready.Error
	}
	return status
}

// fetchProbe decodes a probe response. Non-2xx probe answers still carry a
// health envelope, so the status code alone is not an error.
func fetchProbe(ctx context.Context, client *http.Client, url string) (*health.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}

	var probe health.Response
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse health response from %s (HTTP %d)", url, resp.StatusCode)
	}
	return &probe, nil
}

func printStatusTable(w io.Writer, status ServerStatus) {
	state := "○ " + status.Status
	if status.Healthy && status.Ready {
		state = "● " + status.Status
	}

	pairs := [][2]string{
		{"Server", status.Server},
		{"Status", state},
	}
	if status.Service != "" {
		pairs = append(pairs, [2]string{"Service", status.Service})
	}
	if status.Instance != "" {
		pairs = append(pairs, [2]string{"Instance", status.Instance})
	}
	if status.StartedAt != "" {
		pairs = append(pairs, [2]string{"Started", timeutil.FormatStarted(status.StartedAt, time.Now())})
	}
	if status.Uptime != "" {
		pairs = append(pairs, [2]string{"Uptime", timeutil.FormatUptime(status.Uptime)})
	}
	for _, u := range status.Upstreams {
		line := fmt.Sprintf("%s (%s)", u.Status, u.URL)
		if u.Error != "" {
			line += ": " + u.Error
		}
		pairs = append(pairs, [2]string{"Upstream " + u.Name, line})
	}
	if status.Error != "" {
		pairs = append(pairs, [2]string{"Error", status.Error})
	}

	_ = output.SimpleTable(w, pairs)
}
