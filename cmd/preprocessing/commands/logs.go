package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/adept-ml/preprocessing/pkg/config"
)

// textTimestampLayout matches the prefix written by the text log format.
const textTimestampLayout = "[2006-01-02 15:04:05.000]"

var (
	logsFollow bool
	logsLines  int
	logsSince  string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show server logs",
	Long: `Display and optionally follow the preprocessing server log file.

The file is taken from logging.output in the configuration. Servers logging
to stdout or stderr have no file to read.

Examples:
  # Show last 100 lines (default)
  preprocessing logs

  # Follow logs in real-time
  preprocessing logs -f -n 20

  # Show logs since a specific time
  preprocessing logs --since "2024-01-15T10:00:00Z"`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Number of lines to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since timestamp (RFC3339 format)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := cfg.Logging.Output
	switch strings.ToLower(path) {
	case "stdout", "stderr":
		return fmt.Errorf("server is configured to log to %s, not a file\nSet logging.output to a file path to use this command", path)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("log file not found: %s\nThe server may not have started yet or is logging elsewhere", path)
	}

	var since time.Time
	if logsSince != "" {
		if since, err = time.Parse(time.RFC3339, logsSince); err != nil {
			return fmt.Errorf("invalid --since format (use RFC3339): %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if !logsFollow {
		return showLogs(out, path, logsLines, since)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Following %s (Ctrl+C to stop)...\n", path)
	return followLogs(ctx, out, path, logsLines, since)
}

// showLogs writes the last n lines of path logged at or after since.
func showLogs(w io.Writer, path string, n int, since time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	tail, err := tailLines(f, n, since)
	if err != nil {
		return err
	}
	for _, line := range tail {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// tailLines keeps the last n matching lines in a ring.
func tailLines(r io.Reader, n int, since time.Time) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	ring := make([]string, 0, n)
	next := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !since.IsZero() {
			if ts := extractTimestamp(line); !ts.IsZero() && ts.Before(since) {
				continue
			}
		}
		if len(ring) < n {
			ring = append(ring, line)
			continue
		}
		ring[next] = line
		next = (next + 1) % n
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	return append(ring[next:], ring[:next]...), nil
}

// followLogs prints the tail of path, then every line appended to it until
// ctx is done.
func followLogs(ctx context.Context, w io.Writer, path string, n int, since time.Time) error {
	if err := showLogs(w, path, n, since); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch log file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of log file: %w", err)
	}
	reader := bufio.NewReader(f)

	var partial string
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			for {
				chunk, err := reader.ReadString('\n')
				if err != nil {
					// Keep an unterminated line until the rest is written.
					partial += chunk
					break
				}
				if _, err := io.WriteString(w, partial+chunk); err != nil {
					return err
				}
				partial = ""
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// extractTimestamp reads the time of a text or JSON log line. It returns
// the zero time for lines in neither format.
func extractTimestamp(line string) time.Time {
	if strings.HasPrefix(line, "[") && len(line) >= len(textTimestampLayout) {
		if t, err := time.ParseInLocation(textTimestampLayout, line[:len(textTimestampLayout)], time.Local); err == nil {
			return t
		}
	}

	if strings.HasPrefix(line, "{") {
		if v := gjson.Get(line, "time"); v.Type == gjson.String {
			if t, err := time.Parse(time.RFC3339Nano, v.Str); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
