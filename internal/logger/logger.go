// Package logger is the process-wide structured logger of the preprocessing
// service. It wraps log/slog behind package-level functions so handlers and
// the processing pipeline can log without threading a logger through every
// call.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds logger configuration
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

// sink is where records go and how they are encoded.
type sink struct {
	w      io.Writer
	file   *os.File // owned log file, closed when replaced
	format string
	color  bool
}

var (
	// level is shared by every handler so SetLevel needs no rebuild.
	level = new(slog.LevelVar)

	mu      sync.RWMutex
	current = sink{w: os.Stdout, format: FormatText, color: isTerminal(os.Stdout)}
	slogger *slog.Logger
)

func init() {
	mu.Lock()
	rebuild()
	mu.Unlock()
}

// ParseLevel maps DEBUG, INFO, WARN and ERROR, in any case, to slog levels.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return 0, false
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// rebuild replaces the slog logger from current. Callers hold mu.
func rebuild() {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = NewTextHandler(current.w, opts, current.color)
	if current.format == FormatJSON {
		h = slog.NewJSONHandler(current.w, opts)
	}
	slogger = slog.New(h)
}

// Init configures level, format and output. Output can be "stdout",
// "stderr", or a file path opened for appending.
func Init(cfg Config) error {
	SetLevel(cfg.Level)

	mu.Lock()
	defer mu.Unlock()

	if cfg.Output != "" {
		next, err := openSink(cfg.Output)
		if err != nil {
			return err
		}
		if current.file != nil {
			_ = current.file.Close()
		}
		next.format = current.format
		current = next
	}
	if f := strings.ToLower(cfg.Format); f == FormatText || f == FormatJSON {
		current.format = f
	}
	rebuild()
	return nil
}

func openSink(dest string) (sink, error) {
	switch strings.ToLower(dest) {
	case "stdout":
		return sink{w: os.Stdout, color: isTerminal(os.Stdout)}, nil
	case "stderr":
		return sink{w: os.Stderr, color: isTerminal(os.Stderr)}, nil
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return sink{}, fmt.Errorf("failed to open log file %q: %w", dest, err)
	}
	return sink{w: f, file: f}, nil
}

// InitWithWriter points the logger at w. Used by tests.
func InitWithWriter(w io.Writer, lvl, format string, color bool) {
	SetLevel(lvl)

	mu.Lock()
	defer mu.Unlock()
	current.w = w
	current.file = nil
	current.color = color
	if f := strings.ToLower(format); f == FormatText || f == FormatJSON {
		current.format = f
	}
	rebuild()
}

// SetLevel sets the minimum log level. Unknown levels are ignored.
func SetLevel(s string) {
	if l, ok := ParseLevel(s); ok {
		level.Set(l)
	}
}

// SetFormat switches between text and json. Unknown formats are ignored.
func SetFormat(format string) {
	format = strings.ToLower(format)
	if format != FormatText && format != FormatJSON {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	current.format = format
	rebuild()
}

func getLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

func emit(ctx context.Context, lvl slog.Level, msg string, args []any) {
	if lvl < level.Level() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	} else if lc := FromContext(ctx); lc != nil {
		args = append(lc.Attrs(), args...)
	}
	getLogger().Log(ctx, lvl, msg, args...)
}

// Debug logs at debug level with structured fields
// Usage: Debug("message", "key1", value1, "key2", value2)
func Debug(msg string, args ...any) { emit(context.Background(), slog.LevelDebug, msg, args) }

// Info logs at info level.
func Info(msg string, args ...any) { emit(context.Background(), slog.LevelInfo, msg, args) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { emit(context.Background(), slog.LevelWarn, msg, args) }

// Error logs at error level.
func Error(msg string, args ...any) { emit(context.Background(), slog.LevelError, msg, args) }

// DebugCtx logs at debug level, prepending the request fields found in ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelDebug, msg, args)
}

// InfoCtx logs at info level with context
func InfoCtx(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, msg, args)
}

// WarnCtx logs at warn level with context
func WarnCtx(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelWarn, msg, args)
}

// ErrorCtx logs at error level with context
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelError, msg, args)
}

// With returns a new slog.Logger with additional attributes
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}

// Duration returns duration since start time in milliseconds
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
