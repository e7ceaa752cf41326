package logger

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"

	textTimeLayout = "2006-01-02 15:04:05.000"
)

// levelStyles is ordered from the most to the least severe.
var levelStyles = [...]struct {
	min   slog.Level
	name  string
	color string
}{
	{slog.LevelError, "ERROR", colorRed},
	{slog.LevelWarn, "WARN", colorYellow},
	{slog.LevelInfo, "INFO", colorGreen},
}

// lockedWriter serializes whole lines from handlers sharing one output.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) write(p []byte) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err := lw.w.Write(p)
	return err
}

// TextHandler is a slog.Handler writing one line per record:
//
//	[2006-01-02 15:04:05.000] [INFO] message key=value ...
//
// Group names become dotted key prefixes. Levels and keys are coloured
// when color is set.
type TextHandler struct {
	out   *lockedWriter
	level slog.Leveler
	color bool
	group string // dotted prefix for record attrs
	attrs []byte // pre-encoded WithAttrs output
}

// NewTextHandler creates a TextHandler. A nil opts logs at INFO and above.
func NewTextHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *TextHandler {
	var lvl slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		lvl = opts.Level
	}
	return &TextHandler{out: &lockedWriter{w: w}, level: lvl, color: color}
}

// Enabled reports whether records at level are written.
func (h *TextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes r as a single line.
func (h *TextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, textTimeLayout)
	buf = append(buf, "] ["...)
	buf = h.appendLevel(buf, r.Level)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)
	buf = append(buf, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.group, a)
		return true
	})
	return h.out.write(append(buf, '\n'))
}

// WithAttrs returns a handler that writes attrs on every line.
func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	c.attrs = append([]byte(nil), h.attrs...)
	for _, a := range attrs {
		c.attrs = h.appendAttr(c.attrs, h.group, a)
	}
	return &c
}

// WithGroup returns a handler whose later attrs are prefixed with name.
func (h *TextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group = h.group + name + "."
	return &c
}

func (h *TextHandler) appendLevel(buf []byte, level slog.Level) []byte {
	name, color := "DEBUG", colorGray
	for _, s := range levelStyles {
		if level >= s.min {
			name, color = s.name, s.color
			break
		}
	}
	if !h.color {
		return append(buf, name...)
	}
	return append(append(append(buf, color...), name...), colorReset...)
}

func (h *TextHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = h.appendAttr(buf, prefix, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	if h.color {
		buf = append(buf, colorCyan...)
	}
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	if h.color {
		buf = append(buf, colorReset...)
	}
	buf = append(buf, '=')
	return appendValue(buf, a.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if strings.ContainsAny(s, " \t\n\"=") {
			return strconv.AppendQuote(buf, s)
		}
		return append(buf, s...)
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	default:
		if err, ok := v.Any().(error); ok {
			return strconv.AppendQuote(buf, err.Error())
		}
		return append(buf, v.String()...)
	}
}
