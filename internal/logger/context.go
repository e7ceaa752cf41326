package logger

import (
	"context"
	"time"
)

type ctxKey struct{}

// LogContext carries the request-scoped fields that the *Ctx functions
// prepend to every line. Values are treated as immutable; the With*
// methods return modified copies.
type LogContext struct {
	RequestID string
	TraceID   string
	SpanID    string
	Operation string // clean, interpolate, normalize
	Method    string // normalization method, normalize only
	ClientIP  string
	StartTime time.Time
}

// NewLogContext starts a LogContext for one HTTP request.
func NewLogContext(requestID, clientIP string) *LogContext {
	return &LogContext{
		RequestID: requestID,
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// WithContext stores lc in ctx.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, lc)
}

// FromContext returns the LogContext stored in ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(ctxKey{}).(*LogContext)
	return lc
}

// Clone returns a shallow copy.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

func (lc *LogContext) with(set func(*LogContext)) *LogContext {
	c := lc.Clone()
	if c != nil {
		set(c)
	}
	return c
}

// WithOperation returns a copy tagged with a preprocessing operation.
func (lc *LogContext) WithOperation(op string) *LogContext {
	return lc.with(func(c *LogContext) { c.Operation = op })
}

// WithMethod returns a copy tagged with a normalization method.
func (lc *LogContext) WithMethod(method string) *LogContext {
	return lc.with(func(c *LogContext) { c.Method = method })
}

// WithTrace returns a copy carrying the active trace and span IDs.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	return lc.with(func(c *LogContext) {
		c.TraceID = traceID
		c.SpanID = spanID
	})
}

// Attrs returns the non-empty fields as alternating key/value pairs, in
// the order they appear on a log line.
func (lc *LogContext) Attrs() []any {
	if lc == nil {
		return nil
	}
	fields := [...]struct{ key, value string }{
		{KeyRequestID, lc.RequestID},
		{KeyTraceID, lc.TraceID},
		{KeySpanID, lc.SpanID},
		{KeyOperation, lc.Operation},
		{KeyNormalization, lc.Method},
		{KeyClientIP, lc.ClientIP},
	}

	attrs := make([]any, 0, 2*len(fields))
	for _, f := range fields {
		if f.value != "" {
			attrs = append(attrs, f.key, f.value)
		}
	}
	return attrs
}

// DurationMs is the time since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return Duration(lc.StartTime)
}
