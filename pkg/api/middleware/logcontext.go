// Package middleware provides HTTP middleware for the preprocessing API.
package middleware

import (
	"net"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/adept-ml/preprocessing/internal/logger"
	"github.com/adept-ml/preprocessing/internal/telemetry"
)

// LogContext attaches a logger.LogContext to every request so *Ctx log
// calls carry the request ID, client IP and trace identifiers.
// Must run after chi's RequestID and RealIP middleware.
func LogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		lc := logger.NewLogContext(chimiddleware.GetReqID(ctx), ClientIP(r.RemoteAddr))
		if traceID := telemetry.TraceID(ctx); traceID != "" {
			lc = lc.WithTrace(traceID, telemetry.SpanID(ctx))
		}

		next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx, lc)))
	})
}

// ClientIP strips the port from a RemoteAddr. Addresses rewritten by
// RealIP carry no port and are returned unchanged.
func ClientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
