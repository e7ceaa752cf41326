package api

import (
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/adept-ml/preprocessing/internal/logger"
	"github.com/adept-ml/preprocessing/pkg/api/handlers"
	apimw "github.com/adept-ml/preprocessing/pkg/api/middleware"
)

// Route names listed at the root path and used as OpenAPI summaries.
const (
	RouteRoot        = "Root path"
	RouteClean       = "Remove all unusable sensors and buildings from the supplied list of buildings"
	RouteInterpolate = "Interpolates all missing sensor values"
	RouteNormalize   = "Normalizes all sensor values"
	RouteLiveness    = "Liveness probe"
	RouteReadiness   = "Readiness probe"
	RouteOpenAPI     = "OpenAPI document"
)

// route describes one endpoint. Docs routes are served but not listed.
type route struct {
	method  string
	path    string
	name    string
	tag     string
	docs    bool
	handler http.HandlerFunc
}

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	// Processor runs the processing routes. Required.
	Processor handlers.Processor

	// Upstream is probed by the readiness check. Leave nil when no
	// Data-Management-Service is configured; a typed nil pointer would be
	// probed and fail.
	Upstream handlers.Pinger

	// Checkers are local dependencies, keyed by name, that also gate
	// readiness.
	Checkers map[string]handlers.Checker
}

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - OpenTelemetry HTTP instrumentation (outermost, so spans cover everything)
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Request-scoped log context
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET / - Route listing
//   - POST /clean, /interpolate, /normalize - Processing
//   - GET /health, /health/ready - Probes
//   - GET /openapi.json - OpenAPI document
func NewRouter(cfg Config, deps Dependencies) http.Handler {
	cfg.ApplyDefaults()

	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apimw.LogContext)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.NotFound(w, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.MethodNotAllowed(w, "Method Not Allowed")
	})

	routes := buildRoutes(cfg, deps)
	for _, rt := range routes {
		r.Method(rt.method, rt.path, rt.handler)
	}

	return otelhttp.NewHandler(r, "preprocessing.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// buildRoutes returns the route table in listing order.
func buildRoutes(cfg Config, deps Dependencies) []route {
	preprocessHandler := handlers.NewPreprocessHandler(deps.Processor, cfg.MaxBodySize.Int64())
	healthHandler := handlers.NewHealthHandler(deps.Upstream)
	for _, name := range slices.Sorted(maps.Keys(deps.Checkers)) {
		healthHandler.WithChecker(name, deps.Checkers[name])
	}

	routes := []route{
		{method: http.MethodPost, path: "/clean", name: RouteClean, tag: "Preprocessing", handler: preprocessHandler.Clean},
		{method: http.MethodPost, path: "/interpolate", name: RouteInterpolate, tag: "Interpolation", handler: preprocessHandler.Interpolate},
		{method: http.MethodPost, path: "/normalize", name: RouteNormalize, tag: "Preprocessing", handler: preprocessHandler.Normalize},
		{method: http.MethodGet, path: "/health", name: RouteLiveness, tag: "Health", handler: healthHandler.Liveness},
		{method: http.MethodGet, path: "/health/ready", name: RouteReadiness, tag: "Health", handler: healthHandler.Readiness},
	}

	root := route{method: http.MethodGet, path: "/", name: RouteRoot, tag: "Root"}
	openapi := route{method: http.MethodGet, path: "/openapi.json", name: RouteOpenAPI, tag: "Docs", docs: true}

	all := append([]route{root}, routes...)
	all = append(all, openapi)

	listing := make([]handlers.Route, 0, len(all))
	for _, rt := range all {
		if !rt.docs {
			listing = append(listing, handlers.Route{Path: rt.path, Name: rt.name})
		}
	}

	all[0].handler = handlers.NewRootHandler(listing).List
	all[len(all)-1].handler = handlers.NewOpenAPIHandler(openAPIDocument(all)).Document
	return all
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, bytes, duration
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		logger.DebugCtx(ctx, "API request started",
			logger.KeyMethod, r.Method,
			logger.KeyPath, r.URL.Path,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.InfoCtx(ctx, "API request completed",
			logger.KeyMethod, r.Method,
			logger.KeyPath, r.URL.Path,
			logger.KeyStatus, ww.Status(),
			logger.KeyBytes, ww.BytesWritten(),
			logger.DurationMs(logger.Duration(start)),
		)
	})
}
