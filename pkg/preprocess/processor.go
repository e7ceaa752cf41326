// Package preprocess implements the building data preprocessing operations:
// cleaning unusable sensors and buildings, interpolating missing readings
// and normalizing sensor series.
//
// The package-level functions operate sequentially on a building.Set. The
// Processor runs the same operations concurrently per building, bounded by
// a worker limit, and adds tracing, metrics and an optional result cache.
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/adept-ml/preprocessing/internal/logger"
	"github.com/adept-ml/preprocessing/internal/telemetry"
	"github.com/adept-ml/preprocessing/pkg/building"
	"github.com/adept-ml/preprocessing/pkg/cache"
	"github.com/adept-ml/preprocessing/pkg/metrics"
)

// Processor runs preprocessing operations.
type Processor struct {
	cfg     Config
	cache   cache.Cache
	metrics metrics.PreprocessMetrics
}

// New returns a Processor. Both resultCache and m may be nil.
func New(cfg Config, resultCache cache.Cache, m metrics.PreprocessMetrics) *Processor {
	cfg.ApplyDefaults()
	return &Processor{cfg: cfg, cache: resultCache, metrics: m}
}

// Config returns the processor's configuration.
func (p *Processor) Config() Config {
	return p.cfg
}

// Clean runs the cleaning pipeline on set and returns the surviving
// buildings. Buildings of set are modified in place.
func (p *Processor) Clean(ctx context.Context, set *building.Set) (*building.Set, *Report, error) {
	start := time.Now()
	ctx, span := telemetry.StartOperationSpan(ctx, telemetry.SpanClean, string(OpClean), set.Len())
	defer span.End()

	report := newReport(OpClean, set)
	removed := make([][4]int, set.Len())

	err := p.forEach(ctx, set, func(ctx context.Context, i int, b *building.Building) error {
		removed[i][0] = len(mergeDuplicates(b.Frame, p.cfg.DuplicateThreshold))
		removed[i][1] = len(removeEmpty(b.Frame))
		removed[i][2] = len(removeLowVariance(b.Frame, p.cfg.UniqueThreshold))
		removed[i][3] = removeLeftover(b)
		logger.DebugCtx(ctx, "Building cleaned",
			logger.Building(b.Name),
			logger.KeySensors, len(b.Sensors),
			logger.KeyRemoved, removed[i][0]+removed[i][1]+removed[i][2])
		return nil
	})
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, nil, err
	}

	out := RemoveEmptyBuildings(set)

	report.Removed = make(map[string]int, 5)
	for i, step := range []string{StepMergeDuplicates, StepRemoveEmpty, StepRemoveLowVariance, StepRemoveLeftover} {
		n := 0
		for _, r := range removed {
			n += r[i]
		}
		report.Removed[step] = n
		if step != StepRemoveLeftover {
			metrics.AddSensorsRemoved(p.metrics, step, n)
		}
	}
	report.Removed[StepRemoveEmptyBuildings] = set.Len() - out.Len()
	report.finish(set, out, start)

	telemetry.SetAttributes(ctx, telemetry.Removed(report.RemovedTotal()))
	return out, report, nil
}

// Interpolate fills missing readings of every building in place.
func (p *Processor) Interpolate(ctx context.Context, set *building.Set) (*building.Set, *Report, error) {
	start := time.Now()
	ctx, span := telemetry.StartOperationSpan(ctx, telemetry.SpanInterpolate, string(OpInterpolate), set.Len())
	defer span.End()

	report := newReport(OpInterpolate, set)
	filled := make([]int, set.Len())

	err := p.forEach(ctx, set, func(_ context.Context, i int, b *building.Building) error {
		filled[i] = interpolateFrame(b.Frame)
		return nil
	})
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, nil, err
	}

	for _, n := range filled {
		report.Filled += n
	}
	report.finish(set, set, start)
	return set, report, nil
}

// Normalize scales every sensor series of every building in place.
func (p *Processor) Normalize(ctx context.Context, set *building.Set, method Method) (*building.Set, *Report, error) {
	if method != MinMax && method != Mean {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}

	start := time.Now()
	ctx, span := telemetry.StartOperationSpan(ctx, telemetry.SpanNormalize, string(OpNormalize), set.Len(),
		telemetry.Normalization(string(method)))
	defer span.End()

	report := newReport(OpNormalize, set)
	report.Method = method

	err := p.forEach(ctx, set, func(_ context.Context, _ int, b *building.Building) error {
		return normalizeFrame(b.Frame, method)
	})
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, nil, err
	}

	report.finish(set, set, start)
	return set, report, nil
}

// Apply runs op on set. method is only used by OpNormalize.
func (p *Processor) Apply(ctx context.Context, op Operation, method Method, set *building.Set) (*building.Set, *Report, error) {
	switch op {
	case OpClean:
		return p.Clean(ctx, set)
	case OpInterpolate:
		return p.Interpolate(ctx, set)
	case OpNormalize:
		return p.Normalize(ctx, set, method)
	default:
		return nil, nil, fmt.Errorf("unknown operation %q", op)
	}
}

// forEach runs fn for every building of set on at most Workers goroutines.
// The first error cancels the remaining buildings.
func (p *Processor) forEach(ctx context.Context, set *building.Set, fn func(ctx context.Context, i int, b *building.Building) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for i, b := range set.Buildings() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bctx, span := telemetry.StartBuildingSpan(gctx, b.Name, b.Frame.Len())
			defer span.End()

			if err := fn(bctx, i, b); err != nil {
				telemetry.RecordError(bctx, err)
				return fmt.Errorf("building %q: %w", b.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Request is a raw processing request as received over HTTP.
type Request struct {
	Operation Operation
	Method    Method

	// Body is the request body: {"payload": <building document>}.
	Body []byte
}

// Result is the encoded outcome of a Request.
type Result struct {
	Body   []byte
	Report *Report
	Cached bool
}

// Process decodes req, runs its operation and encodes the result. Results
// are served from and stored into the cache when one is configured.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res, err := p.process(ctx, req)

	status := "ok"
	switch {
	case err == nil:
	case IsClientError(err):
		status = "client_error"
	default:
		status = "error"
	}
	metrics.RecordRequest(p.metrics, string(req.Operation), status)
	metrics.ObserveDuration(p.metrics, string(req.Operation), time.Since(start))
	return res, err
}

func (p *Processor) process(ctx context.Context, req Request) (*Result, error) {
	if req.Operation == OpNormalize {
		method, err := ParseMethod(string(req.Method))
		if err != nil {
			return nil, err
		}
		req.Method = method
	} else {
		req.Method = ""
	}

	key := p.cacheKey(req)
	if body, ok := p.lookup(ctx, key); ok {
		return &Result{
			Body:   body,
			Report: &Report{Operation: req.Operation, Method: req.Method, Cached: true},
			Cached: true,
		}, nil
	}

	dctx, span := telemetry.StartSpan(ctx, telemetry.SpanDecode, trace.WithAttributes(telemetry.PayloadBytes(len(req.Body))))
	set, err := building.DecodeRequest(req.Body)
	if err != nil {
		telemetry.RecordError(dctx, err)
	}
	span.End()
	if err != nil {
		return nil, err
	}

	metrics.AddBuildings(p.metrics, string(req.Operation), set.Len())

	out, report, err := p.Apply(ctx, req.Operation, req.Method, set)
	if err != nil {
		return nil, err
	}

	_, span = telemetry.StartSpan(ctx, telemetry.SpanEncode)
	body, err := building.Encode(out)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	p.store(ctx, key, body)

	if logger.FromContext(ctx) == nil {
		ctx = logger.WithContext(ctx, &logger.LogContext{Operation: string(req.Operation)})
	}
	logger.InfoCtx(ctx, "Preprocessing finished",
		logger.KeyBuildings, report.BuildingsOut,
		logger.KeySensors, report.SensorsOut,
		logger.KeyRemoved, report.RemovedTotal(),
		logger.DurationMs(float64(report.Duration.Microseconds())/1000))

	return &Result{Body: body, Report: report}, nil
}

func (p *Processor) cacheKey(req Request) string {
	if p.cache == nil {
		return ""
	}
	return cache.Key(
		[]byte(req.Operation),
		[]byte(req.Method),
		[]byte(strconv.Itoa(p.cfg.DuplicateThreshold)),
		[]byte(strconv.Itoa(p.cfg.UniqueThreshold)),
		req.Body,
	)
}

func (p *Processor) lookup(ctx context.Context, key string) ([]byte, bool) {
	if p.cache == nil {
		return nil, false
	}

	ctx, span := telemetry.StartCacheSpan(ctx, telemetry.SpanCacheLookup, telemetry.CacheType(p.cache.Type()))
	defer span.End()

	body, err := p.cache.Get(ctx, key)
	hit := err == nil
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		logger.WarnCtx(ctx, "Cache lookup failed", logger.KeyCacheType, p.cache.Type(), logger.Err(err))
	}

	telemetry.SetAttributes(ctx, telemetry.CacheHit(hit))
	metrics.RecordCacheLookup(p.metrics, hit)
	logger.DebugCtx(ctx, "Cache lookup", logger.CacheHit(hit))
	return body, hit
}

func (p *Processor) store(ctx context.Context, key string, body []byte) {
	if p.cache == nil {
		return
	}

	ctx, span := telemetry.StartCacheSpan(ctx, telemetry.SpanCacheStore, telemetry.CacheType(p.cache.Type()))
	defer span.End()

	if err := p.cache.Set(ctx, key, body); err != nil {
		telemetry.RecordError(ctx, err)
		logger.WarnCtx(ctx, "Cache store failed", logger.KeyCacheType, p.cache.Type(), logger.Err(err))
	}
}

// IsClientError reports whether err was caused by the request rather than
// by the service.
func IsClientError(err error) bool {
	return errors.Is(err, building.ErrInvalidRequest) ||
		errors.Is(err, building.ErrEmptyPayload) ||
		errors.Is(err, building.ErrInvalidDocument) ||
		errors.Is(err, ErrUnknownMethod)
}
