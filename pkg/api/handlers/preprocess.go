package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/adept-ml/preprocessing/internal/logger"
	"github.com/adept-ml/preprocessing/pkg/building"
	"github.com/adept-ml/preprocessing/pkg/preprocess"
)

// HeaderCache reports whether a response was served from the result cache.
const HeaderCache = "X-Cache"

// Processor runs preprocessing requests. *preprocess.Processor implements it.
type Processor interface {
	Process(ctx context.Context, req preprocess.Request) (*preprocess.Result, error)
}

// PreprocessHandler serves the processing routes.
type PreprocessHandler struct {
	processor   Processor
	maxBodySize int64
}

// NewPreprocessHandler creates a handler backed by processor. Bodies larger
// than maxBodySize bytes are rejected with 413; zero disables the limit.
func NewPreprocessHandler(processor Processor, maxBodySize int64) *PreprocessHandler {
	return &PreprocessHandler{processor: processor, maxBodySize: maxBodySize}
}

// Clean handles POST /clean.
func (h *PreprocessHandler) Clean(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, preprocess.OpClean, "")
}

// Interpolate handles POST /interpolate.
func (h *PreprocessHandler) Interpolate(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, preprocess.OpInterpolate, "")
}

// Normalize handles POST /normalize?method=minmax|mean.
func (h *PreprocessHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, preprocess.OpNormalize, preprocess.Method(r.URL.Query().Get("method")))
}

func (h *PreprocessHandler) serve(w http.ResponseWriter, r *http.Request, op preprocess.Operation, method preprocess.Method) {
	ctx := r.Context()
	if lc := logger.FromContext(ctx); lc != nil {
		lc = lc.WithOperation(string(op))
		if method != "" {
			lc = lc.WithMethod(string(method))
		}
		ctx = logger.WithContext(ctx, lc)
	}

	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	res, err := h.processor.Process(ctx, preprocess.Request{
		Operation: op,
		Method:    method,
		Body:      body,
	})
	if err != nil {
		h.writeError(ctx, w, method, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if res.Cached {
		w.Header().Set(HeaderCache, "HIT")
	} else {
		w.Header().Set(HeaderCache, "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Body)
}

// readBody reads the request body, writing 413 when it exceeds the limit.
func (h *PreprocessHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	reader := io.Reader(r.Body)
	if h.maxBodySize > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RequestEntityTooLarge(w, "Request body too large")
			return nil, false
		}
		BadRequest(w, "Invalid request body")
		return nil, false
	}
	return body, true
}

// writeError maps processing errors to problem responses.
func (h *PreprocessHandler) writeError(ctx context.Context, w http.ResponseWriter, method preprocess.Method, err error) {
	switch {
	case errors.Is(err, building.ErrEmptyPayload):
		BadRequest(w, "Payload can not be empty")
	case errors.Is(err, building.ErrInvalidRequest):
		BadRequest(w, "Invalid request body")
	case errors.Is(err, preprocess.ErrUnknownMethod):
		BadRequest(w, fmt.Sprintf("Unknown normalization method: %s", method))
	case errors.Is(err, building.ErrInvalidDocument):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		// The timeout middleware answers 504 once the deadline passes; a
		// canceled client is gone.
		logger.WarnCtx(ctx, "Preprocessing aborted", logger.Err(err))
	default:
		logger.ErrorCtx(ctx, "Preprocessing failed", logger.Err(err))
		InternalServerError(w, "Internal Server Error")
	}
}
