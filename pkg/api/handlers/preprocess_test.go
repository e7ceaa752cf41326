package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adept-ml/preprocessing/pkg/building"
	"github.com/adept-ml/preprocessing/pkg/preprocess"
)

type fakeProcessor struct {
	result *preprocess.Result
	err    error
	got    preprocess.Request
}

func (p *fakeProcessor) Process(ctx context.Context, req preprocess.Request) (*preprocess.Result, error) {
	p.got = req
	return p.result, p.err
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) Problem {
	t.Helper()
	assert.Equal(t, ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	var p Problem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	return p
}

func TestPreprocessHandler_PassesRequest(t *testing.T) {
	proc := &fakeProcessor{result: &preprocess.Result{Body: []byte(`{"b":{}}`)}}
	h := NewPreprocessHandler(proc, 0)

	req := httptest.NewRequest(http.MethodPost, "/normalize?method=mean", strings.NewReader(`{"payload":{}}`))
	w := httptest.NewRecorder()
	h.Normalize(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "MISS", w.Header().Get(HeaderCache))
	assert.JSONEq(t, `{"b":{}}`, w.Body.String())

	assert.Equal(t, preprocess.OpNormalize, proc.got.Operation)
	assert.Equal(t, preprocess.Mean, proc.got.Method)
	assert.Equal(t, `{"payload":{}}`, string(proc.got.Body))
}

func TestPreprocessHandler_CacheHeader(t *testing.T) {
	proc := &fakeProcessor{result: &preprocess.Result{Body: []byte(`{}`), Cached: true}}
	h := NewPreprocessHandler(proc, 0)

	w := httptest.NewRecorder()
	h.Clean(w, httptest.NewRequest(http.MethodPost, "/clean", strings.NewReader(`{}`)))

	assert.Equal(t, "HIT", w.Header().Get(HeaderCache))
	assert.Equal(t, preprocess.OpClean, proc.got.Operation)
	assert.Empty(t, proc.got.Method)
}

func TestPreprocessHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		method string
		status int
		detail string
	}{
		{"invalid request", fmt.Errorf("%w: missing payload", building.ErrInvalidRequest), "", http.StatusBadRequest, "Invalid request body"},
		{"empty payload", building.ErrEmptyPayload, "", http.StatusBadRequest, "Payload can not be empty"},
		{"unknown method", fmt.Errorf("%w: median", preprocess.ErrUnknownMethod), "median", http.StatusBadRequest, "Unknown normalization method: median"},
		{"invalid document", fmt.Errorf("%w: building \"b\": sensors missing", building.ErrInvalidDocument), "", http.StatusUnprocessableEntity, "invalid building document: building \"b\": sensors missing"},
		{"internal", errors.New("disk on fire"), "", http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPreprocessHandler(&fakeProcessor{err: tt.err}, 0)

			target := "/normalize"
			if tt.method != "" {
				target += "?method=" + tt.method
			}
			w := httptest.NewRecorder()
			h.Normalize(w, httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{}`)))

			assert.Equal(t, tt.status, w.Code)
			p := decodeProblem(t, w)
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, tt.detail, p.Detail)
			assert.NotContains(t, p.Detail, "disk on fire")
		})
	}
}

func TestPreprocessHandler_BodyTooLarge(t *testing.T) {
	proc := &fakeProcessor{result: &preprocess.Result{Body: []byte(`{}`)}}
	h := NewPreprocessHandler(proc, 16)

	w := httptest.NewRecorder()
	h.Interpolate(w, httptest.NewRequest(http.MethodPost, "/interpolate", strings.NewReader(strings.Repeat("x", 64))))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body too large", decodeProblem(t, w).Detail)
	assert.Empty(t, proc.got.Operation)
}

func TestWriteProblem(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequest(w, "nope")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	p := decodeProblem(t, w)
	assert.Equal(t, "about:blank", p.Type)
	assert.Equal(t, "Bad Request", p.Title)
	assert.Equal(t, "nope", p.Detail)
}
