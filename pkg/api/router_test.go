package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adept-ml/preprocessing/pkg/api/handlers"
	"github.com/adept-ml/preprocessing/pkg/building"
	"github.com/adept-ml/preprocessing/pkg/cache"
	"github.com/adept-ml/preprocessing/pkg/preprocess"
)

const exampleRequest = `{"payload": {"EF 40a": {"name": "EF 40a",
 "sensors": [{"type": "Elektrizität", "desc": "P Summe", "unit": "kW"}],
 "dataframe": "{\"Elektrizität\":{\"1642809600000\":4.658038,\"1642810500000\":null,\"1642811400000\":4.195286}}"}}}`

func newTestRouter(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	return NewRouter(cfg, Dependencies{
		Processor: preprocess.New(preprocess.DefaultConfig(), cache.NewMemory(16, time.Minute), nil),
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRootListsRoutes(t *testing.T) {
	w := do(t, newTestRouter(t, Config{}), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)

	var routes []handlers.Route
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &routes))

	paths := make([]string, 0, len(routes))
	for _, r := range routes {
		paths = append(paths, r.Path)
		assert.NotEmpty(t, r.Name)
	}
	assert.Equal(t, []string{"/", "/clean", "/interpolate", "/normalize", "/health", "/health/ready"}, paths)
	assert.NotContains(t, paths, "/openapi.json")
	assert.Equal(t, RouteRoot, routes[0].Name)
	assert.Equal(t, RouteClean, routes[1].Name)
}

func TestOpenAPIDocument(t *testing.T) {
	w := do(t, newTestRouter(t, Config{}), http.MethodGet, "/openapi.json", "")
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	info := doc["info"].(map[string]any)
	assert.Equal(t, APITitle, info["title"])
	assert.Equal(t, APIVersion, info["version"])
	assert.Equal(t, APIDescription, info["description"])
	assert.Equal(t, APILogoURL, info["x-logo"].(map[string]any)["url"])

	paths := doc["paths"].(map[string]any)
	for _, p := range []string{"/", "/clean", "/interpolate", "/normalize", "/health", "/health/ready", "/openapi.json"} {
		assert.Contains(t, paths, p)
	}
	post := paths["/clean"].(map[string]any)["post"].(map[string]any)
	assert.Equal(t, RouteClean, post["summary"])

	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	assert.Contains(t, schemas, "ProcessRequest")
	assert.Contains(t, schemas, "Problem")
}

func TestInterpolateRoute(t *testing.T) {
	router := newTestRouter(t, Config{})

	w := do(t, router, http.MethodPost, "/interpolate", exampleRequest)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "MISS", w.Header().Get(handlers.HeaderCache))

	set, err := building.DecodeDocument(w.Body.Bytes())
	require.NoError(t, err)
	b, ok := set.Get("EF 40a")
	require.True(t, ok)
	assert.InDelta(t, 4.426662, b.Frame.Column("Elektrizität")[1], 1e-9)

	again := do(t, router, http.MethodPost, "/interpolate", exampleRequest)
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, "HIT", again.Header().Get(handlers.HeaderCache))
	assert.Equal(t, w.Body.String(), again.Body.String())
}

func TestCleanRouteRemovesLowVarianceBuilding(t *testing.T) {
	w := do(t, newTestRouter(t, Config{}), http.MethodPost, "/clean", exampleRequest)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestNormalizeRoute(t *testing.T) {
	router := newTestRouter(t, Config{})

	w := do(t, router, http.MethodPost, "/normalize?method=minmax", exampleRequest)
	require.Equal(t, http.StatusOK, w.Code)

	set, err := building.DecodeDocument(w.Body.Bytes())
	require.NoError(t, err)
	b, _ := set.Get("EF 40a")
	col := b.Frame.Column("Elektrizität")
	assert.Equal(t, 1.0, col[0])
	assert.Equal(t, 0.0, col[2])

	bad := do(t, router, http.MethodPost, "/normalize?method=median", exampleRequest)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Contains(t, bad.Body.String(), "Unknown normalization method: median")
}

func TestProcessingErrors(t *testing.T) {
	router := newTestRouter(t, Config{})

	tests := []struct {
		name   string
		body   string
		status int
		detail string
	}{
		{"not json", `payload`, http.StatusBadRequest, "Invalid request body"},
		{"missing payload", `{"data": {}}`, http.StatusBadRequest, "Invalid request body"},
		{"empty object", `{"payload": {}}`, http.StatusBadRequest, "Payload can not be empty"},
		{"empty string", `{"payload": ""}`, http.StatusBadRequest, "Payload can not be empty"},
		{"null", `{"payload": null}`, http.StatusBadRequest, "Payload can not be empty"},
		{"false", `{"payload": false}`, http.StatusBadRequest, "Payload can not be empty"},
		{"zero", `{"payload": 0}`, http.StatusBadRequest, "Payload can not be empty"},
		{"empty array", `{"payload": []}`, http.StatusBadRequest, "Payload can not be empty"},
		{"not a building", `{"payload": {"b": 5}}`, http.StatusUnprocessableEntity, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/clean", tt.body)
			assert.Equal(t, tt.status, w.Code)

			var p handlers.Problem
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
			if tt.detail != "" {
				assert.Equal(t, tt.detail, p.Detail)
			} else {
				assert.NotEmpty(t, p.Detail)
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	router := newTestRouter(t, Config{MaxBodySize: 64})

	w := do(t, router, http.MethodPost, "/clean", exampleRequest)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "Request body too large")
}

func TestUnknownRouteAndMethod(t *testing.T) {
	router := newTestRouter(t, Config{})

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, router, http.MethodGet, "/clean", "").Code)
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(t, Config{})

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health/ready", "").Code)
}

func TestReadinessChecksResultCache(t *testing.T) {
	badger, err := cache.NewBadger("", time.Minute)
	require.NoError(t, err)

	router := NewRouter(Config{}, Dependencies{
		Processor: preprocess.New(preprocess.DefaultConfig(), badger, nil),
		Checkers:  map[string]handlers.Checker{"result-cache": badger},
	})

	w := do(t, router, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"result-cache"`)

	require.NoError(t, badger.Close())
	w = do(t, router, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "result cache unreachable")
}

func TestServerServeAndStop(t *testing.T) {
	srv := NewServer(Config{Port: 1}, Dependencies{
		Processor: preprocess.New(preprocess.DefaultConfig(), nil, nil),
	})
	assert.Equal(t, 1, srv.Port())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	port := ln.Addr().(*net.TCPAddr).Port
	require.Eventually(t, func() bool { return srv.Port() == port }, time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.NoError(t, srv.Stop(context.Background()))
}

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(64<<20), cfg.MaxBodySize.Int64())
}
