package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	Reset()
	assert.False(t, IsEnabled())
	assert.Nil(t, GetRegistry())

	reg := InitRegistry()
	t.Cleanup(Reset)

	assert.True(t, IsEnabled())
	assert.Same(t, reg, GetRegistry())
	assert.Same(t, reg, InitRegistry())
}

func TestHandlerDisabled(t *testing.T) {
	Reset()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerServesMetrics(t *testing.T) {
	Reset()
	InitRegistry()
	t.Cleanup(Reset)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(0)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}

func TestNewPreprocessMetricsWithoutImplementation(t *testing.T) {
	Reset()
	InitRegistry()
	t.Cleanup(Reset)

	saved := newPrometheusPreprocessMetrics
	newPrometheusPreprocessMetrics = nil
	t.Cleanup(func() { newPrometheusPreprocessMetrics = saved })

	assert.Nil(t, NewPreprocessMetrics())
}
