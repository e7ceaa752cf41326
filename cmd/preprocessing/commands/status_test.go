package commands

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adept-ml/preprocessing/pkg/api/handlers"
)

type stubUpstream struct {
	err error
}

func (s stubUpstream) Ping(context.Context) error { return s.err }
func (s stubUpstream) BaseURL() string            { return "http://data-management:8000" }

func healthServer(t *testing.T, upstream handlers.Pinger) *httptest.Server {
	t.Helper()
	h := handlers.NewHealthHandler(upstream)
	r := chi.NewRouter()
	r.Get("/health", h.Liveness)
	r.Get("/health/ready", h.Readiness)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckStatusHealthy(t *testing.T) {
	srv := healthServer(t, stubUpstream{})

	status := checkStatus(context.Background(), srv.Client(), srv.URL)

	assert.Equal(t, "healthy", status.Status)
	assert.True(t, status.Healthy)
	assert.True(t, status.Ready)
	assert.Equal(t, handlers.ServiceName, status.Service)
	assert.NotEmpty(t, status.StartedAt)
	require.Len(t, status.Upstreams, 1)
	assert.Equal(t, "data-management", status.Upstreams[0].Name)
	assert.Empty(t, status.Error)
}

func TestCheckStatusNotReady(t *testing.T) {
	srv := healthServer(t, stubUpstream{err: errors.New("connection refused")})

	status := checkStatus(context.Background(), srv.Client(), srv.URL)

	assert.True(t, status.Healthy)
	assert.False(t, status.Ready)
	assert.Equal(t, "not ready", status.Status)
	assert.Equal(t, "data management service unreachable", status.Error)
	require.Len(t, status.Upstreams, 1)
	assert.Equal(t, "connection refused", status.Upstreams[0].Error)
}

func TestCheckStatusUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	status := checkStatus(context.Background(), http.DefaultClient, url)

	assert.Equal(t, "unreachable", status.Status)
	assert.False(t, status.Healthy)
	assert.NotEmpty(t, status.Error)
}

func TestStatusCommand(t *testing.T) {
	srv := healthServer(t, nil)

	stdout, _, err := execute(t, "status", "--server", srv.URL+"/")
	require.NoError(t, err)
	assert.Contains(t, stdout, srv.URL)
	assert.Contains(t, stdout, handlers.ServiceName)

	stdout, _, err = execute(t, "status", "--server", srv.URL, "-o", "json")
	require.NoError(t, err)
	var status ServerStatus
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	assert.True(t, status.Ready)
	assert.Empty(t, status.Upstreams)
}
