// Package datamgmt is a client for the ADEPT Data-Management-Service, the
// sibling service that owns building storage. The preprocessing service only
// probes it for readiness and route discovery.
package datamgmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Route is one entry of the HATEOAS route list ADEPT services serve at "/".
type Route struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Client is the Data-Management-Service API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL. A zero timeout selects 5s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// BaseURL returns the service URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping reports whether the service answers its root route with a 2xx.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/", nil)
}

// Routes returns the routes the service advertises.
func (c *Client) Routes(ctx context.Context) ([]Route, error) {
	var routes []Route
	if err := c.get(ctx, "/", &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// do performs an HTTP request and decodes the response.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}
