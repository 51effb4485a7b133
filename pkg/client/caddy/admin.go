// Package caddy provides a client for the Caddy admin API that the
// deployment proxy publishes on the loopback interface.
package caddy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Admin API error definitions.
var (
	// ErrUnexpectedStatus is returned when the admin API responds with a non-200 status.
	ErrUnexpectedStatus = errors.New("caddy admin API returned unexpected status")
	// ErrEmptyConfig is returned when a config payload to load is empty.
	ErrEmptyConfig = errors.New("caddy config payload is empty")
)

const (
	// AdminHost is the loopback interface the proxy publishes its admin API on.
	AdminHost = "127.0.0.1"
	// AdminHTTPTimeout bounds individual admin API requests.
	AdminHTTPTimeout = 10 * time.Second

	// CaddyfileContentType is the media type for Caddyfile payloads.
	CaddyfileContentType = "text/caddyfile"
	// JSONContentType is the media type for native JSON config payloads.
	JSONContentType = "application/json"

	configPath = "/config/"
	loadPath   = "/load"

	maxErrorBodyBytes = 8 * 1024
)

// Client talks to the admin API of the deployment proxy.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for the admin API published on the given
// loopback port.
func NewClient(adminPort int32) *Client {
	addr := net.JoinHostPort(AdminHost, strconv.Itoa(int(adminPort)))

	return NewClientWithBaseURL("http://" + addr)
}

// NewClientWithBaseURL creates a client against a custom admin endpoint.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: AdminHTTPTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Ping checks that the admin API is reachable and serving its config.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, configPath, "", nil)
}

// Load replaces the running proxy configuration with a Caddyfile payload.
// Caddy adapts the Caddyfile server-side, so adaptation errors come back in
// the response body.
func (c *Client) Load(ctx context.Context, caddyfile []byte) error {
	if len(bytes.TrimSpace(caddyfile)) == 0 {
		return ErrEmptyConfig
	}

	return c.do(ctx, http.MethodPost, loadPath, CaddyfileContentType, bytes.NewReader(caddyfile))
}

// LoadJSON replaces the running proxy configuration with a native JSON config.
func (c *Client) LoadJSON(ctx context.Context, config []byte) error {
	if len(bytes.TrimSpace(config)) == 0 {
		return ErrEmptyConfig
	}

	return c.do(ctx, http.MethodPost, loadPath, JSONContentType, bytes.NewReader(config))
}

// do performs a single admin API request and checks for a 200 response.
func (c *Client) do(
	ctx context.Context,
	method, path, contentType string,
	payload io.Reader,
) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to create admin API request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach caddy admin API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return buildStatusError(resp)
	}

	return nil
}

// buildStatusError wraps a non-200 response, keeping the body so config
// adaptation failures are readable without consulting proxy logs.
func buildStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	detail := strings.TrimSpace(string(body))
	if detail == "" {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, detail)
}
