// Package api talks to the local agent's HTTP API.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/neubot/nbwatch/internal/logger"
	"github.com/neubot/nbwatch/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// DefaultEndpoint is where the agent listens unless configured otherwise.
	DefaultEndpoint = "http://127.0.0.1:9774"
	// DefaultStatePath is the long-poll state document.
	DefaultStatePath = "/api/state"
	// VersionPath returns the agent version as plain text.
	VersionPath = "/api/version"

	// maxBody caps how much of a response is read.
	maxBody = 1 << 20
)

// StatusError is returned when the agent answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("agent returned %s", e.Status)
}

// Client issues requests against the agent API.
type Client struct {
	base      *url.URL
	statePath string
	timeout   time.Duration
	http      *http.Client
	log       logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithStatePath overrides the state endpoint path.
func WithStatePath(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.statePath = path
		}
	}
}

// WithRequestTimeout bounds each request. Zero disables the bound, which
// leaves a long poll open for as long as the agent holds it.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a client for the agent at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultEndpoint
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: missing host", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		base:      u,
		statePath: DefaultStatePath,
		http:      &http.Client{},
		log:       logger.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the base URL the client talks to.
func (c *Client) Endpoint() string {
	return c.base.String()
}

// StateURL returns the state request URL for the given cursor.
func (c *Client) StateURL(cursor string) string {
	u := *c.base
	u.Path = c.base.Path + c.statePath
	u.RawQuery = url.Values{"t": []string{cursor}}.Encode()
	return u.String()
}

// Fetch requests the state document past cursor. The agent may hold the
// request open until its state changes.
func (c *Client) Fetch(ctx context.Context, cursor string) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, "api.state")
	defer span.End()
	span.SetAttributes(telemetry.Cursor(cursor))

	body, err := c.get(ctx, c.StateURL(cursor))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("nbwatch.body_bytes", len(body)))
	return body, nil
}

// Version returns the agent version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "api.version")
	defer span.End()

	u := *c.base
	u.Path = c.base.Path + VersionPath
	body, err := c.get(ctx, u.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	c.log.Debug("GET %s", rawURL)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Debug("%s %s after %s (%d bytes)", resp.Status, rawURL, time.Since(start).Round(time.Millisecond), len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	return body, nil
}
