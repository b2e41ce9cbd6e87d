// Package client talks to the workflow and AI services over HTTP. It is the only
// component that performs network I/O.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dukex/flowsuite/pkg/otelhelper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is where the service API is expected when nothing else is configured.
const DefaultBaseURL = "http://localhost:8080/api"

const (
	contentTypeJSON    = "application/json"
	contentTypeProblem = "application/problem+json"

	maxErrorBody = 64 << 10
)

// Client is an HTTP client for the /api contract. It never retries and applies no
// timeout of its own beyond what the caller's context and http.Client impose.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *slog.Logger
	headers    http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer sets the tracer used to record one span per request.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// New creates a client rooted at baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}

	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: http.DefaultClient,
		tracer:     otel.Tracer("github.com/dukex/flowsuite/pkg/client"),
		logger:     slog.Default(),
		headers:    http.Header{},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With("module", "client")

	return c, nil
}

// BaseURL returns the root all request paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// do sends one request. body, when non-nil, is encoded as JSON; out, when non-nil,
// receives the decoded 2xx response body.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "client."+op,
		attribute.String(otelhelper.HTTPMethodKey, method),
		attribute.String(otelhelper.HTTPPathKey, path),
	)
	defer span.End()

	err := c.roundTrip(ctx, op, method, path, body, out)
	if err != nil {
		otelhelper.SetError(span, err, attribute.Int(otelhelper.HTTPStatusKey, StatusCode(err)))
	}

	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request body: %w", op, err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return &TransportError{Op: op, Method: method, Path: path, Err: fmt.Errorf("%w: %w", ErrTransport, err)}
	}

	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	req.Header.Set("Accept", contentTypeJSON+", "+contentTypeProblem)

	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	c.logger.DebugContext(ctx, "Sending request", "op", op, "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Method: method, Path: path, Err: fmt.Errorf("%w: %w", ErrTransport, err)}
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.DebugContext(ctx, "Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		c.logger.DebugContext(ctx, "Request failed", "op", op, "status", resp.StatusCode)

		return newStatusError(op, method, path, resp.StatusCode, data)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %w", ErrTransport, err)}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{
			Op:         op,
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    "malformed response body",
			Err:        fmt.Errorf("%w: %w", ErrTransport, err),
		}
	}

	return nil
}

func workflowPath(id string) string {
	return "/workflows/" + url.PathEscape(id)
}
