// Package backend is the HTTP client for the job-management REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/service"
)

// IdempotencyHeader carries a per-submission key on mutating requests the
// backend may receive twice.
const IdempotencyHeader = "Idempotency-Key"

// Client implements service.Backend over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	newKey     func() string
	retry      service.RetryOptions
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client, e.g. one with a cookie jar
// and the offline transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetry sets the retry behavior for idempotent reads.
func WithRetry(opts service.RetryOptions) Option {
	return func(c *Client) {
		c.retry = opts
	}
}

// WithKeyFunc overrides how idempotency keys are generated.
func WithKeyFunc(fn func() string) Option {
	return func(c *Client) {
		c.newKey = fn
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: backend url: %v", common.ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: backend url %q must be http or https", common.ErrInvalidConfig, baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		newKey:     func() string { return uuid.NewString() },
		retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// envelope is the error shape shared by every endpoint.
type envelope struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// get performs an idempotent read with retries on transient failures.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return common.WithRetry(ctx, func() error {
		return c.do(ctx, http.MethodGet, path, query, nil, out, nil)
	}, c.retry)
}

// send performs a mutating request once.
func (c *Client) send(ctx context.Context, method, path string, body, out any, headers http.Header) error {
	return c.do(ctx, method, path, nil, body, out, headers)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, headers http.Header) error {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return common.Permanent(fmt.Errorf("failed to encode %s body: %w", path, err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return common.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return common.Permanent(ctxErr)
		}
		return fmt.Errorf("%w: %s %s: %w", common.ErrOffline, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s response: %w", common.ErrOffline, path, err)
	}

	slog.Debug("Backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return common.Permanent(fmt.Errorf("failed to decode %s response: %w", path, err))
	}
	return nil
}

// statusError maps a non-2xx response to the error taxonomy.
func statusError(status int, body []byte) error {
	var env envelope
	_ = json.Unmarshal(body, &env)
	apiErr := &service.APIError{Status: status, Message: env.Error}

	switch {
	case status == http.StatusUnauthorized:
		return common.Permanent(fmt.Errorf("%w: %w", common.ErrNotAuthenticated, apiErr))
	case status == http.StatusForbidden:
		return common.Permanent(fmt.Errorf("%w: %w", common.ErrForbidden, apiErr))
	case status == http.StatusNotFound:
		return common.Permanent(fmt.Errorf("%w: %w", common.ErrNotFound, apiErr))
	case status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable,
		status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %w", common.ErrServerError, apiErr)
	default:
		return common.Permanent(apiErr)
	}
}

// rejected converts a success=false body into an APIError.
func rejected(message string) error {
	return &service.APIError{Status: http.StatusOK, Message: message}
}

// IsRejected reports whether err came from the backend rather than transport.
func IsRejected(err error) bool {
	var apiErr *service.APIError
	return errors.As(err, &apiErr)
}

var _ service.Backend = (*Client)(nil)
