// Package serviceclient holds the HTTP clients the services use to talk to
// each other: a base client carrying the shared request/retry policy, and a
// thin specialization per target service.
package serviceclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eli5/backend/internal/observability"
)

var (
	// ErrUnavailable indicates the target service stayed unreachable (or
	// kept failing with 5xx) after exhausting all retry attempts.
	ErrUnavailable = errors.New("service unavailable")
	// ErrTokenRejected indicates the auth service refused the forwarded
	// bearer token.
	ErrTokenRejected = errors.New("token rejected by auth service")
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
)

// Config parameterises a client for one target service.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// HTTPClient allows injecting a custom client in tests. If nil, a
	// client with the configured timeout is used.
	HTTPClient *http.Client
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
}

// Client is the shared request/retry policy applied uniformly to every
// outbound call, parameterised only by base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	logger     *slog.Logger
}

// NewClient constructs a client for the given target.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// do issues the request, retrying on connection errors, timeouts, and 5xx
// responses. Any response below 500 is returned as-is; the caller interprets
// the status. Exhausting all attempts yields ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path string, header http.Header, body []byte) (*http.Response, error) {
	endpoint := c.baseURL + path

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, err
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if body != nil && req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			observability.OutboundRequestsTotal.WithLabelValues(c.baseURL, "error").Inc()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !isRetryable(err) {
				return nil, err
			}
			c.logger.Warn("request attempt failed",
				"method", method, "url", endpoint, "attempt", attempt, "error", err)
			continue
		}
		observability.OutboundRequestsTotal.WithLabelValues(c.baseURL, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}

		c.logger.Warn("request attempt returned server error",
			"method", method, "url", endpoint, "attempt", attempt, "status", resp.StatusCode)
		resp.Body.Close()
	}

	return nil, fmt.Errorf("%w: %s", ErrUnavailable, c.baseURL)
}

// isRetryable reports whether a transport error is worth another attempt.
// Only connection and timeout failures qualify.
func isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		var opErr *net.OpError
		return errors.As(urlErr.Err, &opErr)
	}
	return false
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
