// Package upstream is the HTTP transport shared by every provider adapter.
// Requests go through a circuit breaker and are never retried.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/pin-forecast/internal/metrics"
	"github.com/i474232898/pin-forecast/internal/schema"
)

const maxBodyBytes = 4 << 20

var (
	// ErrCircuitOpen is returned while the breaker rejects calls to a failing upstream.
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrMalformedPayload is returned when a reply is not JSON or does not match its schema.
	ErrMalformedPayload = errors.New("malformed upstream payload")

	errNoHTTPClient = errors.New("http client not configured")
)

// secretParams are redacted from URLs that end up in error messages.
var secretParams = []string{"key", "appid", "signature"}

// StatusError is returned for a non-2xx upstream reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// IsAuthFailure reports whether err is a 401 or 403 reply.
func IsAuthFailure(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}

// Client issues GET requests to one upstream provider.
type Client struct {
	name    string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

type reply struct {
	status int
	body   []byte
}

// NewClient creates a client for the named provider. The breaker opens after
// repeated transport failures, 429s or 5xx replies; other 4xx replies never trip it.
func NewClient(name string, httpClient *http.Client, m *metrics.Metrics) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		name:    name,
		http:    httpClient,
		circuit: cb,
		metrics: m,
	}
}

// Name returns the provider name used for metrics.
func (c *Client) Name() string {
	return c.name
}

// Get fetches rawURL and returns the body of a 2xx reply.
func (c *Client) Get(ctx context.Context, rawURL string) (_ []byte, err error) {
	if c.http == nil {
		return nil, errNoHTTPClient
	}

	outcome := "success"
	start := time.Now()
	defer func() {
		c.metrics.UpstreamSeconds.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
		if err != nil && outcome == "success" {
			outcome = "transport_error"
		}
		c.metrics.UpstreamRequests.WithLabelValues(c.name, outcome).Inc()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.http.Do(req)
		if execErr != nil {
			return nil, redact(execErr)
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if readErr != nil {
			return nil, fmt.Errorf("read response body: %w", readErr)
		}

		// Rate limiting and server errors count against the breaker.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		return reply{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "circuit_open"
			return nil, fmt.Errorf("%s: %w", c.name, ErrCircuitOpen)
		}
		var se *StatusError
		if errors.As(err, &se) {
			outcome = "http_error"
		}
		return nil, err
	}

	r, ok := result.(reply)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	if r.status < 200 || r.status >= 300 {
		outcome = "http_error"
		return nil, &StatusError{StatusCode: r.status, Body: string(r.body)}
	}

	return r.body, nil
}

// GetJSON fetches rawURL, validates the reply against the named schema and
// decodes it into out.
func (c *Client) GetJSON(ctx context.Context, rawURL, schemaName string, out any) error {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}

	if err := schema.ValidateJSON(schemaName, body); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(c.name, "malformed").Inc()
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrMalformedPayload, err)
	}

	return nil
}

func redact(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, parseErr := url.Parse(ue.URL)
	if parseErr != nil {
		return err
	}
	q := u.Query()
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	ue.URL = u.String()
	return err
}

// Reason classifies a failed call into a short label for logs and metrics.
func Reason(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case IsAuthFailure(err):
		return "auth"
	case errors.As(err, &se):
		return "http_status"
	default:
		return "transport"
	}
}
