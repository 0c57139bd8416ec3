package upstream_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/pin-forecast/internal/metrics"
	"github.com/i474232898/pin-forecast/internal/schema"
	"github.com/i474232898/pin-forecast/internal/upstream"
)

func newClient(t *testing.T) (*upstream.Client, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return upstream.NewClient("test", &http.Client{Timeout: 2 * time.Second}, m), m
}

func TestGetJSON(t *testing.T) {
	t.Run("valid payload is decoded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			_, _ = w.Write([]byte(`{"current_weather":{"temperature":4.5,"weathercode":3}}`))
		}))
		defer srv.Close()

		c, m := newClient(t)
		var out struct {
			CurrentWeather struct {
				Temperature float64 `json:"temperature"`
			} `json:"current_weather"`
		}

		err := c.GetJSON(context.Background(), srv.URL, schema.OpenMeteoCurrent, &out)

		require.NoError(t, err)
		assert.Equal(t, 4.5, out.CurrentWeather.Temperature)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("test", "success")))
	})

	t.Run("schema violation is malformed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"current_weather":{"temperature":"warm"}}`))
		}))
		defer srv.Close()

		c, m := newClient(t)
		var out map[string]any

		err := c.GetJSON(context.Background(), srv.URL, schema.OpenMeteoCurrent, &out)

		require.ErrorIs(t, err, upstream.ErrMalformedPayload)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("test", "malformed")))
	})

	t.Run("non json body is malformed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
		}))
		defer srv.Close()

		c, _ := newClient(t)
		var out map[string]any

		err := c.GetJSON(context.Background(), srv.URL, schema.OpenMeteoCurrent, &out)

		assert.ErrorIs(t, err, upstream.ErrMalformedPayload)
	})
}

func TestGetStatusErrors(t *testing.T) {
	t.Run("auth failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
		}))
		defer srv.Close()

		c, m := newClient(t)

		_, err := c.Get(context.Background(), srv.URL)

		var se *upstream.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
		assert.Contains(t, se.Body, "Invalid API key")
		assert.True(t, upstream.IsAuthFailure(err))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("test", "http_error")))
	})

	t.Run("server error is not an auth failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c, _ := newClient(t)

		_, err := c.Get(context.Background(), srv.URL)

		var se *upstream.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadGateway, se.StatusCode)
		assert.False(t, upstream.IsAuthFailure(err))
	})

	t.Run("plain errors are not auth failures", func(t *testing.T) {
		assert.False(t, upstream.IsAuthFailure(errors.New("boom")))
	})
}

func TestNoRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := newClient(t)

	_, err := c.Get(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCircuitBreaker(t *testing.T) {
	t.Run("opens after consecutive server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c, _ := newClient(t)

		// gobreaker's default ReadyToTrip opens after more than 5 consecutive failures.
		for i := 0; i < 6; i++ {
			_, err := c.Get(context.Background(), srv.URL)
			require.Error(t, err)
		}

		_, err := c.Get(context.Background(), srv.URL)

		assert.ErrorIs(t, err, upstream.ErrCircuitOpen)
		assert.Equal(t, int32(6), calls.Load())
	})

	t.Run("client errors never open it", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		c, _ := newClient(t)

		for i := 0; i < 10; i++ {
			_, err := c.Get(context.Background(), srv.URL)
			require.True(t, upstream.IsAuthFailure(err))
		}

		assert.Equal(t, int32(10), calls.Load())
	})
}

func TestTransportErrorRedactsSecrets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c, _ := newClient(t)

	_, err := c.Get(context.Background(), addr+"/data?appid=s3cret&lat=1")

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cret")
	assert.Contains(t, err.Error(), "REDACTED")
}

func TestReason(t *testing.T) {
	cases := map[string]error{
		"none":         nil,
		"circuit_open": fmt.Errorf("openweather: %w", upstream.ErrCircuitOpen),
		"malformed":    fmt.Errorf("%w: bad", upstream.ErrMalformedPayload),
		"timeout":      context.DeadlineExceeded,
		"auth":         &upstream.StatusError{StatusCode: http.StatusForbidden},
		"http_status":  &upstream.StatusError{StatusCode: http.StatusTooManyRequests},
		"transport":    assert.AnError,
	}

	for want, err := range cases {
		t.Run(want, func(t *testing.T) {
			assert.Equal(t, want, upstream.Reason(err))
		})
	}
}
