package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/pin-forecast/internal/apperr"
	"github.com/i474232898/pin-forecast/internal/distance"
	"github.com/i474232898/pin-forecast/internal/geo"
	"github.com/i474232898/pin-forecast/internal/metrics"
	"github.com/i474232898/pin-forecast/internal/weather"
)

type fakeWeather struct {
	snap  *weather.Snapshot
	err   error
	calls int
	in    geo.Input
}

func (f *fakeWeather) GetWeather(ctx context.Context, in geo.Input) (*weather.Snapshot, error) {
	f.calls++
	f.in = in
	return f.snap, f.err
}

type fakeDistance struct {
	res         *distance.Result
	err         error
	calls       int
	origin, dst geo.Input
}

func (f *fakeDistance) GetDistance(ctx context.Context, origin, destination geo.Input) (*distance.Result, error) {
	f.calls++
	f.origin, f.dst = origin, destination
	return f.res, f.err
}

type fixture struct {
	weather  *fakeWeather
	distance *fakeDistance
	metrics  *metrics.Metrics
	deps     Deps
}

func newFixture() *fixture {
	reg := prometheus.NewRegistry()
	f := &fixture{
		weather:  &fakeWeather{},
		distance: &fakeDistance{},
		metrics:  metrics.NewMetrics(reg),
	}
	f.deps = Deps{
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Weather:  f.weather,
		Distance: f.distance,
		Metrics:  f.metrics,
		Gatherer: reg,
	}
	return f
}

func get(t *testing.T, d Deps, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := NewApp(d).Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeError(t *testing.T, body []byte) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

func TestHealth(t *testing.T) {
	resp, body := get(t, newFixture().deps, "/health")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","service":"pin-forecast"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestWeatherRoute(t *testing.T) {
	t.Run("passes query values through", func(t *testing.T) {
		f := newFixture()
		f.weather.snap = &weather.Snapshot{IsMockData: true}

		resp, body := get(t, f.deps, "/api/weather?lat=35.6762&lng=139.6503")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, geo.Pair("35.6762", "139.6503"), f.weather.in)
		assert.Contains(t, string(body), `"isMockData":true`)
	})

	t.Run("absent parameters reach the validator as empty", func(t *testing.T) {
		f := newFixture()
		f.weather.err = apperr.Validation("invalid coordinates", "lat is required", "lng is required")

		resp, body := get(t, f.deps, "/api/weather")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, geo.Pair("", ""), f.weather.in)
		e := decodeError(t, body)
		assert.Equal(t, "invalid coordinates", e.Error)
		assert.Equal(t, []string{"lat is required", "lng is required"}, e.Details)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RequestErrors.WithLabelValues("validation")))
	})

	t.Run("configuration errors are 400", func(t *testing.T) {
		f := newFixture()
		f.weather.err = apperr.Configuration("weather provider API key is not configured")

		resp, body := get(t, f.deps, "/api/weather?lat=1&lng=2")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"weather provider API key is not configured"}`, string(body))
	})
}

func TestDistanceRoute(t *testing.T) {
	t.Run("reads bracketed parameters", func(t *testing.T) {
		f := newFixture()
		f.distance.res = &distance.Result{Rows: []distance.Row{{Elements: []distance.Element{{Status: distance.StatusOK}}}}}

		resp, _ := get(t, f.deps, "/api/distance?origin%5Blat%5D=51.5&origin%5Blng%5D=-0.12&destination[lat]=51.45&destination[lng]=-0.97")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, geo.Pair("51.5", "-0.12"), f.distance.origin)
		assert.Equal(t, geo.Pair("51.45", "-0.97"), f.distance.dst)
	})

	t.Run("route unavailable", func(t *testing.T) {
		f := newFixture()
		f.distance.err = apperr.RouteUnavailable("no drivable route between the selected points (ZERO_RESULTS)")

		resp, body := get(t, f.deps, "/api/distance?origin[lat]=0&origin[lng]=0&destination[lat]=0&destination[lng]=1")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeError(t, body).Error, "ZERO_RESULTS")
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RequestErrors.WithLabelValues("route_unavailable")))
	})

	t.Run("validation through the real service", func(t *testing.T) {
		f := newFixture()
		svc := distance.NewService(f.deps.Log, &nopFetcher{}, "maps-key", f.metrics)
		f.deps.Distance = svc

		resp, body := get(t, f.deps, "/api/distance?origin[lat]=abc&origin[lng]=0&destination[lat]=0")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		e := decodeError(t, body)
		assert.Equal(t, []string{"origin.lat must be a finite number", "destination.lng is required"}, e.Details)
	})
}

type nopFetcher struct{}

func (nopFetcher) Name() string { return "nop" }

func (nopFetcher) FetchMatrix(ctx context.Context, origin, destination geo.Coordinate) (*distance.Matrix, error) {
	return nil, errors.New("not reached")
}

func TestErrorHandler(t *testing.T) {
	t.Run("unclassified errors do not leak", func(t *testing.T) {
		f := newFixture()
		f.weather.err = errors.New("dial tcp 10.0.0.1:443: secret detail")

		resp, body := get(t, f.deps, "/api/weather?lat=1&lng=2")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"internal error"}`, string(body))
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RequestErrors.WithLabelValues("internal")))
	})

	t.Run("panics are recovered", func(t *testing.T) {
		f := newFixture()
		f.deps.Weather = nil

		resp, body := get(t, f.deps, "/api/weather?lat=1&lng=2")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"internal error"}`, string(body))
	})

	t.Run("unknown routes keep their status", func(t *testing.T) {
		resp, _ := get(t, newFixture().deps, "/api/nope")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture()
	f.metrics.Fallbacks.WithLabelValues("weather", "timeout").Inc()

	resp, body := get(t, f.deps, "/metrics")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `pinforecast_fallbacks_total{reason="timeout",service="weather"} 1`)
}
