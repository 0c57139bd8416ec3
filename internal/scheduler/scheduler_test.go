package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/pin-forecast/internal/metrics"
)

type fakeProber struct {
	name  string
	err   error
	calls atomic.Int32
}

func (f *fakeProber) ProviderName() string { return f.name }

func (f *fakeProber) Probe(ctx context.Context) error {
	f.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		panic("probe without deadline")
	}
	return f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnce(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	healthy := &fakeProber{name: "openweather"}
	failing := &fakeProber{name: "google", err: assert.AnError}

	s := New(discard(), time.Minute, m, healthy, failing)
	s.RunOnce()

	assert.Equal(t, int32(1), healthy.calls.Load())
	assert.Equal(t, int32(1), failing.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamUp.WithLabelValues("openweather")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.UpstreamUp.WithLabelValues("google")))
}

func TestStartDisabled(t *testing.T) {
	p := &fakeProber{name: "openweather"}
	s := New(discard(), 0, metrics.NewMetrics(prometheus.NewRegistry()), p)

	require.NoError(t, s.Start())
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, p.calls.Load())
}

func TestStartRunsProbe(t *testing.T) {
	p := &fakeProber{name: "openweather"}
	s := New(discard(), time.Hour, metrics.NewMetrics(prometheus.NewRegistry()), p)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return p.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}
