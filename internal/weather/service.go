package weather

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/i474232898/pin-forecast/internal/apperr"
	"github.com/i474232898/pin-forecast/internal/common"
	"github.com/i474232898/pin-forecast/internal/geo"
	"github.com/i474232898/pin-forecast/internal/metrics"
	"github.com/i474232898/pin-forecast/internal/schema"
	"github.com/i474232898/pin-forecast/internal/upstream"
)

// probeCoordinate is the location used by Probe.
var probeCoordinate = geo.Coordinate{Lat: 51.5074, Lng: -0.1278}

// Service turns a coordinate into a canonical Snapshot using one upstream provider.
type Service struct {
	log      *slog.Logger
	upstream Upstream
	apiKey   string
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used to find "today" at the queried location.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new Service. apiKey is only checked when the upstream requires one.
func NewService(log *slog.Logger, up Upstream, apiKey string, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		log:      log,
		upstream: up,
		apiKey:   apiKey,
		metrics:  m,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProviderName returns the name of the configured upstream.
func (s *Service) ProviderName() string {
	return s.upstream.Name()
}

// GetWeather validates in, fetches current conditions and the forecast
// concurrently, and normalizes them. Any upstream failure is answered with
// synthetic data marked IsMockData.
func (s *Service) GetWeather(ctx context.Context, in geo.Input) (*Snapshot, error) {
	const op = "weather.GetWeather"

	coord, err := geo.Validate(in)
	if err != nil {
		return nil, err
	}

	if err := s.checkKey(); err != nil {
		return nil, err.WithOp(op)
	}

	var snap *Snapshot
	cur, fc, err := s.fetch(ctx, coord)
	if err != nil {
		reason := upstream.Reason(err)
		s.log.Warn("weather upstream failed, serving synthetic data",
			"provider", s.upstream.Name(),
			"reason", reason,
			"coordinate", coord.String(),
			"error", err,
		)
		s.metrics.Fallbacks.WithLabelValues("weather", reason).Inc()
		snap = MockSnapshot(coord)
	} else {
		snap = Normalize(cur, fc, s.now())
	}

	if err := checkSnapshot(snap); err != nil {
		s.log.Error("weather snapshot violates canonical schema",
			"kind", apperr.KindInternal.String(),
			"provider", s.upstream.Name(),
			"coordinate", coord.String(),
			"mock", snap.IsMockData,
			"error", err,
		)
		return nil, apperr.Internal("weather response failed validation", err).WithOp(op)
	}

	return snap, nil
}

// Probe fetches current conditions for a fixed location to check the upstream is reachable.
func (s *Service) Probe(ctx context.Context) error {
	if err := s.checkKey(); err != nil {
		return err.WithOp("weather.Probe")
	}
	if _, err := s.upstream.FetchCurrent(ctx, probeCoordinate); err != nil {
		return fmt.Errorf("probe %s: %w", s.upstream.Name(), err)
	}
	return nil
}

func (s *Service) checkKey() *apperr.Error {
	if s.upstream.RequiresKey() && common.IsPlaceholder(s.apiKey) {
		return apperr.Configuration(fmt.Sprintf("%s API key is not configured", s.upstream.Name()))
	}
	return nil
}

// fetch issues the current and forecast calls in parallel. If either fails
// the other is cancelled.
func (s *Service) fetch(ctx context.Context, c geo.Coordinate) (Current, Forecast, error) {
	var (
		cur Current
		fc  Forecast
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cur, err = s.upstream.FetchCurrent(gctx, c)
		if err != nil {
			return fmt.Errorf("fetch current: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		fc, err = s.upstream.FetchForecast(gctx, c)
		if err != nil {
			return fmt.Errorf("fetch forecast: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Current{}, Forecast{}, err
	}
	return cur, fc, nil
}

// checkSnapshot enforces the canonical contract on an assembled snapshot.
func checkSnapshot(snap *Snapshot) error {
	if err := schema.ValidateValue(schema.WeatherSnapshot, snap); err != nil {
		return err
	}
	for i, d := range snap.Daily {
		if d.Temp.Min > d.Temp.Max {
			return fmt.Errorf("daily[%d]: min %.1f exceeds max %.1f", i, d.Temp.Min, d.Temp.Max)
		}
	}
	return nil
}
