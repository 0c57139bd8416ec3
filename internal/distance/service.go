package distance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/i474232898/pin-forecast/internal/apperr"
	"github.com/i474232898/pin-forecast/internal/common"
	"github.com/i474232898/pin-forecast/internal/geo"
	"github.com/i474232898/pin-forecast/internal/metrics"
	"github.com/i474232898/pin-forecast/internal/schema"
	"github.com/i474232898/pin-forecast/internal/upstream"
)

var (
	probeOrigin      = geo.Coordinate{Lat: 51.5074, Lng: -0.1278}
	probeDestination = geo.Coordinate{Lat: 51.4545, Lng: -0.9781}
)

// Service turns an origin/destination pair into a canonical Result.
type Service struct {
	log     *slog.Logger
	fetcher MatrixFetcher
	apiKey  string
	metrics *metrics.Metrics
}

// NewService creates a new Service.
func NewService(log *slog.Logger, fetcher MatrixFetcher, apiKey string, m *metrics.Metrics) *Service {
	return &Service{
		log:     log,
		fetcher: fetcher,
		apiKey:  apiKey,
		metrics: m,
	}
}

// ProviderName returns the name of the configured routing provider.
func (s *Service) ProviderName() string {
	return s.fetcher.Name()
}

// GetDistance validates both points and asks the routing provider for the
// driving duration between them. A rejected credential is answered with a
// geometric estimate marked IsMockData; any other provider failure is
// returned as an upstream error, and a missing route as a route-unavailable
// error.
func (s *Service) GetDistance(ctx context.Context, origin, destination geo.Input) (*Result, error) {
	const op = "distance.GetDistance"

	o, details := origin.Check("origin.")
	d, destDetails := destination.Check("destination.")
	details = append(details, destDetails...)
	if len(details) > 0 {
		return nil, apperr.Validation("invalid coordinates", details...)
	}

	if common.IsPlaceholder(s.apiKey) {
		return nil, apperr.Configuration("routing provider API key is not configured").WithOp(op)
	}

	matrix, err := s.fetcher.FetchMatrix(ctx, o, d)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.IsAuthFailure() {
			s.log.Warn("routing provider rejected credentials, serving estimate",
				"provider", s.fetcher.Name(),
				"origin", o.String(),
				"destination", d.String(),
				"error", err,
			)
			s.metrics.Fallbacks.WithLabelValues("distance", "auth").Inc()
			return s.checked(op, MockResult(o, d))
		}
		return nil, upstreamError(err).WithOp(op)
	}

	el, err := singleElement(matrix)
	if err != nil {
		return nil, apperr.Upstream(0, "routing provider returned an unexpected response", err).WithOp(op)
	}

	if el.Status != StatusOK || el.Duration == nil {
		reason := el.Status
		if reason == StatusOK {
			reason = "no duration"
		}
		msg := fmt.Sprintf("no drivable route between the selected points (%s)", reason)
		if el.ErrorMessage != "" {
			msg += ": " + el.ErrorMessage
		}
		return nil, apperr.RouteUnavailable(msg).WithOp(op)
	}

	return s.checked(op, &Result{
		Rows: []Row{{
			Elements: []Element{{
				Status:   StatusOK,
				Duration: el.Duration,
				Distance: el.Distance,
			}},
		}},
	})
}

// Probe requests a short fixed route to check the provider is reachable.
func (s *Service) Probe(ctx context.Context) error {
	if common.IsPlaceholder(s.apiKey) {
		return apperr.Configuration("routing provider API key is not configured").WithOp("distance.Probe")
	}
	if _, err := s.fetcher.FetchMatrix(ctx, probeOrigin, probeDestination); err != nil {
		return fmt.Errorf("probe %s: %w", s.fetcher.Name(), err)
	}
	return nil
}

func (s *Service) checked(op string, res *Result) (*Result, error) {
	if err := schema.ValidateValue(schema.DistanceResult, res); err != nil {
		s.log.Error("distance result violates canonical schema",
			"kind", apperr.KindInternal.String(),
			"provider", s.fetcher.Name(),
			"mock", res.IsMockData,
			"error", err,
		)
		return nil, apperr.Internal("distance response failed validation", err).WithOp(op)
	}
	return res, nil
}

func singleElement(m *Matrix) (Element, error) {
	if m == nil {
		return Element{}, errors.New("empty matrix")
	}
	if len(m.Rows) != 1 {
		return Element{}, fmt.Errorf("expected 1 row, got %d", len(m.Rows))
	}
	if n := len(m.Rows[0].Elements); n != 1 {
		return Element{}, fmt.Errorf("expected 1 element, got %d", n)
	}
	return m.Rows[0].Elements[0], nil
}

// upstreamError classifies a provider failure that has no fallback.
func upstreamError(err error) *apperr.Error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return apperr.Upstream(pe.StatusCode, pe.Error(), err)
	}

	msg := "routing provider request failed"
	switch upstream.Reason(err) {
	case "timeout":
		msg = "routing provider timed out"
	case "circuit_open":
		msg = "routing provider is temporarily unavailable"
	case "malformed":
		msg = "routing provider returned an unexpected response"
	}
	return apperr.Upstream(0, msg, err)
}
