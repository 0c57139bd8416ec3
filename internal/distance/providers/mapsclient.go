package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"googlemaps.github.io/maps"

	"github.com/i474232898/pin-forecast/internal/distance"
	"github.com/i474232898/pin-forecast/internal/geo"
	"github.com/i474232898/pin-forecast/internal/metrics"
	"github.com/i474232898/pin-forecast/internal/upstream"
)

const mapsSDKName = "googlemaps-sdk"

// DistanceMatrixAPI is the part of *maps.Client used by MapsSDKProvider.
type DistanceMatrixAPI interface {
	DistanceMatrix(ctx context.Context, r *maps.DistanceMatrixRequest) (*maps.DistanceMatrixResponse, error)
}

// MapsSDKProvider calls the Distance Matrix API through the official Google
// Maps client, which brings its own rate limiter. URL signing is not supported.
type MapsSDKProvider struct {
	api     DistanceMatrixAPI
	circuit *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

func NewMapsSDKProvider(api DistanceMatrixAPI, m *metrics.Metrics) *MapsSDKProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        mapsSDKName,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// Provider rejections are answers, not outages.
		IsSuccessful: func(err error) bool {
			var pe *distance.ProviderError
			return err == nil || errors.As(err, &pe)
		},
	})

	return &MapsSDKProvider{
		api:     api,
		circuit: cb,
		metrics: m,
	}
}

func (p *MapsSDKProvider) Name() string {
	return mapsSDKName
}

func (p *MapsSDKProvider) FetchMatrix(ctx context.Context, origin, destination geo.Coordinate) (_ *distance.Matrix, err error) {
	outcome := "success"
	start := time.Now()
	defer func() {
		p.metrics.UpstreamSeconds.WithLabelValues(mapsSDKName).Observe(time.Since(start).Seconds())
		if err != nil && outcome == "success" {
			outcome = "http_error"
		}
		p.metrics.UpstreamRequests.WithLabelValues(mapsSDKName, outcome).Inc()
	}()

	req := &maps.DistanceMatrixRequest{
		Origins:      []string{origin.String()},
		Destinations: []string{destination.String()},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
	}

	result, err := p.circuit.Execute(func() (interface{}, error) {
		resp, callErr := p.api.DistanceMatrix(ctx, req)
		if callErr != nil {
			return nil, sdkError(callErr)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "circuit_open"
			return nil, fmt.Errorf("%s: %w", mapsSDKName, upstream.ErrCircuitOpen)
		}
		var pe *distance.ProviderError
		if !errors.As(err, &pe) {
			outcome = "transport_error"
		}
		return nil, err
	}

	resp, ok := result.(*maps.DistanceMatrixResponse)
	if !ok || resp == nil {
		outcome = "malformed"
		return nil, fmt.Errorf("%s: %w: empty response", mapsSDKName, upstream.ErrMalformedPayload)
	}

	return toMatrix(resp), nil
}

func toMatrix(resp *maps.DistanceMatrixResponse) *distance.Matrix {
	m := &distance.Matrix{Status: distance.StatusOK}
	for _, r := range resp.Rows {
		row := distance.Row{}
		for _, el := range r.Elements {
			if el == nil {
				continue
			}
			e := distance.Element{Status: el.Status}
			if el.Status == distance.StatusOK {
				minutes := int(math.Round(el.Duration.Minutes()))
				e.Duration = &distance.Measure{
					Text:  distance.FormatDuration(max(1, minutes)),
					Value: int64(el.Duration / time.Second),
				}
				text := el.Distance.HumanReadable
				if text == "" {
					text = fmt.Sprintf("%.1f km", float64(el.Distance.Meters)/1000)
				}
				e.Distance = &distance.Measure{
					Text:  text,
					Value: int64(el.Distance.Meters),
				}
			}
			row.Elements = append(row.Elements, e)
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

// sdkError turns the client's "maps: STATUS - message" errors into a
// ProviderError. Anything else is a transport failure.
func sdkError(err error) error {
	msg, found := strings.CutPrefix(err.Error(), "maps: ")
	if !found {
		return fmt.Errorf("%s: %w", mapsSDKName, err)
	}
	status, detail, _ := strings.Cut(msg, " - ")
	if !isStatusCode(status) {
		return fmt.Errorf("%s: %w", mapsSDKName, err)
	}
	return &distance.ProviderError{Status: status, Message: detail}
}

func isStatusCode(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && r != '_' {
			return false
		}
	}
	return true
}
