package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/i474232898/pin-forecast/internal/geo"
	"github.com/i474232898/pin-forecast/internal/schema"
	"github.com/i474232898/pin-forecast/internal/upstream"
	"github.com/i474232898/pin-forecast/internal/weather"
)

const (
	openMeteoBaseURL      = "https://api.open-meteo.com"
	openMeteoForecastDays = 5
)

// OpenMeteoProvider implements weather.Upstream for Open-Meteo. No API key is needed.
type OpenMeteoProvider struct {
	client  *upstream.Client
	baseURL string
}

func NewOpenMeteoProvider(client *upstream.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = openMeteoBaseURL
	}
	return &OpenMeteoProvider{
		client:  client,
		baseURL: baseURL,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return "openmeteo"
}

func (p *OpenMeteoProvider) RequiresKey() bool {
	return false
}

func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, c geo.Coordinate) (weather.Current, error) {
	values := url.Values{}
	latLon(values, "latitude", "longitude", c)
	values.Set("current_weather", "true")

	var payload struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WeatherCode int     `json:"weathercode"`
			IsDay       *int    `json:"is_day"`
		} `json:"current_weather"`
	}

	u := endpoint(p.baseURL, "/v1/forecast", values)
	if err := p.client.GetJSON(ctx, u, schema.OpenMeteoCurrent, &payload); err != nil {
		return weather.Current{}, fmt.Errorf("openmeteo current: %w", err)
	}

	cw := payload.CurrentWeather
	day := cw.IsDay == nil || *cw.IsDay == 1

	return weather.Current{
		TemperatureC: cw.Temperature,
		Conditions:   []weather.Condition{wmoCondition(cw.WeatherCode, day)},
	}, nil
}

func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, c geo.Coordinate) (weather.Forecast, error) {
	values := url.Values{}
	latLon(values, "latitude", "longitude", c)
	values.Set("hourly", "temperature_2m,weathercode")
	values.Set("timeformat", "unixtime")
	values.Set("timezone", "auto")
	values.Set("forecast_days", fmt.Sprint(openMeteoForecastDays))

	var payload struct {
		UTCOffsetSeconds int `json:"utc_offset_seconds"`
		Hourly           struct {
			Time        []int64    `json:"time"`
			Temperature []*float64 `json:"temperature_2m"`
			WeatherCode []*int     `json:"weathercode"`
		} `json:"hourly"`
	}

	u := endpoint(p.baseURL, "/v1/forecast", values)
	if err := p.client.GetJSON(ctx, u, schema.OpenMeteoForecast, &payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("openmeteo forecast: %w", err)
	}

	h := payload.Hourly
	if len(h.Temperature) != len(h.Time) || len(h.WeatherCode) != len(h.Time) {
		return weather.Forecast{}, fmt.Errorf("openmeteo forecast: %w: hourly series lengths differ (%d/%d/%d)",
			upstream.ErrMalformedPayload, len(h.Time), len(h.Temperature), len(h.WeatherCode))
	}

	samples := make([]weather.Sample, 0, len(h.Time))
	for i, ts := range h.Time {
		// Trailing hours past the model horizon are null.
		if h.Temperature[i] == nil || h.WeatherCode[i] == nil {
			continue
		}
		samples = append(samples, weather.Sample{
			Time:         time.Unix(ts, 0).UTC(),
			TemperatureC: *h.Temperature[i],
			Condition:    wmoCondition(*h.WeatherCode[i], true),
		})
	}

	return weather.Forecast{
		UTCOffset: time.Duration(payload.UTCOffsetSeconds) * time.Second,
		Samples:   samples,
	}, nil
}
