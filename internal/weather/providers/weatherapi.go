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
	weatherAPIBaseURL      = "https://api.weatherapi.com"
	weatherAPIForecastDays = 5

	// WeatherAPI reports local time without a zone, e.g. "2024-03-10 9:05".
	weatherAPILocaltimeLayout = "2006-1-2 15:04"
)

// WeatherAPIProvider implements weather.Upstream for WeatherAPI.com.
type WeatherAPIProvider struct {
	client  *upstream.Client
	apiKey  string
	baseURL string
}

func NewWeatherAPIProvider(client *upstream.Client, apiKey, baseURL string) *WeatherAPIProvider {
	if baseURL == "" {
		baseURL = weatherAPIBaseURL
	}
	return &WeatherAPIProvider{
		client:  client,
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return "weatherapi"
}

func (p *WeatherAPIProvider) RequiresKey() bool {
	return true
}

type waCondition struct {
	Text string `json:"text"`
}

func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, c geo.Coordinate) (weather.Current, error) {
	var payload struct {
		Current struct {
			TempC     float64     `json:"temp_c"`
			IsDay     *int        `json:"is_day"`
			Condition waCondition `json:"condition"`
		} `json:"current"`
	}

	if err := p.client.GetJSON(ctx, p.url("/v1/current.json", c, nil), schema.WeatherAPICurrent, &payload); err != nil {
		return weather.Current{}, fmt.Errorf("weatherapi current: %w", err)
	}

	cur := payload.Current
	return weather.Current{
		TemperatureC: cur.TempC,
		Conditions:   []weather.Condition{textCondition(cur.Condition.Text, isDay(cur.IsDay))},
	}, nil
}

func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, c geo.Coordinate) (weather.Forecast, error) {
	extra := url.Values{}
	extra.Set("days", fmt.Sprint(weatherAPIForecastDays))
	extra.Set("aqi", "no")
	extra.Set("alerts", "no")

	var payload struct {
		Location struct {
			LocaltimeEpoch int64  `json:"localtime_epoch"`
			Localtime      string `json:"localtime"`
		} `json:"location"`
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch int64       `json:"time_epoch"`
					TempC     float64     `json:"temp_c"`
					Condition waCondition `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := p.client.GetJSON(ctx, p.url("/v1/forecast.json", c, extra), schema.WeatherAPIForecast, &payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("weatherapi forecast: %w", err)
	}

	offset, err := localOffset(payload.Location.Localtime, payload.Location.LocaltimeEpoch)
	if err != nil {
		return weather.Forecast{}, fmt.Errorf("weatherapi forecast: %w: %v", upstream.ErrMalformedPayload, err)
	}

	var samples []weather.Sample
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			samples = append(samples, weather.Sample{
				Time:         time.Unix(h.TimeEpoch, 0).UTC(),
				TemperatureC: h.TempC,
				// Day icons only, so a condition spanning sunset is counted once per day.
				Condition:    textCondition(h.Condition.Text, true),
			})
		}
	}

	return weather.Forecast{
		UTCOffset: offset,
		Samples:   samples,
	}, nil
}

func (p *WeatherAPIProvider) url(path string, c geo.Coordinate, extra url.Values) string {
	values := url.Values{}
	for k, v := range extra {
		values[k] = v
	}
	values.Set("q", c.String())
	values.Set("key", p.apiKey)
	return endpoint(p.baseURL, path, values)
}

// localOffset derives the location's UTC offset from its wall-clock time and
// the matching epoch. The result is rounded to 15 minutes since localtime has
// no seconds.
func localOffset(localtime string, epoch int64) (time.Duration, error) {
	wall, err := time.Parse(weatherAPILocaltimeLayout, localtime)
	if err != nil {
		return 0, fmt.Errorf("parse localtime %q: %w", localtime, err)
	}
	return wall.Sub(time.Unix(epoch, 0).UTC()).Round(15 * time.Minute), nil
}

func isDay(v *int) bool {
	return v == nil || *v == 1
}
