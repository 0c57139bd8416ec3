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

const openWeatherBaseURL = "https://api.openweathermap.org"

// OpenWeatherProvider implements weather.Upstream for OpenWeatherMap. It uses
// the current weather endpoint and the 5 day / 3 hour forecast.
type OpenWeatherProvider struct {
	client  *upstream.Client
	apiKey  string
	baseURL string
}

func NewOpenWeatherProvider(client *upstream.Client, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = openWeatherBaseURL
	}
	return &OpenWeatherProvider{
		client:  client,
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return "openweather"
}

func (p *OpenWeatherProvider) RequiresKey() bool {
	return true
}

type owCondition struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, c geo.Coordinate) (weather.Current, error) {
	var payload struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []owCondition `json:"weather"`
	}

	if err := p.client.GetJSON(ctx, p.url("/data/2.5/weather", c), schema.OpenWeatherCurrent, &payload); err != nil {
		return weather.Current{}, fmt.Errorf("openweather current: %w", err)
	}

	conds := make([]weather.Condition, 0, len(payload.Weather))
	for _, w := range payload.Weather {
		conds = append(conds, weather.Condition{Icon: w.Icon, Description: w.Description})
	}

	return weather.Current{
		TemperatureC: payload.Main.Temp,
		Conditions:   conds,
	}, nil
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, c geo.Coordinate) (weather.Forecast, error) {
	var payload struct {
		City struct {
			Timezone int `json:"timezone"`
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Weather []owCondition `json:"weather"`
		} `json:"list"`
	}

	if err := p.client.GetJSON(ctx, p.url("/data/2.5/forecast", c), schema.OpenWeatherForecast, &payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("openweather forecast: %w", err)
	}

	samples := make([]weather.Sample, 0, len(payload.List))
	for _, item := range payload.List {
		// Only the primary condition of each 3-hour slot counts.
		w := item.Weather[0]
		samples = append(samples, weather.Sample{
			Time:         time.Unix(item.Dt, 0).UTC(),
			TemperatureC: item.Main.Temp,
			Condition:    weather.Condition{Icon: w.Icon, Description: w.Description},
		})
	}

	return weather.Forecast{
		UTCOffset: time.Duration(payload.City.Timezone) * time.Second,
		Samples:   samples,
	}, nil
}

func (p *OpenWeatherProvider) url(path string, c geo.Coordinate) string {
	values := url.Values{}
	latLon(values, "lat", "lon", c)
	values.Set("units", "metric")
	values.Set("appid", p.apiKey)
	return endpoint(p.baseURL, path, values)
}
