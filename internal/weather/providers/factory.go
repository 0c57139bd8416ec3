package providers

import (
	"fmt"
	"net/http"

	"github.com/i474232898/pin-forecast/internal/metrics"
	"github.com/i474232898/pin-forecast/internal/upstream"
	"github.com/i474232898/pin-forecast/internal/weather"
)

// ProviderType selects a weather upstream.
type ProviderType string

const (
	// ProviderTypeOpenWeather is OpenWeatherMap (API key required).
	ProviderTypeOpenWeather ProviderType = "openweather"
	// ProviderTypeOpenMeteo is Open-Meteo (no API key).
	ProviderTypeOpenMeteo ProviderType = "openmeteo"
	// ProviderTypeWeatherAPI is WeatherAPI.com (API key required).
	ProviderTypeWeatherAPI ProviderType = "weatherapi"
)

// ProviderConfig holds configuration for creating a weather upstream.
type ProviderConfig struct {
	Type       ProviderType
	APIKey     string // checked by the service, not here, so a missing key surfaces per request
	BaseURL    string // empty means the provider's public endpoint
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
}

// NewUpstream creates the weather upstream named by config.Type.
func NewUpstream(config ProviderConfig) (weather.Upstream, error) {
	client := upstream.NewClient(string(config.Type), config.HTTPClient, config.Metrics)

	switch config.Type {
	case ProviderTypeOpenWeather:
		return NewOpenWeatherProvider(client, config.APIKey, config.BaseURL), nil
	case ProviderTypeOpenMeteo:
		return NewOpenMeteoProvider(client, config.BaseURL), nil
	case ProviderTypeWeatherAPI:
		return NewWeatherAPIProvider(client, config.APIKey, config.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported weather provider type: %q", config.Type)
	}
}
