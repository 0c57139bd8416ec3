package weather

import (
	"context"

	"github.com/i474232898/pin-forecast/internal/geo"
)

// Upstream abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Upstream interface {
	Name() string
	// RequiresKey reports whether the provider needs an API credential.
	RequiresKey() bool
	FetchCurrent(ctx context.Context, c geo.Coordinate) (Current, error)
	FetchForecast(ctx context.Context, c geo.Coordinate) (Forecast, error)
}
