package weather

import (
	"time"
)

// ForecastDays is the number of local calendar days in every snapshot, today included.
const ForecastDays = 4

// Condition is one weather condition in the canonical icon vocabulary
// (OpenWeather icon codes such as "01d" or "10n").
type Condition struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// CurrentWeather is the "now" part of a snapshot.
type CurrentWeather struct {
	Temp    float64     `json:"temp"`
	Weather []Condition `json:"weather"`
}

// TempRange holds a day's low and high in degrees Celsius.
type TempRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DayForecast is one local calendar day.
type DayForecast struct {
	Temp    TempRange   `json:"temp"`
	Weather []Condition `json:"weather"`
}

// Snapshot is the canonical weather response: current conditions plus
// exactly ForecastDays daily entries, index 0 being today at the location.
type Snapshot struct {
	Current    CurrentWeather `json:"current"`
	Daily      []DayForecast  `json:"daily"`
	IsMockData bool           `json:"isMockData,omitempty"`
}

// Current is a provider's current-conditions reading.
type Current struct {
	TemperatureC float64
	Conditions   []Condition
}

// Sample is one forecast data point.
type Sample struct {
	Time         time.Time // always UTC
	TemperatureC float64
	Condition    Condition
}

// Forecast is a provider's forecast window. UTCOffset is the location's
// offset as reported by the provider.
type Forecast struct {
	UTCOffset time.Duration
	Samples   []Sample
}
