// Package providers adapts third-party weather APIs to weather.Upstream.
package providers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/pin-forecast/internal/geo"
	"github.com/i474232898/pin-forecast/internal/weather"
)

// iconFor builds an OpenWeather-style icon code such as "10d" or "10n".
func iconFor(base string, day bool) string {
	if day {
		return base + "d"
	}
	return base + "n"
}

// wmoCondition maps a WMO weather interpretation code (used by Open-Meteo)
// to a canonical condition.
func wmoCondition(code int, day bool) weather.Condition {
	base, desc := "03", "unknown"
	switch {
	case code == 0:
		base, desc = "01", "clear sky"
	case code == 1:
		base, desc = "02", "mainly clear"
	case code == 2:
		base, desc = "03", "partly cloudy"
	case code == 3:
		base, desc = "04", "overcast clouds"
	case code == 45 || code == 48:
		base, desc = "50", "fog"
	case code >= 51 && code <= 57:
		base, desc = "09", "drizzle"
	case code >= 61 && code <= 65:
		base, desc = "10", "rain"
	case code == 66 || code == 67:
		base, desc = "13", "freezing rain"
	case code >= 71 && code <= 77:
		base, desc = "13", "snow"
	case code >= 80 && code <= 82:
		base, desc = "09", "rain showers"
	case code == 85 || code == 86:
		base, desc = "13", "snow showers"
	case code >= 95:
		base, desc = "11", "thunderstorm"
	}
	return weather.Condition{Icon: iconFor(base, day), Description: desc}
}

// textCondition maps a free-text condition (used by WeatherAPI) to a
// canonical condition. The original text, lowercased, is kept as the description.
func textCondition(text string, day bool) weather.Condition {
	base := "03"
	switch {
	case contains(text, "thunder") || contains(text, "storm"):
		base = "11"
	case contains(text, "snow") || contains(text, "sleet") || contains(text, "blizzard") || contains(text, "ice"):
		base = "13"
	case contains(text, "shower") || contains(text, "drizzle"):
		base = "09"
	case contains(text, "rain"):
		base = "10"
	case contains(text, "mist") || contains(text, "fog") || contains(text, "haze"):
		base = "50"
	case contains(text, "overcast"):
		base = "04"
	case contains(text, "partly"):
		base = "02"
	case contains(text, "cloud"):
		base = "03"
	case contains(text, "sunny") || contains(text, "clear"):
		base = "01"
	}

	desc := strings.ToLower(strings.TrimSpace(text))
	if desc == "" {
		desc = "unknown"
	}
	return weather.Condition{Icon: iconFor(base, day), Description: desc}
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// latLon sets the query parameters used by OpenWeather and Open-Meteo.
func latLon(values url.Values, latKey, lonKey string, c geo.Coordinate) {
	values.Set(latKey, formatFloat(c.Lat))
	values.Set(lonKey, formatFloat(c.Lng))
}

func endpoint(baseURL, path string, values url.Values) string {
	return strings.TrimRight(baseURL, "/") + path + "?" + values.Encode()
}
