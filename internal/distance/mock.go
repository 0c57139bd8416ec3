package distance

import (
	"fmt"
	"math"

	"github.com/i474232898/pin-forecast/internal/geo"
)

// roadFactor approximates how much longer a road trip is than the great circle.
const roadFactor = 1.3

// Average speeds in km/h by road distance band.
const (
	citySpeed    = 30.0
	mixedSpeed   = 60.0
	highwaySpeed = 100.0
)

// MockResult estimates the driving time between two points from geometry alone.
func MockResult(origin, destination geo.Coordinate) *Result {
	km := geo.Haversine(origin, destination) * roadFactor
	minutes := EstimateMinutes(km)

	return &Result{
		Rows: []Row{{
			Elements: []Element{{
				Status: StatusOK,
				Duration: &Measure{
					Text:  FormatDuration(minutes),
					Value: int64(minutes) * 60,
				},
				Distance: &Measure{
					Text:  fmt.Sprintf("%.1f km", km),
					Value: int64(math.Round(km * 1000)),
				},
			}},
		}},
		IsMockData: true,
	}
}

// SpeedFor returns the assumed average speed for a road distance in km.
func SpeedFor(roadKm float64) float64 {
	switch {
	case roadKm < 5:
		return citySpeed
	case roadKm < 20:
		return mixedSpeed
	default:
		return highwaySpeed
	}
}

// EstimateMinutes returns the travel time for a road distance, never less than a minute.
func EstimateMinutes(roadKm float64) int {
	minutes := int(math.Round(roadKm / SpeedFor(roadKm) * 60))
	return max(1, minutes)
}

// FormatDuration renders minutes as "N mins", "H hour(s)" or "H hour(s) M mins".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d mins", minutes)
	}

	h, m := minutes/60, minutes%60
	unit := "hours"
	if h == 1 {
		unit = "hour"
	}
	if m == 0 {
		return fmt.Sprintf("%d %s", h, unit)
	}
	return fmt.Sprintf("%d %s %d mins", h, unit, m)
}
