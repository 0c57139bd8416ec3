package weather

import (
	"math"
	"math/rand/v2"

	"github.com/i474232898/pin-forecast/internal/common"
	"github.com/i474232898/pin-forecast/internal/geo"
)

const (
	mockBaseTemp  = 20.0
	mockAmplitude = 10.0
	mockScale     = 0.01
	mockDrift     = 0.5
)

var (
	conditionOvercast  = Condition{Icon: "04d", Description: "overcast clouds"}
	conditionClear     = Condition{Icon: "01d", Description: "clear sky"}
	conditionFewClouds = Condition{Icon: "02d", Description: "few clouds"}
)

// MockSnapshot synthesizes a plausible snapshot for c. The result depends only
// on the coordinate: the high/low jitter comes from a generator seeded with it.
func MockSnapshot(c geo.Coordinate) *Snapshot {
	osc := mockAmplitude * math.Sin(mockPhase(c))
	osc = math.Max(-mockAmplitude, math.Min(mockAmplitude, osc))
	temp := common.Round1(mockBaseTemp + osc)

	rng := rand.New(rand.NewPCG(math.Float64bits(c.Lat), math.Float64bits(c.Lng)))

	daily := make([]DayForecast, ForecastDays)
	for i := range daily {
		base := temp + mockDrift*float64(i)
		daily[i] = DayForecast{
			Temp: TempRange{
				Min: common.Round1(base - (2 + 3*rng.Float64())),
				Max: common.Round1(base + (2 + 3*rng.Float64())),
			},
			Weather: []Condition{mockCondition(base)},
		}
	}

	return &Snapshot{
		Current: CurrentWeather{
			Temp:    temp,
			Weather: []Condition{mockCondition(temp)},
		},
		Daily:      daily,
		IsMockData: true,
	}
}

// mockPhase folds lat*lng into one period. Coordinates are not range checked,
// so the product can overflow to Inf, which has no sine.
func mockPhase(c geo.Coordinate) float64 {
	x := math.Mod(c.Lat*c.Lng*mockScale, 2*math.Pi)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

func mockCondition(temp float64) Condition {
	switch {
	case temp < 15:
		return conditionOvercast
	case temp > 25:
		return conditionClear
	default:
		return conditionFewClouds
	}
}
