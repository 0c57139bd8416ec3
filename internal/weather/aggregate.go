package weather

import (
	"time"

	"github.com/i474232898/pin-forecast/internal/common"
)

// backfillDelta is applied around the current temperature for days without samples.
const backfillDelta = 5.0

type dayBucket struct {
	samples int
	min     float64
	max     float64

	// icons in order of first appearance, with their counts and first condition.
	order  []string
	counts map[string]int
	conds  map[string]Condition
}

func (b *dayBucket) add(s Sample) {
	if b.samples == 0 || s.TemperatureC < b.min {
		b.min = s.TemperatureC
	}
	if b.samples == 0 || s.TemperatureC > b.max {
		b.max = s.TemperatureC
	}
	b.samples++

	icon := s.Condition.Icon
	if icon == "" {
		return
	}
	if b.counts == nil {
		b.counts = make(map[string]int)
		b.conds = make(map[string]Condition)
	}
	if _, seen := b.counts[icon]; !seen {
		b.order = append(b.order, icon)
		b.conds[icon] = s.Condition
	}
	b.counts[icon]++
}

// representative returns the most frequent condition. Ties go to the icon
// seen first.
func (b *dayBucket) representative() (Condition, bool) {
	best := ""
	bestCount := 0
	for _, icon := range b.order {
		if b.counts[icon] > bestCount {
			best = icon
			bestCount = b.counts[icon]
		}
	}
	if best == "" {
		return Condition{}, false
	}
	return b.conds[best], true
}

// Normalize reshapes a provider's current reading and forecast window into a
// Snapshot. Samples are grouped by local calendar day at the forecast's UTC
// offset, starting at local midnight of the day containing now. Samples
// outside the ForecastDays window are dropped and days without samples are
// backfilled from the current reading.
func Normalize(cur Current, fc Forecast, now time.Time) *Snapshot {
	loc := time.FixedZone("", int(fc.UTCOffset/time.Second))
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	buckets := make([]dayBucket, ForecastDays)
	for _, s := range fc.Samples {
		idx := dayIndex(start, s.Time)
		if idx < 0 || idx >= ForecastDays {
			continue
		}
		buckets[idx].add(s)
	}

	conditions := make([]Condition, len(cur.Conditions))
	copy(conditions, cur.Conditions)

	var fallback []Condition
	if len(conditions) > 0 {
		fallback = conditions[:1]
	}

	daily := make([]DayForecast, ForecastDays)
	for i := range buckets {
		b := &buckets[i]
		if b.samples == 0 {
			daily[i] = DayForecast{
				Temp: TempRange{
					Min: common.Round1(cur.TemperatureC - backfillDelta),
					Max: common.Round1(cur.TemperatureC + backfillDelta),
				},
				Weather: fallback,
			}
			continue
		}

		day := DayForecast{
			Temp:    TempRange{Min: common.Round1(b.min), Max: common.Round1(b.max)},
			Weather: fallback,
		}
		if c, ok := b.representative(); ok {
			day.Weather = []Condition{c}
		}
		daily[i] = day
	}

	return &Snapshot{
		Current: CurrentWeather{
			Temp:    cur.TemperatureC,
			Weather: conditions,
		},
		Daily: daily,
	}
}

// dayIndex returns the number of whole days between start and t. The zone is
// fixed so every day is exactly 24 hours long.
func dayIndex(start, t time.Time) int {
	if t.Before(start) {
		return -1
	}
	return int(t.Sub(start) / (24 * time.Hour))
}
