package weather

import (
	"fmt"
	"time"
)

// WindowSize is the number of hours in the hourly strip.
const WindowSize = 24

// HourPolicy decides which hourly entry counts as the current hour.
type HourPolicy int

const (
	// AtOrAfter selects the first entry with time >= now. This is the default.
	AtOrAfter HourPolicy = iota
	// After selects the first entry with time > now.
	After
)

func (p HourPolicy) String() string {
	switch p {
	case AtOrAfter:
		return "at-or-after"
	case After:
		return "after"
	default:
		return fmt.Sprintf("HourPolicy(%d)", int(p))
	}
}

// ParseHourPolicy parses the names returned by HourPolicy.String.
func ParseHourPolicy(s string) (HourPolicy, error) {
	switch s {
	case "", "at-or-after":
		return AtOrAfter, nil
	case "after":
		return After, nil
	default:
		return AtOrAfter, fmt.Errorf("unknown hour policy %q", s)
	}
}

func (p HourPolicy) matches(t, now time.Time) bool {
	if p == After {
		return t.After(now)
	}
	return !t.Before(now)
}

// CurrentHourIndex returns the index of the first timestamp matching policy.
// If none matches it returns 0.
func CurrentHourIndex(times []time.Time, now time.Time, policy HourPolicy) int {
	for i, t := range times {
		if policy.matches(t, now) {
			return i
		}
	}
	return 0
}

// Normalize windows the hourly series from the current hour and maps the
// daily series 1:1, using the AtOrAfter policy.
func Normalize(raw *RawForecast, now time.Time) ([]HourlySample, []DailySample) {
	return NormalizeWithPolicy(raw, now, AtOrAfter)
}

// NormalizeWithPolicy is Normalize with an explicit current-hour policy.
// Source order is kept as-is; timestamps are not re-sorted.
func NormalizeWithPolicy(raw *RawForecast, now time.Time, policy HourPolicy) ([]HourlySample, []DailySample) {
	if raw == nil {
		return []HourlySample{}, []DailySample{}
	}
	return normalizeHourly(raw.Hourly, now, policy), normalizeDaily(raw.Daily)
}

func normalizeHourly(h HourlySeries, now time.Time, policy HourPolicy) []HourlySample {
	n := min(len(h.Time), len(h.Temperature), len(h.WeatherCode))
	if n == 0 {
		return []HourlySample{}
	}

	start := CurrentHourIndex(h.Time[:n], now, policy)
	end := min(start+WindowSize, n)

	out := make([]HourlySample, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, HourlySample{
			Time:        h.Time[i],
			Temperature: h.Temperature[i],
			WeatherCode: h.WeatherCode[i],
			Condition:   Lookup(h.WeatherCode[i]),
		})
	}
	return out
}

func normalizeDaily(d DailySeries) []DailySample {
	out := make([]DailySample, 0, len(d.Time))
	for i, day := range d.Time {
		s := DailySample{
			Time:        day,
			WeatherCode: at(d.WeatherCode, i),
			TempMax:     at(d.TempMax, i),
			TempMin:     at(d.TempMin, i),
		}
		s.Condition = Lookup(s.WeatherCode)
		if i < len(d.Sunrise) {
			t := d.Sunrise[i]
			s.Sunrise = &t
		}
		if i < len(d.Sunset) {
			t := d.Sunset[i]
			s.Sunset = &t
		}
		out = append(out, s)
	}
	return out
}

// at returns s[i], or the zero value when s is shorter than the time axis.
func at[T any](s []T, i int) T {
	var zero T
	if i < len(s) {
		return s[i]
	}
	return zero
}
