package weather

import (
	"time"
)

// Units maps a field name (e.g. "temperature_2m") to its unit label (e.g. "°C").
type Units map[string]string

// CurrentConditions is the single-instant sample of a forecast response.
type CurrentConditions struct {
	Time                time.Time `json:"time"`
	Temperature         float64   `json:"temperature"`
	ApparentTemperature float64   `json:"apparentTemperature"`
	Humidity            float64   `json:"humidityPercent"`
	WindSpeed           float64   `json:"windSpeed"`
	WeatherCode         int       `json:"weatherCode"`
}

// HourlySeries holds index-aligned parallel arrays; all slices have equal length.
type HourlySeries struct {
	Time        []time.Time
	Temperature []float64
	WeatherCode []int
}

// Len returns the number of hourly entries.
func (h HourlySeries) Len() int {
	return len(h.Time)
}

// DailySeries holds index-aligned parallel arrays; all slices have equal length.
// Sunrise and Sunset are nil when the response did not carry them.
type DailySeries struct {
	Time        []time.Time
	WeatherCode []int
	TempMax     []float64
	TempMin     []float64
	Sunrise     []time.Time
	Sunset      []time.Time
}

// Len returns the number of daily entries.
func (d DailySeries) Len() int {
	return len(d.Time)
}

// RawForecast is one decoded forecast response. It is owned by a single
// request cycle and never mutated after decoding.
type RawForecast struct {
	Latitude         float64
	Longitude        float64
	Timezone         string
	UTCOffsetSeconds int

	Current      *CurrentConditions
	CurrentUnits Units

	Hourly      HourlySeries
	HourlyUnits Units

	Daily      DailySeries
	DailyUnits Units
}

// HourlySample is one display-facing hour of the 24-hour strip.
type HourlySample struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	WeatherCode int       `json:"weatherCode"`
	Condition   CodeEntry `json:"condition"`
}

// DailySample is one display-facing day.
type DailySample struct {
	Time        time.Time  `json:"time"`
	WeatherCode int        `json:"weatherCode"`
	TempMax     float64    `json:"tempMax"`
	TempMin     float64    `json:"tempMin"`
	Sunrise     *time.Time `json:"sunrise,omitempty"`
	Sunset      *time.Time `json:"sunset,omitempty"`
	Condition   CodeEntry  `json:"condition"`
}
