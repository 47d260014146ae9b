package dashboard

import (
	"fmt"
	"strconv"
	"time"

	"github.com/diginoron/imdb/internal/weather"
)

// Coordinates identify the place a dashboard shows.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Key returns a canonical string key for indexing views in stores.
func (c Coordinates) Key() string {
	return strconv.FormatFloat(c.Lat, 'f', 4, 64) + "," + strconv.FormatFloat(c.Lon, 'f', 4, 64)
}

// View is the complete display state produced by one request cycle.
// Views are never modified after they are built.
type View struct {
	ID         string      `json:"id"`
	Generation uint64      `json:"generation"`
	BuiltAt    time.Time   `json:"builtAt"` // always UTC
	Location   Coordinates `json:"location"`

	// Error is set when the forecast could not be fetched; nothing else
	// but the identity fields is populated then.
	Error string `json:"error,omitempty"`

	Title    string       `json:"title,omitempty"`
	Timezone string       `json:"timezone,omitempty"`
	Current  *CurrentView `json:"current,omitempty"`
	Hourly   []HourView   `json:"hourly"`
	Daily    []DayView    `json:"daily"`

	Narrative      string `json:"narrative,omitempty"`
	NarrativeError string `json:"narrativeError,omitempty"`
}

// CurrentView is the current-conditions panel.
type CurrentView struct {
	Temperature string `json:"temperature"`
	Description string `json:"description"`
	Glyph       string `json:"glyph"`
	FeelsLike   string `json:"feelsLike"`
	Humidity    string `json:"humidity"`
	Wind        string `json:"wind"`
}

// HourView is one cell of the 24-hour strip.
type HourView struct {
	Time        time.Time `json:"time"`
	Label       string    `json:"label"`
	Temperature string    `json:"temperature"`
	Description string    `json:"description"`
	Glyph       string    `json:"glyph"`
}

// DayView is one row of the daily list.
type DayView struct {
	Date        time.Time `json:"date"`
	Weekday     string    `json:"weekday"`
	Description string    `json:"description"`
	Glyph       string    `json:"glyph"`
	Low         string    `json:"low"`
	High        string    `json:"high"`
	Sunrise     string    `json:"sunrise,omitempty"`
	Sunset      string    `json:"sunset,omitempty"`
}

func degrees(x float64) string {
	return fmt.Sprintf("%d°", weather.Round(x))
}

func newCurrentView(raw *weather.RawForecast) *CurrentView {
	c := raw.Current
	if c == nil {
		return nil
	}
	code := weather.Lookup(c.WeatherCode)

	unit := raw.CurrentUnits["temperature_2m"]
	if unit == "" {
		unit = "°C"
	}
	wind := raw.CurrentUnits["wind_speed_10m"]
	if wind == "" {
		wind = "km/h"
	}

	return &CurrentView{
		Temperature: fmt.Sprintf("%d%s", weather.Round(c.Temperature), unit),
		Description: code.Description,
		Glyph:       code.Glyph,
		FeelsLike:   degrees(c.ApparentTemperature),
		Humidity:    strconv.FormatFloat(c.Humidity, 'f', -1, 64) + "%",
		Wind:        strconv.FormatFloat(c.WindSpeed, 'f', -1, 64) + " " + wind,
	}
}

func newHourViews(samples []weather.HourlySample) []HourView {
	out := make([]HourView, 0, len(samples))
	for _, s := range samples {
		out = append(out, HourView{
			Time:        s.Time,
			Label:       s.Time.Format("3 PM"),
			Temperature: degrees(s.Temperature),
			Description: s.Condition.Description,
			Glyph:       s.Condition.Glyph,
		})
	}
	return out
}

func newDayViews(samples []weather.DailySample) []DayView {
	out := make([]DayView, 0, len(samples))
	for _, s := range samples {
		d := DayView{
			Date:        s.Time,
			Weekday:     s.Time.Weekday().String(),
			Description: s.Condition.Description,
			Glyph:       s.Condition.Glyph,
			Low:         "L: " + degrees(s.TempMin),
			High:        "H: " + degrees(s.TempMax),
		}
		if s.Sunrise != nil {
			d.Sunrise = s.Sunrise.Format("15:04")
		}
		if s.Sunset != nil {
			d.Sunset = s.Sunset.Format("15:04")
		}
		out = append(out, d)
	}
	return out
}
