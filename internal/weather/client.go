package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/diginoron/imdb/internal/upstream"
)

const (
	serviceName = "open-meteo"

	// DefaultBaseURL is the Open-Meteo forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m"
	hourlyFields  = "temperature_2m,weather_code"
	dailyFields   = "weather_code,temperature_2m_max,temperature_2m_min,sunrise,sunset"

	hourLayout = "2006-01-02T15:04"
	dayLayout  = "2006-01-02"
)

// Client fetches forecasts from Open-Meteo.
type Client struct {
	baseURL string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		circuit: upstream.NewBreaker(serviceName),
	}
}

// FetchForecast performs one round trip for the given coordinates.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64) (*RawForecast, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
		values.Set("current", currentFields)
		values.Set("hourly", hourlyFields)
		values.Set("daily", dailyFields)
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := upstream.Do(ctx, c.http, c.circuit, serviceName, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload forecastPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &upstream.DecodeError{Service: serviceName, Err: err}
	}

	raw, err := payload.toRaw()
	if err != nil {
		return nil, &upstream.DecodeError{Service: serviceName, Err: err}
	}
	return raw, nil
}

// forecastPayload mirrors the Open-Meteo JSON body.
type forecastPayload struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Timezone         string  `json:"timezone"`
	UTCOffsetSeconds int     `json:"utc_offset_seconds"`

	Current *struct {
		Time                string  `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		RelativeHumidity    float64 `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		WeatherCode         int     `json:"weather_code"`
		WindSpeed           float64 `json:"wind_speed_10m"`
	} `json:"current"`
	CurrentUnits Units `json:"current_units"`

	Hourly struct {
		Time        []string  `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		WeatherCode []int     `json:"weather_code"`
	} `json:"hourly"`
	HourlyUnits Units `json:"hourly_units"`

	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weather_code"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		Sunrise     []string  `json:"sunrise"`
		Sunset      []string  `json:"sunset"`
	} `json:"daily"`
	DailyUnits Units `json:"daily_units"`
}

func (p *forecastPayload) toRaw() (*RawForecast, error) {
	loc := p.location()

	raw := &RawForecast{
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		Timezone:         p.Timezone,
		UTCOffsetSeconds: p.UTCOffsetSeconds,
		CurrentUnits:     p.CurrentUnits,
		HourlyUnits:      p.HourlyUnits,
		DailyUnits:       p.DailyUnits,
	}

	if p.Current != nil {
		ts, err := parseLocal(hourLayout, p.Current.Time, loc)
		if err != nil {
			return nil, fmt.Errorf("current.time: %w", err)
		}
		raw.Current = &CurrentConditions{
			Time:                ts,
			Temperature:         p.Current.Temperature,
			ApparentTemperature: p.Current.ApparentTemperature,
			Humidity:            p.Current.RelativeHumidity,
			WindSpeed:           p.Current.WindSpeed,
			WeatherCode:         p.Current.WeatherCode,
		}
	}

	h := p.Hourly
	if len(h.Temperature) != len(h.Time) || len(h.WeatherCode) != len(h.Time) {
		return nil, fmt.Errorf("hourly series length mismatch: time=%d temperature=%d weather_code=%d",
			len(h.Time), len(h.Temperature), len(h.WeatherCode))
	}
	hourTimes, err := parseAll(hourLayout, h.Time, loc)
	if err != nil {
		return nil, fmt.Errorf("hourly.time: %w", err)
	}
	raw.Hourly = HourlySeries{
		Time:        hourTimes,
		Temperature: h.Temperature,
		WeatherCode: h.WeatherCode,
	}

	d := p.Daily
	n := len(d.Time)
	if len(d.WeatherCode) != n || len(d.TempMax) != n || len(d.TempMin) != n {
		return nil, fmt.Errorf("daily series length mismatch: time=%d weather_code=%d max=%d min=%d",
			n, len(d.WeatherCode), len(d.TempMax), len(d.TempMin))
	}
	if (d.Sunrise != nil && len(d.Sunrise) != n) || (d.Sunset != nil && len(d.Sunset) != n) {
		return nil, fmt.Errorf("daily sunrise/sunset length mismatch")
	}
	dayTimes, err := parseAll(dayLayout, d.Time, loc)
	if err != nil {
		return nil, fmt.Errorf("daily.time: %w", err)
	}
	sunrise, err := parseAll(hourLayout, d.Sunrise, loc)
	if err != nil {
		return nil, fmt.Errorf("daily.sunrise: %w", err)
	}
	sunset, err := parseAll(hourLayout, d.Sunset, loc)
	if err != nil {
		return nil, fmt.Errorf("daily.sunset: %w", err)
	}
	raw.Daily = DailySeries{
		Time:        dayTimes,
		WeatherCode: d.WeatherCode,
		TempMax:     d.TempMax,
		TempMin:     d.TempMin,
		Sunrise:     sunrise,
		Sunset:      sunset,
	}

	return raw, nil
}

// location resolves the response timezone. Open-Meteo sends local wall-clock
// times, so the zone is needed to compare them with an absolute instant.
func (p *forecastPayload) location() *time.Location {
	if p.Timezone != "" {
		if loc, err := time.LoadLocation(p.Timezone); err == nil {
			return loc
		}
	}
	return time.FixedZone(p.Timezone, p.UTCOffsetSeconds)
}

func parseLocal(layout, value string, loc *time.Location) (time.Time, error) {
	// Some deployments return full ISO8601 with seconds.
	if t, err := time.ParseInLocation(layout, value, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", value, loc)
}

func parseAll(layout string, values []string, loc *time.Location) ([]time.Time, error) {
	if values == nil {
		return nil, nil
	}
	out := make([]time.Time, len(values))
	for i, v := range values {
		t, err := parseLocal(layout, v, loc)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}
