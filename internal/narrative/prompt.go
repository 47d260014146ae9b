package narrative

import (
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/diginoron/imdb/internal/weather"
)

// PromptData holds the forecast fields interpolated into the prompt.
type PromptData struct {
	Location    string
	Language    string
	Structured  bool
	TempUnit    string
	WindUnit    string
	Temperature int
	Description string

	// Detailed is false when the forecast has no current block; the
	// apparent temperature, humidity and wind lines are then omitted.
	Detailed  bool
	FeelsLike int
	Humidity  string
	WindSpeed string

	HasToday bool
	TodayMax int
	TodayMin int
}

var promptTemplate = template.Must(template.New("prompt").Parse(
	`You are a friendly and creative weather assistant. Based on the weather data below for "{{.Location}}", write an engaging analysis in {{.Language}}.

Your analysis must have two parts:
1. Summary: one readable, useful paragraph about the current conditions and today's forecast.
2. Creative suggestion: after the summary, a fun suggestion or an interesting tip related to this weather.
{{- if .Structured}}

Reply only with a JSON object of the form {"summary": "...", "suggestion": "..."}.
{{- else}} Start this part with the heading "Creative suggestion:".
{{- end}}

Weather data:
- Current temperature: {{.Temperature}}{{.TempUnit}}
- Current conditions: {{.Description}}
{{- if .Detailed}}
- Feels like: {{.FeelsLike}}{{.TempUnit}}
- Humidity: {{.Humidity}}%
- Wind speed: {{.WindSpeed}} {{.WindUnit}}
{{- end}}
{{- if .HasToday}}
- Today's forecast: high {{.TodayMax}}{{.TempUnit}}, low {{.TodayMin}}{{.TempUnit}}
{{- end}}
`))

// NewPromptData selects the prompt fields from raw. Without a current block
// the first hour of the normalized window stands in for "now".
func NewPromptData(raw *weather.RawForecast, now time.Time, policy weather.HourPolicy) PromptData {
	d := PromptData{
		Location:    weather.LocationName(raw.Timezone),
		TempUnit:    unit(raw.CurrentUnits, "temperature_2m", "°C"),
		WindUnit:    unit(raw.CurrentUnits, "wind_speed_10m", "km/h"),
		Description: weather.UnknownCode.Description,
	}

	if c := raw.Current; c != nil {
		d.Temperature = weather.Round(c.Temperature)
		d.Description = weather.Lookup(c.WeatherCode).Description
		d.Detailed = true
		d.FeelsLike = weather.Round(c.ApparentTemperature)
		d.Humidity = formatNumber(c.Humidity)
		d.WindSpeed = formatNumber(c.WindSpeed)
	} else if hourly, _ := weather.NormalizeWithPolicy(raw, now, policy); len(hourly) > 0 {
		d.TempUnit = unit(raw.HourlyUnits, "temperature_2m", "°C")
		d.Temperature = weather.Round(hourly[0].Temperature)
		d.Description = hourly[0].Condition.Description
	}

	if raw.Daily.Len() > 0 && len(raw.Daily.TempMax) > 0 && len(raw.Daily.TempMin) > 0 {
		d.HasToday = true
		d.TodayMax = weather.Round(raw.Daily.TempMax[0])
		d.TodayMin = weather.Round(raw.Daily.TempMin[0])
	}
	return d
}

// BuildPrompt renders the prompt for d.
func BuildPrompt(d PromptData) (string, error) {
	if d.Language == "" {
		d.Language = "English"
	}
	var sb strings.Builder
	if err := promptTemplate.Execute(&sb, d); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func unit(units weather.Units, key, def string) string {
	if u := units[key]; u != "" {
		return u
	}
	return def
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
