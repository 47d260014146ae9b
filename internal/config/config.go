package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/diginoron/imdb/internal/dashboard"
	"github.com/diginoron/imdb/internal/movie"
	"github.com/diginoron/imdb/internal/narrative"
	"github.com/diginoron/imdb/internal/weather"
)

type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration

	// RefreshInterval controls how often the dashboard is refreshed in the background.
	RefreshInterval time.Duration

	// DefaultLocation is shown until a user picks another one.
	DefaultLocation dashboard.Coordinates

	// In-memory view history retention.
	StoreMaxHistory int           // max number of views per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of views (0 = unlimited)

	OpenMeteoURL string
	HourPolicy   weather.HourPolicy

	// Generative-text settings. APIKey is the Gemini credential; when
	// NarrativeProxyURL is set the proxy holds the credential instead.
	APIKey            string
	GeminiModel       string
	GeminiBaseURL     string
	NarrativeProxyURL string
	NarrativeMode     narrative.ReplyMode
	NarrativeLanguage string

	MovieAPIURL  string
	MovieAPIKey  string
	MovieAPIHost string
}

// Load reads configuration from environment with sensible defaults.
// Callers load any .env file first.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals

	if cfg.DefaultLocation.Lat, err = getenvFloat("DEFAULT_LATITUDE", 52.52); err != nil {
		return nil, err
	}
	if cfg.DefaultLocation.Lon, err = getenvFloat("DEFAULT_LONGITUDE", 13.41); err != nil {
		return nil, err
	}

	cfg.OpenMeteoURL = getenvDefault("OPEN_METEO_URL", weather.DefaultBaseURL)
	if cfg.HourPolicy, err = weather.ParseHourPolicy(os.Getenv("HOUR_POLICY")); err != nil {
		return nil, fmt.Errorf("invalid HOUR_POLICY: %w", err)
	}

	cfg.APIKey = os.Getenv("API_KEY")
	cfg.GeminiModel = getenvDefault("GEMINI_MODEL", narrative.DefaultGeminiModel)
	cfg.GeminiBaseURL = getenvDefault("GEMINI_BASE_URL", narrative.DefaultGeminiBaseURL)
	cfg.NarrativeProxyURL = os.Getenv("NARRATIVE_PROXY_URL")
	if cfg.NarrativeMode, err = narrative.ParseReplyMode(os.Getenv("NARRATIVE_MODE")); err != nil {
		return nil, fmt.Errorf("invalid NARRATIVE_MODE: %w", err)
	}
	cfg.NarrativeLanguage = getenvDefault("NARRATIVE_LANGUAGE", "English")

	cfg.MovieAPIURL = getenvDefault("MOVIE_API_URL", movie.DefaultBaseURL)
	cfg.MovieAPIKey = os.Getenv("MOVIE_API_KEY")
	cfg.MovieAPIHost = getenvDefault("MOVIE_API_HOST", movie.DefaultHost)

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
