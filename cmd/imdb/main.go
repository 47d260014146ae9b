package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/diginoron/imdb/internal/api/http"
	"github.com/diginoron/imdb/internal/config"
	"github.com/diginoron/imdb/internal/dashboard"
	"github.com/diginoron/imdb/internal/movie"
	"github.com/diginoron/imdb/internal/narrative"
	"github.com/diginoron/imdb/internal/scheduler"
	"github.com/diginoron/imdb/internal/store"
	"github.com/diginoron/imdb/internal/weather"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory view history with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	forecasts := weather.NewClient(httpClient, cfg.OpenMeteoURL)

	gemini := narrative.NewGeminiGenerator(httpClient, cfg.GeminiBaseURL, cfg.APIKey, cfg.GeminiModel)
	var gen narrative.Generator = gemini
	if cfg.NarrativeProxyURL != "" {
		gen = narrative.NewProxyGenerator(httpClient, cfg.NarrativeProxyURL)
		log.Printf("INFO: narratives are generated through %s", cfg.NarrativeProxyURL)
	}
	narrator := narrative.NewClient(gen, narrative.Options{
		Mode:     cfg.NarrativeMode,
		Language: cfg.NarrativeLanguage,
		Policy:   cfg.HourPolicy,
	})

	board := dashboard.NewBoard(forecasts, dashboard.Options{
		Narrator: narrator,
		Store:    memStore,
		Policy:   cfg.HourPolicy,
		Default:  cfg.DefaultLocation,
	})

	movies := movie.NewClient(httpClient, cfg.MovieAPIURL, cfg.MovieAPIKey, cfg.MovieAPIHost)

	// Scheduler that keeps the dashboard fresh; its first run is the initial load.
	sched := scheduler.New(cfg.RefreshInterval, board)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "imdb",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout * 3,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "imdb",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Board:     board,
		History:   memStore,
		Movies:    movies,
		Generator: gemini,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
