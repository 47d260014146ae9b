package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/diginoron/imdb/internal/dashboard"
	"github.com/diginoron/imdb/internal/movie"
	"github.com/diginoron/imdb/internal/narrative"
	"github.com/diginoron/imdb/internal/store"
	"github.com/diginoron/imdb/internal/upstream"
)

var validate = validator.New()

// Dashboard is satisfied by *dashboard.Board.
type Dashboard interface {
	Refresh(ctx context.Context, loc dashboard.Coordinates) (dashboard.View, error)
	Build(ctx context.Context, loc dashboard.Coordinates) (dashboard.View, error)
	Latest() (dashboard.View, bool)
}

// History is satisfied by *store.MemoryStore.
type History interface {
	GetRange(loc dashboard.Coordinates, from, to time.Time) ([]dashboard.View, error)
}

// MovieFinder is satisfied by *movie.Client.
type MovieFinder interface {
	FetchMovie(ctx context.Context, id string) (*movie.Record, error)
}

// Deps holds the services behind the routes. Generator serves the
// prompt endpoint and may be nil when no key is configured.
type Deps struct {
	Board     Dashboard
	History   History
	Movies    MovieFinder
	Generator narrative.Generator
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		loc, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := deps.Board.Build(c.UserContext(), loc)
		if err != nil {
			return c.Status(statusFor(err)).JSON(view)
		}
		return c.JSON(view)
	})

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		view, ok := deps.Board.Latest()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no dashboard view published yet")
		}
		return c.JSON(view)
	})

	v1.Post("/dashboard", func(c *fiber.Ctx) error {
		var body refreshBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := deps.Board.Refresh(c.UserContext(), dashboard.Coordinates{Lat: *body.Lat, Lon: *body.Lon})
		if errors.Is(err, dashboard.ErrSuperseded) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		if err != nil {
			return c.Status(statusFor(err)).JSON(view)
		}
		return c.JSON(view)
	})

	v1.Get("/dashboard/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		views, err := deps.History.GetRange(req.Location, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no dashboard history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch dashboard history")
		}

		return c.JSON(fiber.Map{
			"location": req.Location,
			"from":     req.From,
			"to":       req.To,
			"views":    views,
		})
	})

	v1.Get("/movies/:id", func(c *fiber.Ctx) error {
		rec, err := deps.Movies.FetchMovie(c.UserContext(), c.Params("id"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(movie.NewCard(rec))
	})

	app.Post("/api/gemini", func(c *fiber.Ctx) error {
		var body promptBody
		if err := c.BodyParser(&body); err != nil || strings.TrimSpace(body.Prompt) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prompt is required"})
		}

		text, err := generate(c.UserContext(), deps.Generator, body.Prompt)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to get AI response",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"text": text})
	})
}

func generate(ctx context.Context, gen narrative.Generator, prompt string) (string, error) {
	if gen == nil {
		return "", upstream.ErrMissingCredential
	}
	return gen.Generate(ctx, narrative.Request{Prompt: prompt})
}

// statusFor maps domain and upstream errors to HTTP status codes.
func statusFor(err error) int {
	var (
		transportErr *upstream.TransportError
		statusErr    *upstream.StatusError
		decodeErr    *upstream.DecodeError
	)
	switch {
	case errors.Is(err, movie.ErrInvalidIdentifier):
		return fiber.StatusBadRequest
	case errors.Is(err, upstream.ErrMissingCredential):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, movie.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, dashboard.ErrSuperseded):
		return fiber.StatusConflict
	case errors.As(err, &transportErr), errors.As(err, &statusErr), errors.As(err, &decodeErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

type promptBody struct {
	Prompt string `json:"prompt"`
}

// refreshBody uses pointers so that the equator and prime meridian are accepted.
type refreshBody struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

func parseLocationQuery(c *fiber.Ctx) (dashboard.Coordinates, error) {
	q := locationQuery{
		Lat: c.Query("lat"),
		Lon: c.Query("lon"),
	}
	if err := validate.Struct(q); err != nil {
		return dashboard.Coordinates{}, err
	}

	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return dashboard.Coordinates{}, err
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return dashboard.Coordinates{}, err
	}
	return dashboard.Coordinates{Lat: lat, Lon: lon}, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location dashboard.Coordinates
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}

// ErrorHandler renders errors returned by handlers as a JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
