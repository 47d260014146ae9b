package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/diginoron/imdb/internal/narrative"
	"github.com/diginoron/imdb/internal/weather"
)

// ErrSuperseded is returned by Refresh when a newer refresh started before this one finished.
var ErrSuperseded = errors.New("dashboard refresh superseded by a newer request")

// ForecastFetcher is satisfied by *weather.Client.
type ForecastFetcher interface {
	FetchForecast(ctx context.Context, lat, lon float64) (*weather.RawForecast, error)
}

// Narrator is satisfied by *narrative.Client.
type Narrator interface {
	Summarize(ctx context.Context, raw *weather.RawForecast) (string, error)
}

// Store keeps published views. It is satisfied by *store.MemoryStore.
type Store interface {
	SaveView(view View)
	GetLatest(loc Coordinates) (View, error)
	GetRange(loc Coordinates, from, to time.Time) ([]View, error)
}

// Board owns the dashboard display state. Each Refresh is one request
// cycle; only the newest cycle may publish its view.
type Board struct {
	forecasts ForecastFetcher
	narrator  Narrator
	store     Store
	policy    weather.HourPolicy
	now       func() time.Time

	generation atomic.Uint64

	mu       sync.Mutex
	latest   *View
	location Coordinates
	cancel   context.CancelFunc
}

// Options configures a Board. Narrator and Store may be nil.
type Options struct {
	Narrator Narrator
	Store    Store
	Policy   weather.HourPolicy
	Default  Coordinates
}

// NewBoard creates a Board showing opts.Default until the first refresh.
func NewBoard(forecasts ForecastFetcher, opts Options) *Board {
	return &Board{
		forecasts: forecasts,
		narrator:  opts.Narrator,
		store:     opts.Store,
		policy:    opts.Policy,
		now:       time.Now,
		location:  opts.Default,
	}
}

// Refresh runs a request chain for loc and publishes the resulting view.
// Starting a refresh cancels any chain still in flight; that chain then
// returns ErrSuperseded and its result is discarded.
func (b *Board) Refresh(ctx context.Context, loc Coordinates) (View, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The generation and the cancel swap change together so that a chain
	// only ever cancels older chains.
	b.mu.Lock()
	gen := b.generation.Inc()
	if b.cancel != nil {
		b.cancel()
	}
	b.cancel = cancel
	b.location = loc
	b.mu.Unlock()

	view, err := b.build(ctx, loc, gen)

	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.generation.Load() {
		log.Printf("DEBUG: dashboard generation %d superseded by %d", gen, b.generation.Load())
		return View{}, ErrSuperseded
	}
	b.cancel = nil
	b.latest = &view

	if err != nil {
		return view, err
	}
	if b.store != nil {
		b.store.SaveView(view)
	}
	return view, nil
}

// Build runs one request chain without publishing it.
func (b *Board) Build(ctx context.Context, loc Coordinates) (View, error) {
	return b.build(ctx, loc, 0)
}

// Latest returns the most recently published view.
func (b *Board) Latest() (View, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latest == nil {
		return View{}, false
	}
	return *b.latest, true
}

// Location returns the coordinates of the latest refresh, or the default.
func (b *Board) Location() Coordinates {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.location
}

// build fetches and normalizes a forecast, then asks for a narrative.
// A forecast failure yields an error view; a narrative failure keeps the
// forecast and records a display message instead.
func (b *Board) build(ctx context.Context, loc Coordinates, gen uint64) (View, error) {
	now := b.now()
	view := View{
		ID:         uuid.NewString(),
		Generation: gen,
		BuiltAt:    now.UTC(),
		Location:   loc,
	}

	raw, err := b.forecasts.FetchForecast(ctx, loc.Lat, loc.Lon)
	if err != nil {
		log.Printf("ERROR: forecast fetch failed for %s: %v", loc.Key(), err)
		view.Error = fmt.Sprintf("Error fetching data: %v", err)
		return view, fmt.Errorf("fetch forecast: %w", err)
	}

	hourly, daily := weather.NormalizeWithPolicy(raw, now, b.policy)

	view.Title = weather.LocationName(raw.Timezone)
	view.Timezone = raw.Timezone
	view.Current = newCurrentView(raw)
	view.Hourly = newHourViews(hourly)
	view.Daily = newDayViews(daily)

	if b.narrator != nil {
		text, err := b.narrator.Summarize(ctx, raw)
		if err != nil {
			log.Printf("ERROR: narrative generation failed for %s: %v", loc.Key(), err)
			view.NarrativeError = narrative.UserMessage(err)
		} else {
			view.Narrative = text
		}
	}

	return view, nil
}
