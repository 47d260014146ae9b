package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/diginoron/imdb/internal/dashboard"
)

// Refresher is satisfied by *dashboard.Board.
type Refresher interface {
	Refresh(ctx context.Context, loc dashboard.Coordinates) (dashboard.View, error)
	Location() dashboard.Coordinates
}

// Scheduler periodically refreshes the dashboard for its current location.
type Scheduler struct {
	scheduler *gocron.Scheduler
	board     Refresher
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, board Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		board:     board,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately, which is the dashboard's initial load.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	loc := s.board.Location()
	log.Printf("scheduler: refreshing dashboard for %s", loc.Key())

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.board.Refresh(ctx, loc)
	switch {
	case errors.Is(err, dashboard.ErrSuperseded):
		log.Printf("scheduler: refresh for %s superseded by a user request", loc.Key())
	case err != nil:
		log.Printf("scheduler: refresh failed for %s: %v", loc.Key(), err)
	default:
		log.Println("scheduler: completed dashboard refresh")
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
