package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/diginoron/imdb/internal/dashboard"
)

type fakeBoard struct {
	loc   dashboard.Coordinates
	calls chan dashboard.Coordinates
}

func (f *fakeBoard) Refresh(_ context.Context, loc dashboard.Coordinates) (dashboard.View, error) {
	f.calls <- loc
	return dashboard.View{Location: loc}, nil
}

func (f *fakeBoard) Location() dashboard.Coordinates { return f.loc }

func TestScheduler_RefreshesImmediately(t *testing.T) {
	board := &fakeBoard{
		loc:   dashboard.Coordinates{Lat: 52.52, Lon: 13.41},
		calls: make(chan dashboard.Coordinates, 4),
	}

	s := New(time.Hour, board)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	select {
	case loc := <-board.calls:
		if loc != board.loc {
			t.Errorf("expected refresh for %+v, got %+v", board.loc, loc)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("expected an initial refresh")
	}
}
