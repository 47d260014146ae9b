package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/diginoron/imdb/internal/dashboard"
)

var (
	// ErrNotFound is returned when no view is available for a given location.
	ErrNotFound = errors.New("no dashboard view for location")
)

// MemoryStore is a concurrency-safe in-memory history of published views.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: views ordered by BuiltAt
	data map[string][]dashboard.View

	// retention configuration
	maxHistory int           // max number of views per location
	maxAge     time.Duration // optional max age for views

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited; likewise maxAge.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]dashboard.View),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveView appends a view for its location and enforces retention.
func (s *MemoryStore) SaveView(view dashboard.View) {
	key := view.Location.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Insert after any view with the same timestamp to keep history ordered.
	history := s.data[key]
	i := firstAtOrAfter(history, view.BuiltAt.Add(time.Nanosecond))
	history = append(history, dashboard.View{})
	copy(history[i+1:], history[i:])
	history[i] = view

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	// Enforce retention by age; the newest view is always kept.
	if s.maxAge > 0 {
		cut := firstAtOrAfter(history, s.now().Add(-s.maxAge))
		history = history[min(cut, len(history)-1):]
	}

	s.data[key] = history
}

// GetLatest returns the most recent view for a location.
func (s *MemoryStore) GetLatest(loc dashboard.Coordinates) (dashboard.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[loc.Key()]
	if len(history) == 0 {
		return dashboard.View{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// GetRange returns all views for a location built between from and to (inclusive).
func (s *MemoryStore) GetRange(loc dashboard.Coordinates, from, to time.Time) ([]dashboard.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[loc.Key()]
	if len(history) == 0 {
		return nil, ErrNotFound
	}

	lo := firstAtOrAfter(history, from)
	hi := firstAtOrAfter(history, to.Add(time.Nanosecond))
	if lo >= hi {
		return nil, ErrNotFound
	}

	// Copy so callers never alias the stored slice.
	return append([]dashboard.View(nil), history[lo:hi]...), nil
}

// firstAtOrAfter returns the index of the first view built at or after t.
// history must be ordered by BuiltAt.
func firstAtOrAfter(history []dashboard.View, t time.Time) int {
	return sort.Search(len(history), func(i int) bool {
		return !history[i].BuiltAt.Before(t)
	})
}
