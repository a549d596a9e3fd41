package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(_ context.Context, ev Event) error {
	ev = prepare(ev)
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Summary(_ context.Context) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Summary{
		TotalSearches:  len(s.events),
		TopStates:      topCounts(s.events, func(e Event) string { return e.Profile.State }),
		TopOccupations: topCounts(s.events, func(e Event) string { return e.Profile.Occupation }),
		RecentSearches: make([]Event, 0, SummaryLimit),
	}
	for i := len(s.events) - 1; i >= 0 && len(out.RecentSearches) < SummaryLimit; i-- {
		ev := s.events[i]
		ev.TopSchemes = append([]string(nil), ev.TopSchemes...)
		out.RecentSearches = append(out.RecentSearches, ev)
	}
	return out, nil
}

func topCounts(events []Event, key func(Event) string) []Count {
	counts := map[string]int{}
	for _, e := range events {
		counts[key(e)]++
	}
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > SummaryLimit {
		out = out[:SummaryLimit]
	}
	return out
}

// prepare fills the id and timestamp of a new event.
func prepare(ev Event) Event {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if len(ev.TopSchemes) > SummaryLimit {
		ev.TopSchemes = ev.TopSchemes[:SummaryLimit]
	}
	ev.TopSchemes = append([]string{}, ev.TopSchemes...)
	return ev
}
