package history

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu     sync.RWMutex
	byUser map[string][]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string][]Entry)}
}

func (s *MemoryStore) Add(_ context.Context, e Entry) error {
	e, err := prepare(e)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.byUser[e.UserID] = append(s.byUser[e.UserID], e)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context, userID string) ([]Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserRequired
	}
	s.mu.RLock()
	entries := append([]Entry(nil), s.byUser[userID]...)
	s.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	if len(entries) > Limit {
		entries = entries[:Limit]
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		e.TopSchemes = append([]string{}, e.TopSchemes...)
		out = append(out, e)
	}
	return out, nil
}

func prepare(e Entry) (Entry, error) {
	e.UserID = strings.TrimSpace(e.UserID)
	if e.UserID == "" {
		return Entry{}, ErrUserRequired
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	e.TopSchemes = append([]string{}, e.TopSchemes...)
	return e, nil
}
