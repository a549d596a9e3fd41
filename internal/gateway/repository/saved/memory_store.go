package saved

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"schemefinder/internal/scheme"
)

type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Scheme
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Scheme)}
}

func (m *MemoryStore) Save(_ context.Context, s Scheme) (Scheme, error) {
	s, err := prepare(s)
	if err != nil {
		return Scheme{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.byID {
		if cur.UserID == s.UserID && cur.SchemeID == s.SchemeID {
			return Scheme{}, ErrAlreadySaved
		}
	}
	m.byID[s.ID] = s
	return clone(s), nil
}

func (m *MemoryStore) List(_ context.Context, userID string) ([]Scheme, error) {
	userID = strings.TrimSpace(userID)
	m.mu.RLock()
	out := make([]Scheme, 0)
	for _, s := range m.byID {
		if s.UserID == userID {
			out = append(out, clone(s))
		}
	}
	m.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) (Scheme, error) {
	id = strings.TrimSpace(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return Scheme{}, ErrNotFound
	}
	delete(m.byID, id)
	return s, nil
}

func (m *MemoryStore) Exists(_ context.Context, userID, schemeID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.byID {
		if s.UserID == userID && s.SchemeID == schemeID {
			return true, nil
		}
	}
	return false, nil
}

// prepare validates a new entry and fills its derived fields.
func prepare(s Scheme) (Scheme, error) {
	s.UserID = strings.TrimSpace(s.UserID)
	s.SchemeName = strings.TrimSpace(s.SchemeName)
	if s.UserID == "" || s.SchemeName == "" {
		return Scheme{}, ErrMissingFields
	}
	s.SchemeID = scheme.Slug(s.SchemeName)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}
	return s, nil
}

func clone(s Scheme) Scheme {
	if s.SchemeData != nil {
		s.SchemeData = append([]byte(nil), s.SchemeData...)
	}
	return s
}

func sortNewestFirst(list []Scheme) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Timestamp.After(list[j].Timestamp)
		}
		return list[i].ID < list[j].ID
	})
}
