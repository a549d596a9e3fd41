package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Summary(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	add := func(state, occ string, i int) {
		require.NoError(t, s.Add(ctx, Event{
			Profile:      Profile{State: state, Occupation: occ},
			SchemesFound: i,
			TopSchemes:   []string{"a", "b", "c", "d", "e", "f"},
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
		}))
	}
	add("Bihar", "Farmer", 1)
	add("Bihar", "Student", 2)
	add("Kerala", "Farmer", 3)
	add("Bihar", "Farmer", 4)
	for i := 0; i < 4; i++ {
		add("Goa", "Other", 10+i)
	}
	add("Assam", "Farmer", 20)
	add("Delhi", "Trader", 21)
	add("Punjab", "Trader", 22)

	got, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, got.TotalSearches)
	require.Len(t, got.TopStates, SummaryLimit)
	assert.Equal(t, Count{Key: "Bihar", Count: 3}, got.TopStates[1])
	assert.Equal(t, Count{Key: "Goa", Count: 4}, got.TopStates[0])
	assert.Equal(t, Count{Key: "Farmer", Count: 4}, got.TopOccupations[0])
	require.Len(t, got.RecentSearches, SummaryLimit)
	assert.Equal(t, 22, got.RecentSearches[0].SchemesFound)
	assert.Len(t, got.RecentSearches[0].TopSchemes, SummaryLimit)
	assert.NotEmpty(t, got.RecentSearches[0].ID)
}

func TestMemoryStore_EmptySummary(t *testing.T) {
	got, err := NewMemoryStore().Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.TotalSearches)
	assert.NotNil(t, got.TopStates)
	assert.NotNil(t, got.RecentSearches)
}
