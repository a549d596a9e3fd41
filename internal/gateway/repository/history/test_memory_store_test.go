package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ListNewestFirstAndLimited(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		require.NoError(t, s.Add(ctx, Entry{
			UserID:     "u1",
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			TopSchemes: []string{fmt.Sprintf("scheme-%d", i)},
		}))
	}
	require.NoError(t, s.Add(ctx, Entry{UserID: "u2"}))

	got, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, Limit)
	assert.Equal(t, []string{"scheme-24"}, got[0].TopSchemes)
	assert.Equal(t, []string{"scheme-5"}, got[Limit-1].TopSchemes)

	other, err := s.List(ctx, " u2 ")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.NotEmpty(t, other[0].ID)
	assert.False(t, other[0].Timestamp.IsZero())
}

func TestMemoryStore_RequiresUser(t *testing.T) {
	s := NewMemoryStore()
	assert.ErrorIs(t, s.Add(context.Background(), Entry{}), ErrUserRequired)
	_, err := s.List(context.Background(), "")
	assert.ErrorIs(t, err, ErrUserRequired)
}

func TestMemoryStore_UnknownUserIsEmpty(t *testing.T) {
	got, err := NewMemoryStore().List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
