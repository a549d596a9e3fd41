package saved

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveListDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	first, err := s.Save(ctx, Scheme{UserID: "u1", SchemeName: "Atal Pension  Yojana", Timestamp: base})
	require.NoError(t, err)
	assert.Equal(t, "atal-pension-yojana", first.SchemeID)
	assert.NotEmpty(t, first.ID)

	second, err := s.Save(ctx, Scheme{
		UserID:     "u1",
		SchemeName: "PM Kisan",
		SchemeData: json.RawMessage(`{"name":"PM Kisan"}`),
		Timestamp:  base.Add(time.Hour),
	})
	require.NoError(t, err)

	list, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.JSONEq(t, `{"name":"PM Kisan"}`, string(list[0].SchemeData))

	ok, err := s.Exists(ctx, "u1", "atal-pension-yojana")
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := s.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", removed.UserID)
	ok, err = s.Exists(ctx, "u1", "atal-pension-yojana")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Delete(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DuplicateSlug(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Save(ctx, Scheme{UserID: "u1", SchemeName: "PM Kisan"})
	require.NoError(t, err)
	_, err = s.Save(ctx, Scheme{UserID: "u1", SchemeName: "pm   KISAN"})
	assert.ErrorIs(t, err, ErrAlreadySaved)
	_, err = s.Save(ctx, Scheme{UserID: "u2", SchemeName: "PM Kisan"})
	assert.NoError(t, err)
}

func TestMemoryStore_MissingFields(t *testing.T) {
	_, err := NewMemoryStore().Save(context.Background(), Scheme{UserID: "u1", SchemeName: "  "})
	assert.ErrorIs(t, err, ErrMissingFields)
}
