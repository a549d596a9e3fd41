package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemefinder/internal/scheme"
)

type countingSearcher struct {
	calls int
	err   error
}

func (c *countingSearcher) Search(_ context.Context, query, language string) (scheme.SearchResult, error) {
	c.calls++
	if c.err != nil {
		return scheme.SearchResult{}, c.err
	}
	return scheme.SearchResult{Schemes: []scheme.Record{{Name: query + "/" + language, CategoryTags: []string{"x"}}}}, nil
}

func TestCachedSearcher_HitsOnNormalizedQuery(t *testing.T) {
	origin := &countingSearcher{}
	c := New(origin, 8, time.Minute)
	ctx := context.Background()

	first, err := c.Search(ctx, "Farmer  Loan", "en")
	require.NoError(t, err)
	second, err := c.Search(ctx, " farmer loan ", "EN")
	require.NoError(t, err)

	assert.Equal(t, 1, origin.calls)
	assert.Equal(t, first, second)

	_, err = c.Search(ctx, "farmer loan", "hi")
	require.NoError(t, err)
	assert.Equal(t, 2, origin.calls)
	assert.Equal(t, 2, c.Len())
}

func TestCachedSearcher_ReturnsCopies(t *testing.T) {
	c := New(&countingSearcher{}, 8, time.Minute)
	ctx := context.Background()
	got, err := c.Search(ctx, "pension", "en")
	require.NoError(t, err)
	got.Schemes[0].CategoryTags[0] = "mutated"

	again, err := c.Search(ctx, "pension", "en")
	require.NoError(t, err)
	assert.Equal(t, "x", again.Schemes[0].CategoryTags[0])
}

func TestCachedSearcher_DoesNotCacheFailures(t *testing.T) {
	origin := &countingSearcher{err: errors.New("down")}
	c := New(origin, 8, time.Minute)
	ctx := context.Background()
	_, err := c.Search(ctx, "pension", "en")
	assert.Error(t, err)
	_, err = c.Search(ctx, "pension", "en")
	assert.Error(t, err)
	assert.Equal(t, 2, origin.calls)
	assert.Zero(t, c.Len())
}
