package search

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"schemefinder/internal/metrics"
	"schemefinder/internal/scheme"
)

const (
	DefaultSize = 256
	DefaultTTL  = 10 * time.Minute
)

// Searcher is the origin the cache sits in front of.
type Searcher interface {
	Search(ctx context.Context, query, language string) (scheme.SearchResult, error)
}

// CachedSearcher memoizes successful searches per (language, normalized query).
// Failures are never cached.
type CachedSearcher struct {
	origin Searcher
	lru    *expirable.LRU[string, scheme.SearchResult]
}

func New(origin Searcher, size int, ttl time.Duration) *CachedSearcher {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSearcher{
		origin: origin,
		lru:    expirable.NewLRU[string, scheme.SearchResult](size, nil, ttl),
	}
}

func (c *CachedSearcher) Search(ctx context.Context, query, language string) (scheme.SearchResult, error) {
	key := cacheKey(query, language)
	if key == "" {
		return c.origin.Search(ctx, query, language)
	}
	if res, ok := c.lru.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("search", "hit").Inc()
		return copyResult(res), nil
	}
	metrics.CacheLookups.WithLabelValues("search", "miss").Inc()
	res, err := c.origin.Search(ctx, query, language)
	if err != nil {
		return res, err
	}
	c.lru.Add(key, copyResult(res))
	return res, nil
}

// Len reports the number of live entries.
func (c *CachedSearcher) Len() int { return c.lru.Len() }

func cacheKey(query, language string) string {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	if q == "" {
		return ""
	}
	return string(scheme.ParseLanguage(language)) + "|" + q
}

func copyResult(in scheme.SearchResult) scheme.SearchResult {
	out := scheme.SearchResult{Schemes: make([]scheme.Record, len(in.Schemes))}
	for i, r := range in.Schemes {
		out.Schemes[i] = r.Clone()
	}
	return out
}
