package saved

import (
	"context"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	savedrepo "schemefinder/internal/gateway/repository/saved"
	"schemefinder/internal/metrics"
)

const DefaultSize = 1024

// CachedStore keeps each user's saved list in an LRU. Writes go to the origin first and
// then drop the affected user's entry. A list read from the origin is only cached when no
// write completed while it was being read.
type CachedStore struct {
	origin savedrepo.Store
	lists  *lru.Cache[string, []savedrepo.Scheme]

	mu  sync.Mutex
	gen uint64
}

var _ savedrepo.Store = (*CachedStore)(nil)

func New(origin savedrepo.Store, size int) (*CachedStore, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New[string, []savedrepo.Scheme](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{origin: origin, lists: cache}, nil
}

func (c *CachedStore) Save(ctx context.Context, s savedrepo.Scheme) (savedrepo.Scheme, error) {
	out, err := c.origin.Save(ctx, s)
	if err != nil {
		return out, err
	}
	c.invalidate(out.UserID)
	return out, nil
}

func (c *CachedStore) List(ctx context.Context, userID string) ([]savedrepo.Scheme, error) {
	key := strings.TrimSpace(userID)
	if list, ok := c.lists.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("saved", "hit").Inc()
		return copyList(list), nil
	}
	metrics.CacheLookups.WithLabelValues("saved", "miss").Inc()
	gen := c.generation()
	list, err := c.origin.List(ctx, key)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.gen == gen {
		c.lists.Add(key, copyList(list))
	}
	c.mu.Unlock()
	return list, nil
}

func (c *CachedStore) Delete(ctx context.Context, id string) (savedrepo.Scheme, error) {
	out, err := c.origin.Delete(ctx, id)
	if err != nil {
		return out, err
	}
	c.invalidate(out.UserID)
	return out, nil
}

// Exists is answered from a cached list when one is present.
func (c *CachedStore) Exists(ctx context.Context, userID, schemeID string) (bool, error) {
	key := strings.TrimSpace(userID)
	if list, ok := c.lists.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("saved", "hit").Inc()
		for _, s := range list {
			if s.SchemeID == schemeID {
				return true, nil
			}
		}
		return false, nil
	}
	return c.origin.Exists(ctx, key, schemeID)
}

func (c *CachedStore) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *CachedStore) invalidate(userID string) {
	c.mu.Lock()
	c.gen++
	c.lists.Remove(userID)
	c.mu.Unlock()
}

func copyList(in []savedrepo.Scheme) []savedrepo.Scheme {
	out := make([]savedrepo.Scheme, len(in))
	for i, s := range in {
		if s.SchemeData != nil {
			s.SchemeData = append([]byte(nil), s.SchemeData...)
		}
		out[i] = s
	}
	return out
}
