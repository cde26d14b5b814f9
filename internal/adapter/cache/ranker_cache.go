package cache

import (
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"faqbot/internal/domain"
	"faqbot/internal/port"
)

// Observer is notified of cache hits and misses.
type Observer interface {
	CacheHit()
	CacheMiss()
}

// CachedRanker memoizes TopK results for repeated queries. The index is
// immutable for the life of the process, so entries never go stale.
type CachedRanker struct {
	ranker   port.Ranker
	cache    *lru.Cache[string, []domain.Candidate]
	observer Observer
}

type Option func(*CachedRanker)

// WithObserver reports hits and misses, typically to metrics.
func WithObserver(o Observer) Option {
	return func(c *CachedRanker) {
		c.observer = o
	}
}

func NewCachedRanker(ranker port.Ranker, size int, opts ...Option) (*CachedRanker, error) {
	if size <= 0 {
		size = 100
	}
	cache, err := lru.New[string, []domain.Candidate](size)
	if err != nil {
		return nil, err
	}
	c := &CachedRanker{ranker: ranker, cache: cache}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func cacheKey(query string, k int) string {
	return strconv.Itoa(k) + "\x00" + query
}

func (c *CachedRanker) TopK(query string, k int) ([]domain.Candidate, error) {
	key := cacheKey(query, k)
	if results, ok := c.cache.Get(key); ok {
		if c.observer != nil {
			c.observer.CacheHit()
		}
		return clone(results), nil
	}
	if c.observer != nil {
		c.observer.CacheMiss()
	}

	results, err := c.ranker.TopK(query, k)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, clone(results))
	return results, nil
}

// Len returns the number of cached queries.
func (c *CachedRanker) Len() int {
	return c.cache.Len()
}

func clone(in []domain.Candidate) []domain.Candidate {
	if in == nil {
		return nil
	}
	out := make([]domain.Candidate, len(in))
	copy(out, in)
	return out
}
