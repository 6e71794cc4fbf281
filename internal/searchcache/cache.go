// Package searchcache keeps aggregated search results around so that paging
// through a query does not hit the catalog again.
package searchcache

import (
	"bookbridge/internal/components/assert"
	"bookbridge/internal/components/chrono"
	"bookbridge/internal/components/telemetry"
	"bookbridge/internal/scrapers/catalog"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	report_cache_get = "cache.get"
	report_cache_put = "cache.put"
)

const (
	DefaultTTL      = time.Hour
	DefaultCapacity = 1024
)

type entry struct {
	results   catalog.SearchResults
	createdAt time.Time
}

type Options struct {
	// defaults to DefaultTTL
	TTL time.Duration
	// maximum amount of queries kept, the least recently used is evicted
	// first, defaults to DefaultCapacity
	Capacity int
	// defaults to chrono.StandardTime
	Time chrono.TimeAPI
}

// Cache maps exact query strings to the results they produced. An entry is
// valid while its age is strictly less than the TTL.
type Cache struct {
	lock    *sync.Mutex
	entries *lru.Cache[string, entry]
	ttl     time.Duration
	time    chrono.TimeAPI
	tel     telemetry.API
}

func New(opts Options, tel telemetry.API) (*Cache, error) {
	assert.NotNil(tel)

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	var clock chrono.TimeAPI = chrono.NewStandardTime()
	if opts.Time != nil {
		clock = opts.Time
	}

	entries, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("searchcache: create lru: %w", err)
	}

	return &Cache{
		lock:    &sync.Mutex{},
		entries: entries,
		ttl:     ttl,
		time:    clock,
		tel:     telemetry.NewScopedAPI("searchcache", tel),
	}, nil
}

// Get returns a copy of the cached results for `query`, an expired entry is
// removed and reported as absent.
func (c *Cache) Get(query string) (catalog.SearchResults, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	cached, ok := c.entries.Get(query)
	if !ok {
		c.tel.ReportDebug(report_cache_get, "miss", query)
		return catalog.SearchResults{}, false
	}
	if c.time.Now().Sub(cached.createdAt) >= c.ttl {
		c.entries.Remove(query)
		c.tel.ReportDebug(report_cache_get, "expired", query)
		return catalog.SearchResults{}, false
	}

	c.tel.ReportDebug(report_cache_get, "hit", query)
	return cached.results.Clone(), true
}

// Put stores a copy of `results`, replacing whatever was cached for `query`.
func (c *Cache) Put(query string, results catalog.SearchResults) {
	c.lock.Lock()
	defer c.lock.Unlock()

	evicted := c.entries.Add(query, entry{
		results:   results.Clone(),
		createdAt: c.time.Now(),
	})
	if evicted {
		c.tel.ReportCount(report_cache_put, 1)
	}
}

// Len is the amount of entries currently held, expired entries that were not
// looked up yet are included.
func (c *Cache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.entries.Len()
}
