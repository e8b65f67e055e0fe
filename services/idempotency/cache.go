// Package idempotency memoizes terminal responses of execute-mode requests.
package idempotency

import (
	"sync"

	"github.com/grantpulse/agentgate/models"
)

// Key builds the composite cache key. Tenant is part of the key on purpose:
// the same idempotency key string from two tenants names two independent
// operations.
func Key(action models.ActionName, tenant, idempotencyKey string) string {
	return string(action) + ":" + tenant + ":" + idempotencyKey
}

// entry is one memoized operation. While the first request is still running,
// done is open and response is nil; replays wait on done instead of racing.
type entry struct {
	done     chan struct{}
	response *models.ActionResponse
}

// Cache memoizes the terminal response of each (action, tenant, key) triple
// for the life of the process. There is no eviction: unbounded growth is a
// documented scaling limit of the single-process design, not a bug.
//
// Thread-safe. Do gives the stronger exactly-once guarantee: of two racing
// requests for the same key, one computes and the other waits and replays.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	hits    uint64
	misses  uint64
}

// NewCache creates an empty idempotency cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Do returns the memoized response for key, or runs compute to produce it.
// Only successful terminal responses are stored; a failed compute leaves the
// key absent so a later retry can attempt the side effect again. The second
// return value reports whether the response was replayed from the cache.
func (c *Cache) Do(key string, compute func() (*models.ActionResponse, error)) (*models.ActionResponse, bool, error) {
	for {
		c.mu.Lock()
		e, exists := c.entries[key]
		if exists {
			c.mu.Unlock()
			<-e.done
			if e.response != nil {
				c.mu.Lock()
				c.hits++
				c.mu.Unlock()
				return e.response, true, nil
			}
			// The in-flight request failed and removed itself; race again
			// for the right to compute.
			continue
		}

		e = &entry{done: make(chan struct{})}
		c.entries[key] = e
		c.misses++
		c.mu.Unlock()

		resp, err := compute()
		c.mu.Lock()
		if err != nil {
			delete(c.entries, key)
		} else {
			e.response = resp
		}
		c.mu.Unlock()
		close(e.done)

		return resp, false, err
	}
}

// Get returns the stored terminal response for key, if any. It does not wait
// for in-flight computations.
func (c *Cache) Get(key string) (*models.ActionResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, exists := c.entries[key]
	if !exists || e.response == nil {
		c.misses++
		return nil, false
	}
	c.hits++
	return e.response, true
}

// Put stores a terminal response for key, overwriting nothing: the first
// stored response for a key wins.
func (c *Cache) Put(key string, resp *models.ActionResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, exists := c.entries[key]; exists && e.response != nil {
		return
	}
	e := &entry{done: make(chan struct{}), response: resp}
	close(e.done)
	c.entries[key] = e
}

// Stats reports cache counters for the status endpoint.
type Stats struct {
	Size   int
	Hits   uint64
	Misses uint64
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: len(c.entries), Hits: c.hits, Misses: c.misses}
}
