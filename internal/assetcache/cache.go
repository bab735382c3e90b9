// Package assetcache tracks which stock assets have been fetched and which
// have already been used in the video under construction, so the visual
// timeline builder can prefer fresh assets over reused ones across
// concurrently processing scenes.
package assetcache

import (
	"sync"

	"github.com/shortform/scenecraft/internal/stockprovider"
)

// Cache is safe for concurrent use by multiple scenes processing in
// parallel within the same job.
type Cache struct {
	mu     sync.RWMutex
	byKey  map[string][]stockprovider.Asset // keyword -> search results
	used   map[string]bool                  // asset ID -> currently used in this job
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{
		byKey: make(map[string][]stockprovider.Asset),
		used:  make(map[string]bool),
	}
}

// Put stores results for keyword, merging into the keyword's pool if
// called more than once (two scenes sharing a keyword both contribute).
func (c *Cache) Put(keyword string, assets []stockprovider.Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey[keyword] = append(c.byKey[keyword], assets...)
}

// Get returns the cached results for keyword, if any.
func (c *Cache) Get(keyword string) ([]stockprovider.Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	assets, ok := c.byKey[keyword]
	return assets, ok
}

// UnusedFor returns the subset of keyword's cached assets not yet marked
// used, preferring untouched assets (the L1 fallback layer).
func (c *Cache) UnusedFor(keyword string) []stockprovider.Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []stockprovider.Asset
	for _, a := range c.byKey[keyword] {
		if !c.used[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

// AnyUnused scans every cached keyword for an unused asset (the L3 nuclear
// fallback layer).
func (c *Cache) AnyUnused() (stockprovider.Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, assets := range c.byKey {
		for _, a := range assets {
			if !c.used[a.ID] {
				return a, true
			}
		}
	}
	return stockprovider.Asset{}, false
}

// TotalUnique returns the count of distinct asset IDs cached across every
// keyword, used to decide whether reuse must be allowed.
func (c *Cache) TotalUnique() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	for _, assets := range c.byKey {
		for _, a := range assets {
			seen[a.ID] = true
		}
	}
	return len(seen)
}

// IsUsed reports whether assetID has already been marked used.
func (c *Cache) IsUsed(assetID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.used[assetID]
}

// MarkUsed records assetID as consumed by the job under construction.
func (c *Cache) MarkUsed(assetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.used[assetID] = true
}

// Any returns any single asset from any keyword, used by the L4 reuse
// fallback which only needs "something other than the previous clip".
func (c *Cache) Any() (stockprovider.Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, assets := range c.byKey {
		if len(assets) > 0 {
			return assets[0], true
		}
	}
	return stockprovider.Asset{}, false
}
