package core

import (
	"math/big"
	"sync"
)

// InfeasibilityCache remembers integers proven to have no representation
// as a sum of two squares. It only grows. A nil *InfeasibilityCache is a
// valid, always-empty cache that ignores inserts.
//
// Safe for concurrent use; inserting the same value twice is harmless.
type InfeasibilityCache struct {
	mu      sync.RWMutex
	entries map[string]struct{}
}

// NewInfeasibilityCache creates an empty cache.
func NewInfeasibilityCache() *InfeasibilityCache {
	return &InfeasibilityCache{entries: make(map[string]struct{})}
}

// Contains reports whether n was recorded as infeasible.
func (c *InfeasibilityCache) Contains(n *big.Int) bool {
	if c == nil {
		return false
	}
	key := cacheKey(n)
	c.mu.RLock()
	_, ok := c.entries[key]
	c.mu.RUnlock()
	return ok
}

// Add records n and reports whether it was not already present.
func (c *InfeasibilityCache) Add(n *big.Int) bool {
	if c == nil {
		return false
	}
	key := cacheKey(n)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false
	}
	c.entries[key] = struct{}{}
	return true
}

// Len returns the number of recorded integers.
func (c *InfeasibilityCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(n *big.Int) string {
	return n.Text(16)
}
