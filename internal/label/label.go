// Package label resolves neutral keys stored on domain objects (titles,
// area ids, person names) to display text. The domain never calls it;
// only export and presentation surfaces do.
package label

import "sync"

type Resolver interface {
	Resolve(key string) string
}

// Catalog is a map-backed Resolver. Unknown keys resolve to themselves so
// plain-text titles pass through untouched.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewCatalog(entries map[string]string) *Catalog {
	c := &Catalog{entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		c.entries[k] = v
	}
	return c
}

func (c *Catalog) Resolve(key string) string {
	if c == nil {
		return key
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.entries[key]; ok && v != "" {
		return v
	}
	return key
}

// Replace swaps the whole catalog, e.g. after a config reload.
func (c *Catalog) Replace(entries map[string]string) {
	next := make(map[string]string, len(entries))
	for k, v := range entries {
		next[k] = v
	}
	c.mu.Lock()
	c.entries = next
	c.mu.Unlock()
}

// Identity resolves every key to itself.
type Identity struct{}

func (Identity) Resolve(key string) string { return key }
