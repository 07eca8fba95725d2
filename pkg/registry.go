package slab

// registry.go implements the global cache registry spec §4.5/§9 describes:
// a process-wide list guarded by a sleeping lock (a plain sync.Mutex is the
// sleeping-lock idiom in Go; the fast-path locks in this package use
// internal/winlock precisely because they need contention *signalling* that
// a sync.Mutex can't give, but the registry has no such need — create and
// destroy are cold paths). Initialized implicitly on first use, never torn
// down by a static destructor.
//
// © 2025 slabcache authors. MIT License.

import "sync"

var registry = struct {
	mu     sync.Mutex
	caches []*Cache
}{}

func registerCache(c *Cache) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.caches = append(registry.caches, c)
}

func unregisterCache(c *Cache) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for i, x := range registry.caches {
		if x == c {
			registry.caches = append(registry.caches[:i], registry.caches[i+1:]...)
			return
		}
	}
}

// ListCaches returns a snapshot of every currently-registered cache.
func ListCaches() []*Cache {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	out := make([]*Cache, len(registry.caches))
	copy(out, registry.caches)
	return out
}

// ReapAll calls Reap on every registered cache — a convenience for a
// process-wide memory-pressure hook, supplementing the per-cache Reap the
// core spec defines (spec keeps the decision of *when* to reap out of
// scope; this just makes "reap everything now" a one-line call).
func ReapAll() {
	for _, c := range ListCaches() {
		c.Reap()
	}
}
