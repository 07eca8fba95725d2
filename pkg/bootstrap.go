package slab

// bootstrap.go statically reserves, in the fixed order spec §4.6 requires,
// the four caches that allocate the allocator's own metadata: a magazine
// cache, a cache-of-caches, a slab-record cache, and a bufctl cache. All
// four draw from a distinguished base arena (internal/arena.BaseArena)
// rather than the general pages arena, exactly so bringing up the first
// real cache never has a circular dependency on a cache that doesn't exist
// yet.
//
// A note on why this differs from the source design: there, every piece of
// allocator metadata (magazines, slab records, bufctls, even Cache objects)
// must be carved from allocator-controlled memory, because there is no
// general-purpose heap underneath it. In Go there is one, and it is already
// the correct home for any struct holding typed pointers — placing a Go
// value with pointer fields inside externally-provided, non-scanned memory
// (the reason runtime/mcache.go's free-list links are a bare uintptr, not
// a pointer) would make those fields invisible to the garbage collector.
// Go's standard library briefly shipped an experimental "arena" package
// built to do this safely with compiler support; it was removed. So the
// bootstrap circularity spec §9 calls out — "the magazine cache allocates
// magazines from itself" — does not actually arise here: magazine, slab,
// bufctl, and Cache values are ordinary Go heap allocations. What these
// four reserved caches instead provide is the *order* and *cost-accounting*
// invariant spec §4.6 describes: every later cache's construction, and
// every slab grow, bufctl allocation, and magazine-shortfall refill, is
// taxed against the matching reserved cache (one real Alloc/Free round
// trip), so bootstrap order is genuinely load-bearing. The exceptions are
// the magazine cache's own magazine refills and slab grows, and the
// slab-record cache's own grows, which are not taxed. A failed tax is
// ignored in New and in slab growth; a failed magazine-cache tax makes the
// free fall through to the slab back-end, as spec §7 describes for a
// magazine allocation failure. See DESIGN.md.
//
// © 2025 slabcache authors. MIT License.

import (
	"sync"
	"unsafe"

	"github.com/Voskan/slabcache/internal/arena"
)

type bootstrapCaches struct {
	base *arena.BaseArena

	magazineCache   *Cache
	cacheOfCaches   *Cache
	slabRecordCache *Cache
	bufctlCache     *Cache
}

var (
	bootstrapOnce  sync.Once
	bootstrapState *bootstrapCaches
)

// ensureBootstrap constructs the four reserved caches on first use, in
// spec §4.6's fixed order, and returns the shared singleton on every call
// thereafter.
func ensureBootstrap() *bootstrapCaches {
	bootstrapOnce.Do(func() {
		base := arena.NewBaseArena("slabcache.bootstrap")
		bootstrapState = &bootstrapCaches{
			base:            base,
			magazineCache:   newReservedCache("bootstrap.magazine", unsafe.Sizeof(magazine{}), base),
			cacheOfCaches:   newReservedCache("bootstrap.cache", unsafe.Sizeof(Cache{}), base),
			slabRecordCache: newReservedCache("bootstrap.slab", unsafe.Sizeof(slab{}), base),
			bufctlCache:     newReservedCache("bootstrap.bufctl", unsafe.Sizeof(bufctl{}), base),
		}
	})
	return bootstrapState
}

// newReservedCache builds one of the four statically reserved caches.
// Always embedded layout (the cutoff is set above objSize so it never
// tips into bufctl mode, which would need the very caches being built
// here) with no ctor or dtor, one per-CPU slot (these
// are low-traffic bookkeeping caches, not hot-path allocators), and no
// registration in the public cache registry — they are bootstrap-internal.
func newReservedCache(name string, objSize uintptr, base *arena.BaseArena) *Cache {
	cfg := defaultConfig()
	cfg.align = unsafe.Alignof(uintptr(0))
	cfg.cutoff = objSize + 1
	cfg.perCPUCacheCount = 1
	cfg.source = base

	c, err := newCacheRaw(name, objSize, 0, nil, nil, nil, cfg)
	if err != nil {
		panic("slab: failed to construct reserved cache " + name + ": " + err.Error())
	}
	return c
}
