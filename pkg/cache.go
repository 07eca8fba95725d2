package slab

// cache.go binds everything else in this package into the named, typed
// pool spec §4.5 calls the cache container: object size and alignment,
// optional ctor/dtor with an opaque cookie, the three slab lists, the
// bufctl index or page index (depending on layout), the depot, and the
// per-CPU cache array.
//
// © 2025 slabcache authors. MIT License.

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Voskan/slabcache/internal/arena"
	"github.com/Voskan/slabcache/internal/slablist"
	"github.com/Voskan/slabcache/internal/unsafehelpers"
)

var defaultArena struct {
	once sync.Once
	pa   *arena.PagesArena
}

func defaultPagesArena() *arena.PagesArena {
	defaultArena.once.Do(func() {
		defaultArena.pa = arena.NewPagesArena("slabcache.default", arena.DefaultMaxConcurrentImports)
	})
	return defaultArena.pa
}

// Cache is a named pool producing fixed-size, fixed-alignment objects of
// one kind (spec §3's "Cache").
type Cache struct {
	name    string
	objSize uintptr // rounded up to align
	align   uintptr
	flags   Flags
	cutoff  uintptr

	source      arena.Source
	growthSize  uintptr
	quantumMode bool

	ctor   CtorFunc
	dtor   DtorFunc
	cookie unsafe.Pointer

	mu           sync.Mutex
	emptySlabs   slablist.List
	partialSlabs slablist.List
	fullSlabs    slablist.List
	pageIndex    map[uintptr]*slab // embedded mode: page base -> owning slab
	hashIndex    *bufctlIndex      // bufctl mode

	pageSize uintptr

	depot  *depot
	percpu []cpuCache

	live atomic.Int64

	logger  *zap.Logger
	metrics metricsSink
	audit   *auditLog

	closed atomic.Bool
}

// New creates and fully initializes a cache: on return it is registered
// globally and ready to serve Alloc (spec §4.5's creation contract).
func New(name string, objSize uintptr, flags Flags, ctor CtorFunc, dtor DtorFunc, cookie unsafe.Pointer, opts ...Option) (*Cache, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if objSize == 0 {
		return nil, ErrBadObjectSize
	}

	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	bs := ensureBootstrap()
	if cfg.source == nil {
		if cfg.maxConcurrentImport > 0 {
			cfg.source = arena.NewPagesArena(name, cfg.maxConcurrentImport)
		} else {
			cfg.source = defaultPagesArena()
		}
	}

	// Bootstrap tax: account this creation against the cache-of-caches
	// reserved cache (spec §4.6 item 2), so it stays genuinely exercised
	// rather than merely declared. See DESIGN.md.
	if tax, taxErr := bs.cacheOfCaches.Alloc(0); taxErr == nil {
		defer bs.cacheOfCaches.Free(tax)
	}

	c, err := newCacheRaw(name, objSize, flags, ctor, dtor, cookie, cfg)
	if err != nil {
		return nil, err
	}

	registerCache(c)
	c.source.AddImporter(c)
	if cfg.auditPath != "" {
		al, err := openAuditLog(cfg.auditPath)
		if err != nil {
			c.logger.Warn("audit log unavailable", zap.String("cache", name), zap.Error(err))
		} else {
			c.audit = al
			c.audit.record(name, auditEventCreate)
		}
	}
	return c, nil
}

// newCacheRaw builds a Cache without registering it globally or tagging it
// as an importer — used both by New and by bootstrap's reserved caches,
// which must never recurse back into New (that would try to tax-allocate
// from a cache-of-caches that does not exist yet).
func newCacheRaw(name string, objSize uintptr, flags Flags, ctor CtorFunc, dtor DtorFunc, cookie unsafe.Pointer, cfg *config) (*Cache, error) {
	if !unsafehelpers.IsPowerOfTwo(cfg.align) {
		return nil, ErrBadAlignment
	}
	if pa, ok := cfg.source.(*arena.PagesArena); ok && cfg.align > pa.PageSize() {
		return nil, ErrBadAlignment
	}

	rounded := unsafehelpers.AlignUp(objSize, cfg.align)
	useBufctl := flags.has(FlagNoTouch) || rounded > cfg.cutoff
	if useBufctl {
		flags |= flagUseBufctl
	}
	quantumMode := flags.has(FlagQuantumCache)

	pageSize := uintptr(0)
	if pa, ok := cfg.source.(*arena.PagesArena); ok {
		pageSize = pa.PageSize()
	} else {
		pageSize = rounded * uintptr(cfg.minSlotsPerSlab)
	}

	var growthSize uintptr
	switch {
	case !useBufctl:
		growthSize = pageSize
	case quantumMode:
		growthSize = arena.QuantumImportSize(cfg.source.QuantumMax())
	default:
		growthSize = arena.FixedPageMultipleImportSize(rounded, pageSize, cfg.minSlotsPerSlab)
	}

	percpuCount := cfg.perCPUCacheCount
	if percpuCount <= 0 {
		percpuCount = runtime.GOMAXPROCS(0)
	}

	m := newMetricsSink(cfg.registry)
	c := &Cache{
		name:        name,
		objSize:     rounded,
		align:       cfg.align,
		flags:       flags,
		cutoff:      cfg.cutoff,
		source:      cfg.source,
		growthSize:  growthSize,
		quantumMode: quantumMode,
		ctor:        ctor,
		dtor:        dtor,
		cookie:      cookie,
		pageSize:    pageSize,
		percpu:      make([]cpuCache, percpuCount),
		logger:      cfg.logger,
		metrics:     m,
	}
	c.depot = newDepot(name, cfg.minMagsize, cfg.maxMagsize, cfg.resizeThreshold, cfg.resizeWindow, m)
	if useBufctl {
		c.hashIndex = newBufctlIndex()
	} else {
		c.pageIndex = make(map[uintptr]*slab)
	}
	return c, nil
}

// Name returns the cache's name.
func (c *Cache) Name() string { return c.name }

// ObjectSize returns the cache's per-object size, rounded up to alignment.
func (c *Cache) ObjectSize() uintptr { return c.objSize }

// Live returns the number of currently outstanding (allocated) objects.
func (c *Cache) Live() int64 { return c.live.Load() }

// Alloc carves or recycles one object (spec §4.3's fast path, falling
// through to the slab back-end on a full depot miss).
func (c *Cache) Alloc(flags AllocFlags) (unsafe.Pointer, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	if p, ok := c.fastAlloc(); ok {
		c.live.Add(1)
		c.metrics.incAlloc(c.name)
		c.metrics.setLive(c.name, c.live.Load())
		return p, nil
	}

	p, err := c.allocFromSlab(flags)
	if err != nil {
		c.metrics.incOOM(c.name)
		if flags.panicOnFail() {
			panic(err)
		}
		return nil, err
	}
	c.live.Add(1)
	c.metrics.incAlloc(c.name)
	c.metrics.setLive(c.name, c.live.Load())
	return c.construct(p, flags)
}

// construct runs the cache's constructor hook, if any, returning the object
// to the slab back-end and reporting ErrConstructFailed on failure (spec
// §4.1's "constructor failure" edge case).
func (c *Cache) construct(p unsafe.Pointer, flags AllocFlags) (unsafe.Pointer, error) {
	if c.ctor == nil {
		return p, nil
	}
	if err := c.ctor(p, c.cookie, flags); err != nil {
		c.live.Add(-1)
		c.metrics.setLive(c.name, c.live.Load())
		c.freeToSlab(p)
		if flags.panicOnFail() {
			panic(fmt.Errorf("%w: %v", ErrConstructFailed, err))
		}
		return nil, fmt.Errorf("%w: %v", ErrConstructFailed, err)
	}
	return p, nil
}

// Free returns p to the cache (spec §4.3's fast path in reverse, falling
// through to the slab back-end — with the destructor run first — when both
// per-CPU magazines are full and the depot and magazine cache can't help).
func (c *Cache) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	if c.fastFree(p) {
		c.live.Add(-1)
		c.metrics.incFree(c.name)
		c.metrics.setLive(c.name, c.live.Load())
		return
	}

	if mag, ok := c.allocMagazineNonBlocking(); ok {
		c.depot.giveEmpty(mag)
		if c.fastFree(p) {
			c.live.Add(-1)
			c.metrics.incFree(c.name)
			c.metrics.setLive(c.name, c.live.Load())
			return
		}
	}

	if c.dtor != nil {
		c.dtor(p, c.cookie)
	}
	c.freeToSlab(p)
	c.live.Add(-1)
	c.metrics.incFree(c.name)
	c.metrics.setLive(c.name, c.live.Load())
}

// allocMagazineNonBlocking builds a fresh magazine sized to the depot's
// current target capacity, the spec §4.3 step-5 fallback for a depot that
// has run out of empty magazines. It taxes the bootstrap magazine cache
// (spec §4.6 item 1) for the allocation, and genuinely fails (ok=false) if
// that reserved cache itself is out of memory. The magazine cache is never
// taxed against itself: returning its tax object would run its own Free,
// which would come back here for another tax without end.
func (c *Cache) allocMagazineNonBlocking() (*magazine, bool) {
	bs := ensureBootstrap()
	if c == bs.magazineCache {
		return newMagazine(c.depot.Magsize()), true
	}
	tax, err := bs.magazineCache.Alloc(AllocNonBlocking)
	if err != nil {
		return nil, false
	}
	defer bs.magazineCache.Free(tax)
	return newMagazine(c.depot.Magsize()), true
}

// Reap releases every slab currently on the empty list back to the source
// arena (spec §4.1's Reap operation, and the Importer hook the source arena
// calls under memory pressure).
func (c *Cache) Reap() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		n := c.emptySlabs.Front()
		if n == nil {
			break
		}
		c.emptySlabs.Remove(n)
		c.releaseSlabLocked(slabFromNode(n))
	}
	c.metrics.incReap(c.name)
	c.reportSlabCountsLocked()
}

// Destroy drains every per-CPU cache and the depot, destroys every empty
// slab, and deregisters the cache. It refuses (ErrDestroyLive) if any
// object is still outstanding, or if the partial/full slab lists are
// non-empty, matching spec §4.5/§7's fatal-assertion semantics — returned
// as an error here rather than a hard panic, since a library has no
// business crashing its host process.
func (c *Cache) Destroy() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	for i := range c.percpu {
		slot := &c.percpu[i]
		if slot.loaded != nil {
			c.depot.give(slot.loaded)
			slot.loaded = nil
		}
		if slot.previous != nil {
			c.depot.give(slot.previous)
			slot.previous = nil
		}
	}

	bs := ensureBootstrap()
	c.depot.drain(
		func(p unsafe.Pointer) {
			if c.dtor != nil {
				c.dtor(p, c.cookie)
			}
			c.freeToSlab(p)
		},
		func(m *magazine) {
			if tax, err := bs.magazineCache.Alloc(AllocNonBlocking); err == nil {
				bs.magazineCache.Free(tax)
			}
		},
	)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live.Load() != 0 || !c.partialSlabs.Empty() || !c.fullSlabs.Empty() {
		c.closed.Store(false)
		return ErrDestroyLive
	}
	for {
		n := c.emptySlabs.Front()
		if n == nil {
			break
		}
		c.emptySlabs.Remove(n)
		c.releaseSlabLocked(slabFromNode(n))
	}

	c.source.DelImporter(c)
	unregisterCache(c)
	if c.audit != nil {
		c.audit.record(c.name, auditEventDestroy)
		c.audit.Close()
	}
	return nil
}

func slabFromNode(n *slablist.Node) *slab {
	s, ok := n.Value.(*slab)
	if !ok {
		panic("slab: slablist node does not hold a slab")
	}
	return s
}

func (c *Cache) reportSlabCountsLocked() {
	c.metrics.setSlabs(c.name, c.emptySlabs.Len(), c.partialSlabs.Len(), c.fullSlabs.Len())
}

// Snapshot is a debug supplement (SPEC_FULL.md §4): a point-in-time view of
// the cache's bookkeeping, not part of the core allocator contract.
type Snapshot struct {
	Name           string
	ObjectSize     uintptr
	Live           int64
	EmptySlabs     int
	PartialSlabs   int
	FullSlabs      int
	DepotMagsize   int
	BufctlOutstand int
}

// Snapshot returns a consistent point-in-time view of the cache.
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Name:         c.name,
		ObjectSize:   c.objSize,
		Live:         c.live.Load(),
		EmptySlabs:   c.emptySlabs.Len(),
		PartialSlabs: c.partialSlabs.Len(),
		FullSlabs:    c.fullSlabs.Len(),
		DepotMagsize: c.depot.Magsize(),
	}
	if c.hashIndex != nil {
		s.BufctlOutstand = c.hashIndex.count
	}
	return s
}
