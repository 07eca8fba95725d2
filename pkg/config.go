package slab

// config.go defines the per-cache configuration object and the functional
// options New can take, in the same shape as the teacher's config.go: a
// private config struct filled in by defaultConfig and then mutated by
// zero-or-more Option values, never exposed directly to callers.
//
// © 2025 slabcache authors. MIT License.

import (
	"time"
	"unsafe"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Voskan/slabcache/internal/arena"
)

// CtorFunc constructs a freshly carved object. It runs only when Alloc takes
// the object from the slab back-end; an object recycled through a magazine
// is returned as it was freed, without running it again. It must be cheap and must not
// itself call back into the cache it belongs to (spec §9: ctor/dtor are
// plain function pointers with an opaque cookie, called on hot paths, and
// must not allocate).
type CtorFunc func(obj, cookie unsafe.Pointer, flags AllocFlags) error

// DtorFunc tears down an object immediately before its memory is returned to
// the slab back-end (spec §4.6: runs "at the point the object leaves the
// magazine subsystem").
type DtorFunc func(obj, cookie unsafe.Pointer)

// AllocFlags controls one call to Cache.Alloc.
type AllocFlags uint8

const (
	// AllocNonBlocking requests immediate ErrOOM instead of blocking when
	// the slab back-end must grow and the source arena has no region ready.
	AllocNonBlocking AllocFlags = 1 << iota
	// AllocPanicOnFail converts an allocation failure that would otherwise
	// be returned as an error into a panic, for call sites that have no
	// sane recovery path (spec §6: "an error-vs-panic bit").
	AllocPanicOnFail
)

func (f AllocFlags) nonBlocking() bool { return f&AllocNonBlocking != 0 }
func (f AllocFlags) panicOnFail() bool { return f&AllocPanicOnFail != 0 }
func (f AllocFlags) arenaFlags() arena.AllocFlags {
	return arena.AllocFlags{NonBlocking: f.nonBlocking()}
}

// Flags controls cache-wide behavior, set once at New time (spec §4.5).
type Flags uint32

const (
	// FlagQuantumCache derives the bufctl-mode import size from the source
	// arena's quantum maximum (a power-of-two multiple, >=3x).
	FlagQuantumCache Flags = 1 << iota
	// FlagNoTouch forbids using object memory for free-list links, forcing
	// bufctl mode regardless of object size.
	FlagNoTouch
	// flagUseBufctl is not user-settable: New derives it from object size
	// versus the configured cutoff, or from FlagNoTouch.
	flagUseBufctl
)

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

type config struct {
	align               uintptr
	cutoff              uintptr
	minSlotsPerSlab     int
	resizeWindow        time.Duration
	resizeThreshold     int
	minMagsize          int
	maxMagsize          int
	perCPUCacheCount    int
	logger              *zap.Logger
	registry            *prometheus.Registry
	auditPath           string
	source              arena.Source
	maxConcurrentImport int64
}

// Option customizes cache creation. Options never allocate beyond capturing
// the value passed in.
type Option func(*config)

func defaultConfig() *config {
	return &config{
		align:               8,
		cutoff:              defaultCutoff,
		minSlotsPerSlab:     defaultMinSlotsPerSlab,
		resizeWindow:        defaultResizeWindow,
		resizeThreshold:     defaultResizeThreshold,
		minMagsize:          defaultMinMagsize,
		maxMagsize:          defaultMaxMagsize,
		perCPUCacheCount:    0, // 0 means "use runtime.GOMAXPROCS(0) at New time"
		logger:              zap.NewNop(),
		maxConcurrentImport: 0, // 0 means arena.DefaultMaxConcurrentImports
	}
}

// WithAlignment overrides the default 8-byte object alignment. Must be a
// power of two and <= the source arena's page size (enforced in New).
func WithAlignment(align uintptr) Option {
	return func(c *config) { c.align = align }
}

// WithCutoff overrides the embedded/bufctl object-size cutoff.
func WithCutoff(n uintptr) Option {
	return func(c *config) { c.cutoff = n }
}

// WithMinSlotsPerSlab sets the minimum slot count a non-quantum bufctl-mode
// cache's import size must accommodate.
func WithMinSlotsPerSlab(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.minSlotsPerSlab = n
		}
	}
}

// WithResizeWindow overrides the depot's contention-accounting window
// (default 1s, per spec §6).
func WithResizeWindow(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.resizeWindow = d
		}
	}
}

// WithResizeThreshold overrides the number of contended depot acquisitions
// per window that triggers a magsize bump (default 1, per spec §6).
func WithResizeThreshold(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.resizeThreshold = n
		}
	}
}

// WithMagsizeBounds overrides the minimum and maximum magazine capacities.
// A non-positive min leaves both bounds unchanged; a max below min leaves
// the maximum unchanged.
func WithMagsizeBounds(min, max int) Option {
	return func(c *config) {
		if min <= 0 {
			return
		}
		c.minMagsize = min
		if max >= min {
			c.maxMagsize = max
		}
	}
}

// WithPerCPUCacheCount overrides the number of per-CPU cache slots, instead
// of the default runtime.GOMAXPROCS(0). Spec's Non-goals exclude true
// NUMA-aware clustering "beyond a pluggable per-CPU cache factory" — this is
// that pluggable factory: a deployment that wants one cache per NUMA node
// rather than per-P passes that count here.
func WithPerCPUCacheCount(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.perCPUCacheCount = n
		}
	}
}

// WithLogger plugs an external zap.Logger. The cache never logs on the
// fast path; the only event it logs is a failure to open the audit journal
// in New.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics collection for this cache.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithAuditLog enables a Badger-backed lifecycle journal at path (spec
// supplement, see SPEC_FULL.md §4; not part of the core allocator contract).
func WithAuditLog(path string) Option {
	return func(c *config) { c.auditPath = path }
}

// WithSource overrides the source arena a cache imports regions from
// (default: a shared process-wide arena.PagesArena).
func WithSource(s arena.Source) Option {
	return func(c *config) { c.source = s }
}

// WithMaxConcurrentImports bounds how many blocking region imports the
// default pages arena allows concurrently (only meaningful when no explicit
// WithSource is given).
func WithMaxConcurrentImports(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxConcurrentImport = n
		}
	}
}
