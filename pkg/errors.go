package slab

// errors.go collects the sentinel and typed errors the cache's public
// operations can return (spec §7). Kept in one file, teacher-style, so the
// error surface is easy to audit from a single place rather than scattered
// next to each operation.
//
// © 2025 slabcache authors. MIT License.

import "errors"

var (
	// ErrOOM is returned by Alloc when neither the per-CPU cache, the depot,
	// nor the slab back-end can satisfy the request and the caller asked for
	// a non-blocking allocation (or the backing arena itself is exhausted).
	ErrOOM = errors.New("slab: out of memory")

	// ErrConstructFailed is returned by Alloc when the cache's constructor
	// hook returned an error for a freshly carved object. The object is
	// returned to the slab untouched (spec §4.1's "constructor failure" edge
	// case) and the caller sees this error instead of a live object.
	ErrConstructFailed = errors.New("slab: constructor failed")

	// ErrDestroyLive is returned by Cache.Destroy when any object allocated
	// from the cache is still outstanding. Destroying a cache with live
	// objects would silently invalidate pointers callers still hold, so this
	// is refused rather than forced.
	ErrDestroyLive = errors.New("slab: cache destroyed with live objects")

	// ErrBadAlignment is returned by New when the requested alignment
	// is not a power of two, or exceeds the backing arena's page size (spec
	// §4.1: object alignment can never exceed the page the slab is carved
	// from).
	ErrBadAlignment = errors.New("slab: alignment must be a power of two and <= page size")

	// ErrBadObjectSize is returned by New when objSize is zero.
	ErrBadObjectSize = errors.New("slab: object size must be > 0")

	// ErrUnknownObject is the panic value the slab back-end raises when an
	// address it is given back (by a Free that falls through the magazine
	// layer, a constructor failure, or a magazine drained at Destroy) cannot
	// be traced back to any slab owned by the cache. Free does not check
	// ownership before caching an address in a magazine. It is a caller bug
	// (double free, free from the wrong cache, or a corrupted pointer), and
	// per spec §7 a fatal condition rather than a recoverable error.
	ErrUnknownObject = errors.New("slab: object address not owned by this cache")

	// ErrCacheClosed is returned by Alloc once Destroy has completed.
	ErrCacheClosed = errors.New("slab: cache is destroyed")

	// ErrInvalidName is returned by New when name is empty; names are
	// load-bearing (metrics labels, audit journal keys, registry listing).
	ErrInvalidName = errors.New("slab: cache name must not be empty")
)
