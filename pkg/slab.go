package slab

// slab.go implements the slab back-end of spec §4.1: one record per
// imported region, carved into equal-sized slots, in one of two layouts
// chosen per-cache at construction.
//
// Embedded layout's free-list link is stored as a bare uintptr rather than
// an unsafe.Pointer, exactly the way the Go runtime's own allocator threads
// its per-size-class free lists (runtime/mcache.go's gclinkptr: "newer
// Go-runtime GCs use non-conservative stacks so we need a type that does
// not look like a pointer, so the GC does not try to scan it"). Every link
// only ever points at another slot inside the same Region, which the owning
// *slab keeps reachable for as long as it exists, so there is no danger of
// the memory being reclaimed out from under an untyped link.
//
// © 2025 slabcache authors. MIT License.

import (
	"github.com/Voskan/slabcache/internal/arena"
	"github.com/Voskan/slabcache/internal/slablist"
	"github.com/Voskan/slabcache/internal/unsafehelpers"
	"unsafe"
)

const (
	// defaultCutoff is the object-size boundary between embedded and
	// bufctl layout when a cache does not override it (spec §6 tunable).
	defaultCutoff = 256
	// defaultMinSlotsPerSlab is the minimum slot count a non-quantum
	// bufctl-mode cache's import size must accommodate (spec §6 tunable).
	defaultMinSlotsPerSlab = 8
)

// linkptr is a slot address stored opaquely to the garbage collector,
// mirroring runtime.gclinkptr.
type linkptr uintptr

func (l linkptr) ptr() unsafe.Pointer { return unsafe.Pointer(l) }

func linkptrOf(p unsafe.Pointer) linkptr { return linkptr(uintptr(p)) }

func readLink(slot unsafe.Pointer) linkptr  { return *(*linkptr)(slot) }
func writeLink(slot unsafe.Pointer, n linkptr) { *(*linkptr)(slot) = n }

// slab describes one imported region carved into cache.objSize slots.
//
// Unlike the C original, the record is never placed at the tail of its own
// page: a Go struct containing pointers cannot safely live inside memory the
// garbage collector does not scan (PagesArena regions are raw mmap on
// unix). Instead, embedded-layout caches keep a page-base -> *slab map
// (Cache.pageIndex) that resolves an object's owning slab in the same O(1)
// complexity the spec requires, just via a hash lookup instead of a literal
// memory-layout offset; see DESIGN.md.
type slab struct {
	node   slablist.Node // membership in the cache's empty/partial/full list
	owner  *Cache        // non-owning back-reference
	region *arena.Region

	total int
	busy  int

	// Embedded layout.
	base     unsafe.Pointer
	freeHead linkptr

	// Bufctl layout.
	freeBufctl *bufctl
}

func (s *slab) state() slabState {
	switch {
	case s.busy == 0:
		return slabEmpty
	case s.busy == s.total:
		return slabFull
	default:
		return slabPartial
	}
}

type slabState int

const (
	slabEmpty slabState = iota
	slabPartial
	slabFull
)

// newEmbeddedSlab carves region into total = region.Size()/objSize slots and
// threads the initial free list through slot 0..total-1 in order.
func newEmbeddedSlab(owner *Cache, region *arena.Region, objSize uintptr) *slab {
	total := int(region.Size() / objSize)
	s := &slab{owner: owner, region: region, total: total, base: region.Base()}
	s.node.Value = s

	var head linkptr
	for i := total - 1; i >= 0; i-- {
		slot := unsafehelpers.Add(s.base, uintptr(i)*objSize)
		writeLink(slot, head)
		head = linkptrOf(slot)
	}
	s.freeHead = head
	return s
}

// allocEmbedded pops one slot from the embedded free list. Returns nil if
// the slab has no free slots (caller must not call this on a full slab).
func (s *slab) allocEmbedded() unsafe.Pointer {
	if s.freeHead == 0 {
		return nil
	}
	slot := s.freeHead.ptr()
	s.freeHead = readLink(slot)
	s.busy++
	return slot
}

// freeEmbedded pushes p back onto the embedded free list.
func (s *slab) freeEmbedded(p unsafe.Pointer) {
	writeLink(p, s.freeHead)
	s.freeHead = linkptrOf(p)
	s.busy--
}

// newBufctlSlab carves region into total slots, each described by one of
// the bufctls in ctls (len(ctls) == total, already owned by no one else).
// ctls are threaded onto the slab's free chain in order.
func newBufctlSlab(owner *Cache, region *arena.Region, objSize uintptr, ctls []*bufctl) *slab {
	total := len(ctls)
	s := &slab{owner: owner, region: region, total: total, base: region.Base()}
	s.node.Value = s

	var head *bufctl
	for i := total - 1; i >= 0; i-- {
		b := ctls[i]
		b.addr = unsafehelpers.Add(s.base, uintptr(i)*objSize)
		b.slab = s
		b.freeNext = head
		head = b
	}
	s.freeBufctl = head
	return s
}

// allocBufctl pops one bufctl from the slab's free chain. Returns nil if
// none remain.
func (s *slab) allocBufctl() *bufctl {
	b := s.freeBufctl
	if b == nil {
		return nil
	}
	s.freeBufctl = b.freeNext
	b.freeNext = nil
	s.busy++
	return b
}

// freeBufctlRecord returns b to the slab's free chain.
func (s *slab) freeBufctlRecord(b *bufctl) {
	b.freeNext = s.freeBufctl
	s.freeBufctl = b
	s.busy--
}
