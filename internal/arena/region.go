// Package arena implements the source-arena contract spec §6 treats as an
// external collaborator: a backing address-space provider that hands the
// slab back-end page-aligned (or, for bufctl-mode growth, multi-page)
// regions, and takes them back on Free.
//
// A Region wraps a []byte rather than raw OS memory obtained via cgo: a
// Go-heap slice for BaseArena (and for PagesArena off unix), an anonymous
// mmap for PagesArena on unix. The owning Slab keeps the Region alive for
// as long as any object inside it is reachable, so a heap-backed block is
// never reclaimed out from under a live allocation. This is the same
// technique the retrieved "nuke" slab arena and the teacher's own
// unsafe-helpers package rely on (make([]byte, n) + unsafe.SliceData +
// pointer arithmetic), generalized into a reusable Region/Source pair so the
// slab back-end never allocates or maps region memory itself.
//
// © 2025 slabcache authors. MIT License.
package arena

import (
	"errors"
	"sync"
	"unsafe"
)

// ErrOOM is returned by Source.Alloc when the arena cannot satisfy a
// request. Non-blocking requests must return it instead of blocking;
// blocking requests may still return it if the underlying OS call fails.
var ErrOOM = errors.New("arena: out of memory")

// AllocFlags controls how a Source.Alloc call behaves under pressure.
type AllocFlags struct {
	// NonBlocking requests that Alloc fail fast (returning ErrOOM) instead
	// of blocking the caller when the arena needs to wait for backpressure
	// (e.g. a bounded number of concurrent OS mmap calls).
	NonBlocking bool
}

// Region is one contiguous block of memory handed out by a Source
// (page-aligned when it comes from PagesArena). It is always backed by a
// []byte held in the Region; callers only ever see the unsafe.Pointer view.
type Region struct {
	mem  []byte
	base unsafe.Pointer
	size uintptr
}

// NewRegion wraps an already-allocated []byte as a Region. The slice must
// not be resliced or appended to afterward — its address is latched in.
func NewRegion(mem []byte) *Region {
	if len(mem) == 0 {
		return &Region{}
	}
	return &Region{
		mem:  mem,
		base: unsafe.Pointer(unsafe.SliceData(mem)),
		size: uintptr(len(mem)),
	}
}

// Base returns the region's start address.
func (r *Region) Base() unsafe.Pointer { return r.base }

// Size returns the region's length in bytes.
func (r *Region) Size() uintptr { return r.size }

// Bytes returns the []byte view backing the region (used only by arena
// implementations on Free, to let the slice become collectible again).
func (r *Region) Bytes() []byte { return r.mem }

// Importer is the minimal callback surface a cache exposes to the arena it
// imports from, so the arena can ask it to relinquish empty slabs under
// memory pressure (spec §6: "add_importer/del_importer... registers the
// cache so the arena can invoke reap on memory pressure").
type Importer interface {
	Reap()
}

// Source is the contract the slab back-end consumes (spec §6). Two
// concrete implementations are provided: PagesArena (the default,
// page-granularity source used by the embedded layout and general-purpose
// caches) and BaseArena (the bootstrap-safe source used only by the four
// reserved caches described in spec §4.6).
type Source interface {
	// Name identifies the arena for logging/metrics.
	Name() string

	// Alloc returns a Region of at least size bytes, aligned suitably for
	// the arena: BaseArena returns exactly size bytes, PagesArena rounds
	// size up to whole pages and page-aligns the region. Returns ErrOOM on
	// failure; never returns a short region.
	Alloc(size uintptr, flags AllocFlags) (*Region, error)

	// Free returns a region previously obtained from Alloc. The region
	// must not be used afterward.
	Free(r *Region)

	// QuantumMax returns the largest size this arena considers a
	// "quantum" allocation, used by quantum-cache caches to size their
	// import regions (spec §4.1). Returns 0 if the arena has no quantum
	// concept (e.g. the bootstrap-only BaseArena).
	QuantumMax() uintptr

	// AddImporter / DelImporter register and deregister a cache as a
	// reap() target for this arena. The arena implementations here do not
	// themselves trigger reaps (that policy lives outside this core, per
	// spec §1's scope note); they only need to hold the registration.
	AddImporter(imp Importer)
	DelImporter(imp Importer)
}

// importerSet is a tiny helper embedded by both arena implementations to
// satisfy Add/DelImporter without duplicating bookkeeping.
type importerSet struct {
	mu        sync.Mutex
	importers []Importer
}

func (s *importerSet) add(imp Importer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.importers = append(s.importers, imp)
}

func (s *importerSet) del(imp Importer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, x := range s.importers {
		if x == imp {
			s.importers = append(s.importers[:i], s.importers[i+1:]...)
			return
		}
	}
}

// ReapAll asks every registered importer to release its empty slabs. Not
// part of the Source interface (spec keeps reap-on-pressure policy out of
// scope); exposed for tests and for a future memory-pressure hook to call.
func (s *importerSet) ReapAll() {
	s.mu.Lock()
	importers := append([]Importer(nil), s.importers...)
	s.mu.Unlock()
	for _, imp := range importers {
		imp.Reap()
	}
}
