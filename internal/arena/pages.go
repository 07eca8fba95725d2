package arena

import (
	"context"
	"os"

	"golang.org/x/sync/semaphore"

	"github.com/Voskan/slabcache/internal/unsafehelpers"
)

// PagesArena is the default "pages arena" spec §6 describes: the source
// used when a cache specifies none of its own. Regions are page-aligned
// and page-sized multiples, obtained from the OS via mmapAnon (real
// anonymous mmap on unix, see pages_unix.go; a heap-backed fallback
// elsewhere, see pages_other.go).
//
// Concurrent blocking imports are bounded by a semaphore.Weighted: a real
// kernel page allocator applies backpressure under memory pressure rather
// than let every CPU hammer the same free-page-list lock at once, and
// golang.org/x/sync/semaphore is the teacher's own dependency family
// (x/sync) applied to that concern instead of the loader-dedup concern the
// teacher used x/sync/singleflight for (see DESIGN.md — this allocator has
// no loader concept).
//
// NOTE: objects placed in a PagesArena-backed cache must not contain Go
// pointers. The backing memory comes from raw mmap (or, on the fallback
// path, a []byte the GC does scan, but the free-list link the embedded
// layout threads through a free slot's first word is itself not a valid Go
// pointer). This mirrors the teacher's own arena-wrapper disclaimer: values
// allocated through a low-level arena must never smuggle GC-visible
// pointers across an allocator boundary the GC cannot trace.
type PagesArena struct {
	importerSet
	name       string
	pageSize   uintptr
	quantumMax uintptr
	sem        *semaphore.Weighted
}

// DefaultMaxConcurrentImports bounds how many page imports may block on the
// OS simultaneously before further blocking importers simply wait; it does
// not bound the number of regions outstanding, only concurrent Alloc calls.
const DefaultMaxConcurrentImports = 64

// NewPagesArena constructs the default pages arena. maxConcurrentImports
// <= 0 selects DefaultMaxConcurrentImports.
func NewPagesArena(name string, maxConcurrentImports int64) *PagesArena {
	if maxConcurrentImports <= 0 {
		maxConcurrentImports = DefaultMaxConcurrentImports
	}
	ps := uintptr(os.Getpagesize())
	return &PagesArena{
		name:       name,
		pageSize:   ps,
		quantumMax: ps * 8,
		sem:        semaphore.NewWeighted(maxConcurrentImports),
	}
}

func (p *PagesArena) Name() string           { return p.name }
func (p *PagesArena) QuantumMax() uintptr    { return p.quantumMax }
func (p *PagesArena) PageSize() uintptr      { return p.pageSize }
func (p *PagesArena) AddImporter(i Importer) { p.importerSet.add(i) }
func (p *PagesArena) DelImporter(i Importer) { p.importerSet.del(i) }

// Alloc returns a region whose size is size rounded up to a whole number of
// pages.
func (p *PagesArena) Alloc(size uintptr, flags AllocFlags) (*Region, error) {
	size = unsafehelpers.AlignUp(size, p.pageSize)

	if flags.NonBlocking {
		if !p.sem.TryAcquire(1) {
			return nil, ErrOOM
		}
	} else if err := p.sem.Acquire(context.Background(), 1); err != nil {
		return nil, ErrOOM
	}
	defer p.sem.Release(1)

	mem, err := mmapAnon(size)
	if err != nil {
		return nil, ErrOOM
	}
	return NewRegion(mem), nil
}

// Free returns the region to the OS.
func (p *PagesArena) Free(r *Region) {
	if r == nil || r.Size() == 0 {
		return
	}
	_ = munmapAnon(r.Bytes())
}
