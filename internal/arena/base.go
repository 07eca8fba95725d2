package arena

// BaseArena is the bootstrap-safe source named in spec §4.6/§6: "a
// distinguished base arena available before bootstrap", used only by the
// four statically reserved caches so they never depend on the general pages
// arena (which itself would need a cache to allocate its own bookkeeping
// from — the exact circularity spec §9 calls out).
//
// It never calls into the OS: every region is a plain Go-heap []byte. This
// keeps it usable during process init, before anything resembling a page
// allocator exists, matching the teacher's "no pooling, no stats, no GC
// hooks" minimalism for low-level wrappers (internal/arena/arena.go) — this
// is deliberately the simplest possible Source implementation.
type BaseArena struct {
	importerSet
	name string
}

// NewBaseArena constructs a base arena. name is used only for logging.
func NewBaseArena(name string) *BaseArena {
	return &BaseArena{name: name}
}

func (b *BaseArena) Name() string { return b.name }

// Alloc always succeeds (short of the Go runtime itself failing to grow
// the heap, which surfaces as a fatal OOM outside this allocator's error
// model, matching spec §7's "blocking allocations never fail in the slab
// layer itself").
func (b *BaseArena) Alloc(size uintptr, _ AllocFlags) (*Region, error) {
	return NewRegion(make([]byte, size)), nil
}

// Free drops the reference to the backing slice; the Go GC reclaims it once
// nothing else points into it.
func (b *BaseArena) Free(_ *Region) {}

// QuantumMax is 0: the base arena has no quantum-cache concept, it only
// ever serves the four reserved caches' fixed-shape metadata.
func (b *BaseArena) QuantumMax() uintptr { return 0 }

func (b *BaseArena) AddImporter(imp Importer) { b.importerSet.add(imp) }
func (b *BaseArena) DelImporter(imp Importer) { b.importerSet.del(imp) }
