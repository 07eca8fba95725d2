package arena

import "testing"

func TestPagesArenaAllocIsPageAligned(t *testing.T) {
	p := NewPagesArena("test.pages", 4)
	r, err := p.Alloc(1, AllocFlags{})
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	defer p.Free(r)

	if r.Size() != p.PageSize() {
		t.Fatalf("Size() = %d, want one page (%d)", r.Size(), p.PageSize())
	}
	if uintptr(r.Base())%p.PageSize() != 0 {
		t.Fatal("region base should be page-aligned")
	}
}

func TestPagesArenaAllocRoundsUpToWholePages(t *testing.T) {
	p := NewPagesArena("test.pages", 4)
	want := p.PageSize() * 3
	r, err := p.Alloc(p.PageSize()*2+1, AllocFlags{})
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	defer p.Free(r)

	if r.Size() != want {
		t.Fatalf("Size() = %d, want %d", r.Size(), want)
	}
}

func TestPagesArenaNonBlockingSucceedsAfterPriorAllocReturns(t *testing.T) {
	p := NewPagesArena("test.pages", 1)

	held, err := p.Alloc(1, AllocFlags{})
	if err != nil {
		t.Fatalf("first Alloc() error = %v", err)
	}
	defer p.Free(held)

	// The semaphore only bounds concurrent *in-flight* Alloc calls, and this
	// implementation releases it before returning, so a second non-blocking
	// Alloc should still succeed once the first call has returned.
	r2, err := p.Alloc(1, AllocFlags{NonBlocking: true})
	if err != nil {
		t.Fatalf("second Alloc() error = %v, want nil", err)
	}
	p.Free(r2)
}

func TestPagesArenaQuantumMax(t *testing.T) {
	p := NewPagesArena("test.pages", 1)
	if p.QuantumMax() != p.PageSize()*8 {
		t.Fatalf("QuantumMax() = %d, want %d", p.QuantumMax(), p.PageSize()*8)
	}
}
