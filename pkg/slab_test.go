package slab

import (
	"testing"
	"unsafe"

	"github.com/Voskan/slabcache/internal/arena"
)

func TestEmbeddedSlabAllocFreeAndState(t *testing.T) {
	const objSize = 16
	region := mustRegion(t, objSize*4)
	s := newEmbeddedSlab(nil, region, objSize)

	if s.state() != slabEmpty {
		t.Fatal("a freshly carved slab should start slabEmpty")
	}
	if s.total != 4 {
		t.Fatalf("total = %d, want 4", s.total)
	}

	var got []unsafe.Pointer
	for i := 0; i < 4; i++ {
		p := s.allocEmbedded()
		if p == nil {
			t.Fatalf("allocEmbedded() returned nil on slot %d", i)
		}
		got = append(got, p)
	}
	if s.state() != slabFull {
		t.Fatal("slab should be slabFull once every slot is carved")
	}
	if s.allocEmbedded() != nil {
		t.Fatal("allocEmbedded() on a full slab should return nil")
	}

	// Every returned slot address must be distinct.
	seen := map[unsafe.Pointer]bool{}
	for _, p := range got {
		if seen[p] {
			t.Fatalf("duplicate slot address %p", p)
		}
		seen[p] = true
	}

	s.freeEmbedded(got[0])
	if s.state() != slabPartial {
		t.Fatal("slab should be slabPartial after freeing one of four slots")
	}
	for _, p := range got[1:] {
		s.freeEmbedded(p)
	}
	if s.state() != slabEmpty {
		t.Fatal("slab should be slabEmpty after freeing every slot")
	}
}

func TestEmbeddedSlabFreeListIsLIFO(t *testing.T) {
	const objSize = 8
	region := mustRegion(t, objSize*3)
	s := newEmbeddedSlab(nil, region, objSize)

	a := s.allocEmbedded()
	b := s.allocEmbedded()
	s.freeEmbedded(a)
	s.freeEmbedded(b)

	// The two most recently freed slots must come back out in LIFO order:
	// b was freed last, so it must be the next one allocated.
	if got := s.allocEmbedded(); got != b {
		t.Fatalf("allocEmbedded() = %p, want %p (LIFO order)", got, b)
	}
	if got := s.allocEmbedded(); got != a {
		t.Fatalf("allocEmbedded() = %p, want %p (LIFO order)", got, a)
	}
}

func TestBufctlSlabAllocFreeAndState(t *testing.T) {
	const objSize = 32
	region := mustRegion(t, objSize*3)
	ctls := []*bufctl{{}, {}, {}}
	s := newBufctlSlab(nil, region, objSize, ctls)

	if s.state() != slabEmpty {
		t.Fatal("a freshly carved bufctl slab should start slabEmpty")
	}

	b1 := s.allocBufctl()
	b2 := s.allocBufctl()
	b3 := s.allocBufctl()
	if b1 == nil || b2 == nil || b3 == nil {
		t.Fatal("allocBufctl should hand out every bufctl before returning nil")
	}
	if s.allocBufctl() != nil {
		t.Fatal("allocBufctl on a full slab should return nil")
	}
	if s.state() != slabFull {
		t.Fatal("slab should be slabFull once every bufctl is carved")
	}
	if b1.addr == b2.addr || b2.addr == b3.addr {
		t.Fatal("each bufctl should describe a distinct slot address")
	}
	if b1.slab != s {
		t.Fatal("each bufctl's back-reference should point at the owning slab")
	}

	s.freeBufctlRecord(b1)
	if s.state() != slabPartial {
		t.Fatal("slab should be slabPartial after freeing one bufctl")
	}
}

func mustRegion(t *testing.T, size uintptr) *arena.Region {
	t.Helper()
	base := arena.NewBaseArena("test")
	r, err := base.Alloc(size, arena.AllocFlags{})
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}
	return r
}
