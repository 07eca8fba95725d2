package slab

import (
	"testing"
	"time"
	"unsafe"
)

func newTestDepot() *depot {
	return newDepot("test", 2, 8, 1, time.Hour, noopMetrics{})
}

func TestDepotTakeGiveRoundTrip(t *testing.T) {
	d := newTestDepot()
	if _, ok := d.takeNotEmpty(); ok {
		t.Fatal("takeNotEmpty on a fresh depot should report ok=false")
	}
	if _, ok := d.takeEmpty(); ok {
		t.Fatal("takeEmpty on a fresh depot should report ok=false")
	}

	m := newMagazine(d.Magsize())
	d.giveEmpty(m)

	got, ok := d.takeEmpty()
	if !ok || got != m {
		t.Fatalf("takeEmpty() = (%v, %v), want (%v, true)", got, ok, m)
	}
}

func TestDepotGiveRoutesByEmptiness(t *testing.T) {
	d := newTestDepot()

	full := newMagazine(2)
	full.Push(nil)
	full.Push(nil)
	empty := newMagazine(2)

	d.give(full)
	d.give(empty)

	if _, ok := d.takeNotEmpty(); !ok {
		t.Fatal("give() should have routed the non-empty magazine onto notEmpty")
	}
	if _, ok := d.takeEmpty(); !ok {
		t.Fatal("give() should have routed the empty magazine onto empty")
	}
}

func TestDepotMagsizeDefaultsAndBounds(t *testing.T) {
	d := newDepot("test", 0, 0, 1, time.Hour, noopMetrics{})
	if d.magsize != defaultMinMagsize {
		t.Fatalf("magsize = %d, want default %d", d.magsize, defaultMinMagsize)
	}
	if d.maxMagsize < d.magsize {
		t.Fatal("maxMagsize must never be less than the initial magsize")
	}
}

func TestDepotDrainEmptiesBothLists(t *testing.T) {
	d := newTestDepot()

	m1 := newMagazine(2)
	m1.Push(unsafe.Pointer(&addrPool[0]))
	m2 := newMagazine(2)

	d.give(m1)
	d.give(m2)

	var objs int
	var freed int
	d.drain(func(p unsafe.Pointer) { objs++ }, func(m *magazine) { freed++ })

	if objs != 1 {
		t.Fatalf("drain delivered %d objects, want 1", objs)
	}
	if freed != 2 {
		t.Fatalf("drain freed %d magazines, want 2", freed)
	}
	if !d.notEmpty.Empty() || !d.empty.Empty() {
		t.Fatal("both depot lists should be empty after drain")
	}
}
