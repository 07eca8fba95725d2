package slab

import (
	"testing"
	"unsafe"
)

func TestMagazinePushPopLIFO(t *testing.T) {
	m := newMagazine(4)
	a, b, c := unsafe.Pointer(&struct{}{}), unsafe.Pointer(&struct{}{}), unsafe.Pointer(&struct{}{})

	for _, p := range []unsafe.Pointer{a, b, c} {
		if !m.Push(p) {
			t.Fatal("Push should succeed while under capacity")
		}
	}
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}

	// LIFO order: last pushed pops first.
	for _, want := range []unsafe.Pointer{c, b, a} {
		got, ok := m.Pop()
		if !ok || got != want {
			t.Fatalf("Pop() = (%p, %v), want (%p, true)", got, ok, want)
		}
	}
}

func TestMagazineFullAndEmpty(t *testing.T) {
	m := newMagazine(2)
	if !m.Empty() {
		t.Fatal("a fresh magazine should be Empty()")
	}

	m.Push(unsafe.Pointer(&struct{}{}))
	m.Push(unsafe.Pointer(&struct{}{}))
	if !m.Full() {
		t.Fatal("magazine at capacity should report Full()")
	}
	if m.Push(unsafe.Pointer(&struct{}{})) {
		t.Fatal("Push on a full magazine should return false")
	}

	m.Pop()
	m.Pop()
	if !m.Empty() {
		t.Fatal("magazine drained of every round should report Empty()")
	}
	if _, ok := m.Pop(); ok {
		t.Fatal("Pop on an empty magazine should return ok=false")
	}
}

func TestMagazineOfRoundTrip(t *testing.T) {
	m := newMagazine(1)
	got := magazineOf(&m.node)
	if got != m {
		t.Fatal("magazineOf should recover the owning magazine from its own node")
	}
}

func TestMagazineOfPanicsOnForeignNode(t *testing.T) {
	s := &slab{}
	s.node.Value = s

	defer func() {
		if recover() == nil {
			t.Fatal("magazineOf on a node that doesn't wrap a magazine should panic")
		}
	}()
	magazineOf(&s.node)
}
