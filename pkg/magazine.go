package slab

// magazine.go implements the magazine described in spec §4.2: "a plain
// bounded stack of pointers to already-constructed objects. Push when not
// full, pop when not empty; no other operations. Constructor: initialize
// count to zero. No destructor." The one piece of bookkeeping beyond a bare
// stack is list membership — a magazine sits in the depot's not-empty or
// empty list (internal/slablist) while it is not checked out to a per-CPU
// cache, so it embeds a slablist.Node rather than needing a separate
// wrapper allocation.
//
// © 2025 slabcache authors. MIT License.

import (
	"unsafe"

	"github.com/Voskan/slabcache/internal/slablist"
)

// magazine is a bounded LIFO stack of object pointers. Every magazine that
// belongs to the same cache has the same capacity (the cache's current
// magsize); the depot only ever hands out magazines it itself created at
// that capacity, so a magazine never needs to know its own size versus the
// cache's current target — rounds and cap are enough to drive Push/Pop.
type magazine struct {
	node slablist.Node // depot not-empty/empty list membership

	rounds int
	cap    int
	slots  []unsafe.Pointer
}

// newMagazine allocates an empty magazine with room for cap rounds.
func newMagazine(cap int) *magazine {
	m := &magazine{cap: cap, slots: make([]unsafe.Pointer, cap)}
	m.node.Value = m
	return m
}

// Push stores p in the magazine. Reports false if the magazine is full; the
// caller (the per-CPU cache) is responsible for exchanging a full magazine
// for an empty one before retrying.
func (m *magazine) Push(p unsafe.Pointer) bool {
	if m.rounds >= m.cap {
		return false
	}
	m.slots[m.rounds] = p
	m.rounds++
	return true
}

// Pop removes and returns the most recently pushed pointer. Reports false if
// the magazine is empty.
func (m *magazine) Pop() (unsafe.Pointer, bool) {
	if m.rounds == 0 {
		return nil, false
	}
	m.rounds--
	p := m.slots[m.rounds]
	m.slots[m.rounds] = nil
	return p, true
}

// Full reports whether the magazine has no room for another round.
func (m *magazine) Full() bool { return m.rounds >= m.cap }

// Empty reports whether the magazine holds no rounds.
func (m *magazine) Empty() bool { return m.rounds == 0 }

// Len reports the current number of rounds held.
func (m *magazine) Len() int { return m.rounds }

// magazineOf recovers the owning *magazine from a slablist.Node previously
// obtained from a depot list's Front(). Panics if n does not wrap a
// magazine, which would indicate depot/percpu bookkeeping corruption.
func magazineOf(n *slablist.Node) *magazine {
	m, ok := n.Value.(*magazine)
	if !ok {
		panic("slab: slablist node does not hold a magazine")
	}
	return m
}
