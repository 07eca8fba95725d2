package slab

// percpu.go implements the per-CPU cache layer of spec §4.3: a loaded and a
// previous magazine per logical CPU, with the fast-path state machine that
// tries the loaded magazine, then the previous magazine, then asks the depot
// to exchange a magazine, before ever touching the slab back-end.
//
// © 2025 slabcache authors. MIT License.

import "unsafe"

// cpuCache is one per-CPU slot: a loaded magazine (the one Alloc/Free act on
// first) and a previous magazine kept around so a cache that oscillates
// between "one object over" and "one object under" doesn't bounce magazines
// through the depot on every other call (spec §4.3's stated rationale for
// keeping two magazines per CPU instead of one).
type cpuCache struct {
	loaded, previous *magazine
}

// cpuSlot returns the percpu slot for the calling goroutine's pinned P,
// along with the unpin function the caller must defer. Indices beyond the
// array's length (GOMAXPROCS grew after the cache was sized) wrap via
// modulo: correctness does not depend on the mapping being a bijection, only
// on "this goroutine, right now, exclusively owns this slot" while pinned,
// and pinning plus modulo together still guarantee that — see DESIGN.md's
// Open Question note on per-CPU vs NUMA granularity.
func (c *Cache) cpuSlot() (*cpuCache, func()) {
	pid := runtime_procPin()
	idx := pid % len(c.percpu)
	return &c.percpu[idx], runtime_procUnpin
}

// fastAlloc attempts to satisfy an allocation entirely from the calling
// CPU's magazines, falling through to the depot if both are empty. Returns
// ok=false if the depot could not supply a non-empty magazine either, in
// which case the caller must fall through further, to the slab back-end.
func (c *Cache) fastAlloc() (unsafe.Pointer, bool) {
	slot, unpin := c.cpuSlot()
	defer unpin()

	if slot.loaded != nil {
		if p, ok := slot.loaded.Pop(); ok {
			return p, true
		}
	}
	if slot.previous != nil && !slot.previous.Empty() {
		slot.loaded, slot.previous = slot.previous, slot.loaded
		p, ok := slot.loaded.Pop()
		return p, ok
	}
	// Both magazines are empty (or this is the first call on this CPU and
	// loaded is nil). Ask the depot for a full magazine, retiring the
	// current loaded one as the new previous.
	full, ok := c.depot.takeNotEmpty()
	if !ok {
		return nil, false
	}
	if slot.loaded != nil {
		if slot.previous != nil {
			c.depot.giveEmpty(slot.previous)
		}
		slot.previous = slot.loaded
	}
	slot.loaded = full
	p, ok := slot.loaded.Pop()
	return p, ok
}

// fastFree attempts to return p entirely through the calling CPU's
// magazines, falling through to the depot if both are full. Returns false if
// the depot could not supply an empty magazine either, in which case the
// caller must free p directly to the slab back-end.
func (c *Cache) fastFree(p unsafe.Pointer) bool {
	slot, unpin := c.cpuSlot()
	defer unpin()

	if slot.loaded != nil && slot.loaded.Push(p) {
		return true
	}
	if slot.previous != nil && !slot.previous.Full() {
		slot.loaded, slot.previous = slot.previous, slot.loaded
		if slot.loaded.Push(p) {
			return true
		}
	}
	// Both magazines are full. Take an empty one from the depot, hand the
	// current (full) previous back as not-empty, shift the current (full)
	// loaded down into previous, and install the fresh empty one as loaded —
	// mirrors the symmetric shuffle in fastAlloc above.
	empty, ok := c.depot.takeEmpty()
	if !ok {
		return false
	}
	if slot.previous != nil {
		c.depot.giveNotEmpty(slot.previous)
	}
	slot.previous = slot.loaded
	slot.loaded = empty
	return slot.loaded.Push(p)
}
