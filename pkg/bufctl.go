package slab

// bufctl.go implements the external bookkeeping record and per-cache hash
// index of spec §4.1's bufctl layout: used for objects above the embedded
// cutoff, or for "no-touch" caches that may not use their own memory to
// thread a free-list link.
//
// The hash index's grow-in-place behavior (small static table, doubled into
// a heap-allocated table on demand, non-fatal on failure to grow) follows the
// same shape as the teacher's shard-map bucket-doubling (power-of-two bucket
// count, chained buckets, rehash-in-place), adapted here to a fixed-key-type
// (pointer) table with no locking of its own (the cache lock already
// serializes all access).
//
// © 2025 slabcache authors. MIT License.

import "unsafe"

// staticBufctlBuckets sizes the small table embedded directly in every
// bufctlIndex, avoiding a heap allocation for caches that never grow past a
// handful of live objects.
const staticBufctlBuckets = 16

// bufctlLoadFactor is the maximum average chain length before the index
// doubles its bucket count.
const bufctlLoadFactor = 2

// bufctl is the external bookkeeping record for one slot in a bufctl-mode
// slab. It carries a non-owning back-reference to its slab (spec §9: "not an
// ownership edge" — the slab owns its bufctls, never the reverse) and
// doubles as a node in exactly one of two singly-linked chains at a time:
// the owning slab's free chain while unallocated, or a hash bucket chain
// while allocated.
type bufctl struct {
	addr unsafe.Pointer
	slab *slab

	freeNext *bufctl // slab free-chain link, valid only while free
	hnext    *bufctl // hash bucket link, valid only while allocated
}

// bufctlIndex is the per-cache hash table mapping a live object's address to
// its bufctl, keyed by pointer hash.
type bufctlIndex struct {
	buckets []*bufctl
	static  [staticBufctlBuckets]*bufctl
	count   int
}

func newBufctlIndex() *bufctlIndex {
	idx := &bufctlIndex{}
	idx.buckets = idx.static[:]
	return idx
}

func pointerHash(p unsafe.Pointer, nbuckets int) int {
	x := uint64(uintptr(p))
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return int(x % uint64(nbuckets))
}

// insert adds b, keyed by b.addr, growing the table first if the load
// factor demands it. b must not already be present under any key.
func (idx *bufctlIndex) insert(b *bufctl) {
	if idx.count >= len(idx.buckets)*bufctlLoadFactor {
		idx.grow()
	}
	h := pointerHash(b.addr, len(idx.buckets))
	b.hnext = idx.buckets[h]
	idx.buckets[h] = b
	idx.count++
}

// lookup returns the bufctl for addr, or nil if addr is not currently
// outstanding.
func (idx *bufctlIndex) lookup(addr unsafe.Pointer) *bufctl {
	h := pointerHash(addr, len(idx.buckets))
	for b := idx.buckets[h]; b != nil; b = b.hnext {
		if b.addr == addr {
			return b
		}
	}
	return nil
}

// remove unlinks and returns the bufctl for addr, or nil if not found (the
// "bookkeeping-lookup failure" spec §7 calls fatal — callers must treat a
// nil result as a caller bug, not retry here).
func (idx *bufctlIndex) remove(addr unsafe.Pointer) *bufctl {
	h := pointerHash(addr, len(idx.buckets))
	var prev *bufctl
	for b := idx.buckets[h]; b != nil; b = b.hnext {
		if b.addr == addr {
			if prev == nil {
				idx.buckets[h] = b.hnext
			} else {
				prev.hnext = b.hnext
			}
			b.hnext = nil
			idx.count--
			return b
		}
		prev = b
	}
	return nil
}

// grow doubles the bucket count and rehashes every entry into the new
// table. Failure to allocate the larger table (caught from the allocator's
// panic, since Go's make has no error-return form) is non-fatal: the index
// keeps operating at the current, higher load factor, per spec §4.1.
//
// The old table is never explicitly freed. If it was the struct-embedded
// static array, it isn't a separate heap allocation to begin with (so
// "freeing" it is meaningless); if it was a previously-grown slice, dropping
// the only reference here makes it collectible, which is the Go-native
// equivalent of "freed only if not the embedded static table".
func (idx *bufctlIndex) grow() {
	newSize := len(idx.buckets) * 2
	var grown []*bufctl
	func() {
		defer func() { recover() }()
		grown = make([]*bufctl, newSize)
	}()
	if grown == nil {
		return
	}
	for _, head := range idx.buckets {
		for b := head; b != nil; {
			next := b.hnext
			h := pointerHash(b.addr, newSize)
			b.hnext = grown[h]
			grown[h] = b
			b = next
		}
	}
	idx.buckets = grown
}
