// Package slablist implements a small intrusive circular doubly-linked list,
// used by the cache's slab back-end to hold the empty/partial/full slab
// lists described in spec §4.1 and to relocate a slab between them in O(1)
// when its busy count crosses a boundary.
//
// The list does not own its nodes: a Node is embedded inside the structure
// that wants list membership (here, a Slab), so moving between lists never
// allocates. This mirrors the "back-references that are not ownership
// edges" design note for cyclic structures (slab <-> bufctl, cache <-> its
// per-CPU caches): the list is a view over existing objects, not a
// container that owns them.
//
// Adapted from the circular doubly-linked list mechanics of a CLOCK-style
// replacement ring (append/remove around a head pointer); the eviction
// policy itself has no home in this allocator (see DESIGN.md), only the
// underlying list shape survives.
//
// © 2025 slabcache authors. MIT License.
package slablist

// Node must be embedded (by value) in any struct that participates in a
// List. A Node belongs to at most one List at a time.
//
// Value holds the owning struct's own pointer (set once, at construction,
// by the embedder) so that callers of Front can recover it without the
// unsafe container-of arithmetic the C original relies on — storing a
// pointer-typed value in an interface is a plain word copy in Go, not a
// heap allocation, so this costs nothing on the hot path.
type Node struct {
	next, prev *Node
	owner      *List
	Value      any
}

// InList reports whether the node is currently linked into some List.
func (n *Node) InList() bool { return n.owner != nil }

// List is a circular doubly-linked list of Nodes, with a head pointer
// marking an arbitrary "front" (the spec never needs list order, only O(1)
// membership and O(1) take-an-arbitrary-element, so front is just
// "most recently inserted").
type List struct {
	head *Node
	size int
}

// Len returns the number of nodes currently in the list.
func (l *List) Len() int { return l.size }

// Empty reports whether the list has no nodes.
func (l *List) Empty() bool { return l.head == nil }

// PushFront links n into the list. n must not already belong to a list.
func (l *List) PushFront(n *Node) {
	if n.owner != nil {
		panic("slablist: node already linked")
	}
	n.owner = l
	if l.head == nil {
		n.next, n.prev = n, n
		l.head = n
	} else {
		tail := l.head.prev
		tail.next = n
		n.prev = tail
		n.next = l.head
		l.head.prev = n
		l.head = n
	}
	l.size++
}

// Remove unlinks n from the list it currently belongs to. It is a no-op if
// n is not linked into any list. Panics if n belongs to a different list
// than l, which would indicate a bookkeeping bug in the caller.
func (l *List) Remove(n *Node) {
	if n.owner == nil {
		return
	}
	if n.owner != l {
		panic("slablist: node belongs to a different list")
	}
	if n.next == n {
		l.head = nil
	} else {
		n.prev.next = n.next
		n.next.prev = n.prev
		if l.head == n {
			l.head = n.next
		}
	}
	n.next, n.prev, n.owner = nil, nil, nil
	l.size--
}

// Front returns an arbitrary node from the list (the current head), or nil
// if the list is empty. Used by the slab back-end's "pick any partial slab"
// and "take one from the empty list" operations, both of which are
// explicitly order-agnostic in spec §4.1.
func (l *List) Front() *Node { return l.head }

// MoveTo removes n from its current list (if any) and pushes it to the
// front of dst. Used when a slab's busy count crosses an empty/partial/full
// boundary and it must relocate between the cache's three lists.
func MoveTo(n *Node, dst *List) {
	if n.owner != nil {
		n.owner.Remove(n)
	}
	dst.PushFront(n)
}
