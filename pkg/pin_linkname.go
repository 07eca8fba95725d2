package slab

// pin_linkname.go pulls the runtime's processor-pinning primitives the same
// way sync.Pool does, via go:linkname onto sync's own (already-linknamed)
// wrappers around the runtime: sync.runtime_procPin / sync.runtime_procUnpin.
// Grounded directly in the retrieved Go runtime source (runtime/mcache.go):
// every mcache operation reads the active P via getg().m.p.ptr(), i.e. "which
// logical CPU am I currently running on, and don't let that change out from
// under me" — exactly the per-CPU cache binding spec §4.3 wants, and the
// nearest thing user-mode Go has to masking interrupts around a per-CPU fast
// path.
//
// procPin increments the calling M's lock count (the same counter goroutine
// preemption checks) and returns the current P's id; procUnpin decrements
// it. Nothing else may touch this Cache's percpu[pid] slot while pinned,
// because the runtime will not hand this P to a different M, and this
// goroutine will not itself migrate — note that it CAN still block (e.g. on
// the depot's winlock.Lock while exchanging magazines): gopark-based
// blocking works regardless of the pin count, it only suppresses asynchronous
// preemption and GC P-stealing, so a brief blocking call inside a pinned
// section is safe and is exactly what the per-CPU fast path does when it
// must fall through to the depot.
//
// This relies on linkname access to an unexported runtime symbol via the
// sync package's own forwarding declarations, the same technique sync.Pool
// itself uses internally and a handful of third-party low-level libraries
// rely on (e.g. goroutine-local-storage shims). Recent Go toolchains
// increasingly restrict push/pull linkname pairs to an allow-list; if a
// future Go version closes this particular pull, the fallback is a plain
// atomic round-robin counter (worse locality, no correctness change).
//
// © 2025 slabcache authors. MIT License.

import _ "unsafe" // for go:linkname

//go:linkname runtime_procPin sync.runtime_procPin
func runtime_procPin() int

//go:linkname runtime_procUnpin sync.runtime_procUnpin
func runtime_procUnpin()
