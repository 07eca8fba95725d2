package slab

// depot.go implements the shared magazine depot of spec §4.4: two lists
// (not-empty, empty), O(1) take/return at the head of each, and the
// contention-driven resize state machine that grows magsize when the depot
// lock itself becomes a bottleneck.
//
// The lock is internal/winlock.Lock rather than a bare sync.Mutex precisely
// because the resize state machine needs to know whether an acquisition
// blocked and, if so, when the wait began — exactly the signal winlock
// reports and a plain mutex cannot.
//
// © 2025 slabcache authors. MIT License.

import (
	"time"
	"unsafe"

	"github.com/Voskan/slabcache/internal/slablist"
	"github.com/Voskan/slabcache/internal/winlock"
)

const (
	defaultResizeWindow    = time.Second
	defaultResizeThreshold = 1
	defaultMinMagsize      = 4
	defaultMaxMagsize      = 512
)

type depot struct {
	lock     winlock.Lock
	notEmpty slablist.List
	empty    slablist.List

	magsize         int // current target capacity; monotonically non-decreasing
	maxMagsize      int
	resizeThreshold int
	window          *winlock.Window

	metrics metricsSink
	name    string
}

func newDepot(name string, initialMagsize, maxMagsize, resizeThreshold int, resizeWindow time.Duration, m metricsSink) *depot {
	if initialMagsize < 1 {
		initialMagsize = defaultMinMagsize
	}
	if maxMagsize < initialMagsize {
		maxMagsize = initialMagsize
	}
	return &depot{
		magsize:         initialMagsize,
		maxMagsize:      maxMagsize,
		resizeThreshold: resizeThreshold,
		window:          winlock.NewWindow(resizeWindow),
		metrics:         m,
		name:            name,
	}
}

// withLock runs fn while holding the depot lock, performing the contention
// accounting described in spec §4.4 around the acquisition itself.
func (d *depot) withLock(fn func()) {
	contended, waitStart := d.lock.Acquire()
	defer d.lock.Release()

	if contended && !d.notEmpty.Empty() {
		if d.window.Observe(waitStart, d.resizeThreshold) {
			if d.magsize < d.maxMagsize {
				d.magsize++
				d.metrics.setMagsize(d.name, d.magsize)
			}
		}
	}
	fn()
}

// Magsize returns the depot's current target magazine capacity.
func (d *depot) Magsize() int {
	var v int
	d.withLock(func() { v = d.magsize })
	return v
}

// takeNotEmpty removes and returns a magazine from the not-empty list.
func (d *depot) takeNotEmpty() (*magazine, bool) {
	var mag *magazine
	d.withLock(func() {
		if n := d.notEmpty.Front(); n != nil {
			d.notEmpty.Remove(n)
			mag = magazineOf(n)
		}
	})
	return mag, mag != nil
}

// takeEmpty removes and returns a magazine from the empty list.
func (d *depot) takeEmpty() (*magazine, bool) {
	var mag *magazine
	d.withLock(func() {
		if n := d.empty.Front(); n != nil {
			d.empty.Remove(n)
			mag = magazineOf(n)
		}
	})
	return mag, mag != nil
}

// giveNotEmpty returns a magazine to the not-empty list. Used when a per-CPU
// cache retires its full previous magazine during a fast-path exchange.
func (d *depot) giveNotEmpty(m *magazine) {
	d.withLock(func() { d.notEmpty.PushFront(&m.node) })
}

// giveEmpty returns a magazine to the empty list.
func (d *depot) giveEmpty(m *magazine) {
	d.withLock(func() { d.empty.PushFront(&m.node) })
}

// give routes m to the correct list based on its current round count —
// spec's general "Return" operation, used by Cache.Destroy to hand each
// per-CPU magazine back before drain, and by any path that doesn't already
// know which list a magazine belongs on.
func (d *depot) give(m *magazine) {
	if m.Empty() {
		d.giveEmpty(m)
	} else {
		d.giveNotEmpty(m)
	}
}

// drain empties both lists entirely, per spec §4.4's destroy-time contract:
// every not-empty magazine has each of its objects handed to onObject (the
// destructor + slab-free path), then every magazine (from both lists) is
// itself freed via freeMag.
func (d *depot) drain(onObject func(p unsafe.Pointer), freeMag func(*magazine)) {
	d.withLock(func() {
		for {
			n := d.notEmpty.Front()
			if n == nil {
				break
			}
			d.notEmpty.Remove(n)
			m := magazineOf(n)
			for {
				p, ok := m.Pop()
				if !ok {
					break
				}
				onObject(p)
			}
			freeMag(m)
		}
		for {
			n := d.empty.Front()
			if n == nil {
				break
			}
			d.empty.Remove(n)
			freeMag(magazineOf(n))
		}
	})
}
