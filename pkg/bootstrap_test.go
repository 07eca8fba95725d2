package slab

import "testing"

func TestEnsureBootstrapIsSingletonAndOrdered(t *testing.T) {
	bs1 := ensureBootstrap()
	bs2 := ensureBootstrap()
	if bs1 != bs2 {
		t.Fatal("ensureBootstrap should return the same instance on every call")
	}
	if bs1.magazineCache == nil || bs1.cacheOfCaches == nil || bs1.slabRecordCache == nil || bs1.bufctlCache == nil {
		t.Fatal("all four reserved caches must be constructed")
	}
}

func TestReservedCachesServeAllocFree(t *testing.T) {
	bs := ensureBootstrap()
	for _, c := range []*Cache{bs.magazineCache, bs.cacheOfCaches, bs.slabRecordCache, bs.bufctlCache} {
		p, err := c.Alloc(AllocNonBlocking)
		if err != nil {
			t.Fatalf("reserved cache %q Alloc() error = %v", c.Name(), err)
		}
		c.Free(p)
		if c.Live() != 0 {
			t.Fatalf("reserved cache %q Live() = %d after round trip, want 0", c.Name(), c.Live())
		}
	}
}

func TestNewTaxesCacheOfCaches(t *testing.T) {
	bs := ensureBootstrap()
	before := bs.cacheOfCaches.Live()

	c, err := New("test.bootstraptax", recordSize(), 0, nil, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Destroy()

	// The tax round trip completes within New itself (alloc then deferred
	// free), so live count should have returned to its prior value by now.
	if after := bs.cacheOfCaches.Live(); after != before {
		t.Fatalf("cacheOfCaches.Live() after New() = %d, want %d (tax round trip should net to zero)", after, before)
	}
}
