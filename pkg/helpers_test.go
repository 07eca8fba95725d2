package slab

import (
	"testing"
	"time"
	"unsafe"

	"github.com/Voskan/slabcache/internal/arena"
)

// newTestCache builds a *Cache directly via newCacheRaw, bypassing New's
// global registration and bootstrap tax so package-level unit tests can
// construct many short-lived caches cheaply and in isolation from each
// other. cutoff == 0 forces bufctl layout; cutoff >= objSize forces
// embedded layout.
func newTestCache(t *testing.T, objSize, cutoff uintptr) *Cache {
	t.Helper()
	cfg := defaultConfig()
	cfg.cutoff = cutoff
	cfg.source = arena.NewBaseArena("test")
	cfg.minSlotsPerSlab = 4
	cfg.resizeWindow = time.Hour // keep depot resize out of the way by default
	cfg.perCPUCacheCount = 2

	c, err := newCacheRaw("test.cache", objSize, 0, nil, nil, nil, cfg)
	if err != nil {
		t.Fatalf("newCacheRaw() error = %v", err)
	}
	return c
}

type testRecord struct {
	tag int64
}

func recordSize() uintptr { return unsafe.Sizeof(testRecord{}) }
