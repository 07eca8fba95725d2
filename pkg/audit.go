package slab

// audit.go is a supplement beyond the core allocator contract (SPEC_FULL.md
// §4): an optional Badger-backed journal of cache lifecycle events (create,
// destroy), in the same "open an embedded KV store, txn.Update on a
// non-hot-path callback" shape the teacher's examples/disk_eject uses
// Badger for — there, to persist evicted values; here, to persist an
// append-only audit trail a deployment can replay for incident review.
// Never touched on Alloc/Free.
//
// © 2025 slabcache authors. MIT License.

import (
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

type auditEvent string

const (
	auditEventCreate  auditEvent = "create"
	auditEventDestroy auditEvent = "destroy"
	auditEventGrow    auditEvent = "grow"
	auditEventReap    auditEvent = "reap"
)

type auditRecord struct {
	Cache string     `json:"cache"`
	Event auditEvent `json:"event"`
	AtNS  int64      `json:"at_ns"`
}

type auditLog struct {
	db  *badger.DB
	seq uint64
}

func openAuditLog(path string) (*auditLog, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("slab: open audit log: %w", err)
	}
	return &auditLog{db: db}, nil
}

// record appends one lifecycle event. Errors are swallowed beyond the
// caller's logger — a missing audit entry must never fail a live
// allocation or destroy operation.
func (a *auditLog) record(cache string, ev auditEvent) {
	a.seq++
	rec := auditRecord{Cache: cache, Event: ev, AtNS: time.Now().UnixNano()}
	body, err := json.Marshal(rec)
	if err != nil {
		return
	}
	key := fmt.Sprintf("%s/%020d", cache, a.seq)
	_ = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), body)
	})
}

// Close releases the underlying Badger handle.
func (a *auditLog) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}
