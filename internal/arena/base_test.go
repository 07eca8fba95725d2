package arena

import "testing"

func TestBaseArenaAllocNeverFails(t *testing.T) {
	b := NewBaseArena("test.base")
	if b.Name() != "test.base" {
		t.Fatalf("Name() = %q, want %q", b.Name(), "test.base")
	}
	if b.QuantumMax() != 0 {
		t.Fatalf("QuantumMax() = %d, want 0", b.QuantumMax())
	}

	r, err := b.Alloc(128, AllocFlags{})
	if err != nil {
		t.Fatalf("Alloc() error = %v, want nil", err)
	}
	if r.Size() != 128 {
		t.Fatalf("Size() = %d, want 128", r.Size())
	}

	b.Free(r) // must not panic; base arena frees are a no-op
}

func TestBaseArenaAddDelImporter(t *testing.T) {
	b := NewBaseArena("test.base")
	imp := &fakeImporter{}
	b.AddImporter(imp)
	b.ReapAll()
	if imp.reaped != 1 {
		t.Fatalf("reaped = %d, want 1", imp.reaped)
	}
	b.DelImporter(imp)
	b.ReapAll()
	if imp.reaped != 1 {
		t.Fatalf("reaped after DelImporter = %d, want 1", imp.reaped)
	}
}
