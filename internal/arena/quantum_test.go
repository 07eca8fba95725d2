package arena

import "testing"

func TestQuantumImportSizeIsPowerOfTwoAtLeastTripleQuantum(t *testing.T) {
	cases := []uintptr{1, 7, 64, 4096}
	for _, qmax := range cases {
		got := QuantumImportSize(qmax)
		if got < qmax*3 {
			t.Errorf("QuantumImportSize(%d) = %d, want >= %d", qmax, got, qmax*3)
		}
		if got&(got-1) != 0 {
			t.Errorf("QuantumImportSize(%d) = %d, not a power of two", qmax, got)
		}
	}
}

func TestQuantumImportSizeZeroQuantum(t *testing.T) {
	got := QuantumImportSize(0)
	if got == 0 {
		t.Fatal("QuantumImportSize(0) should still return a positive size")
	}
}

func TestFixedPageMultipleImportSize(t *testing.T) {
	const pageSize = 4096
	got := FixedPageMultipleImportSize(100, pageSize, 8)
	want := uintptr(pageSize) // 800 bytes rounds up to one 4096-byte page
	if got != want {
		t.Fatalf("FixedPageMultipleImportSize(100, 4096, 8) = %d, want %d", got, want)
	}

	got = FixedPageMultipleImportSize(1000, pageSize, 8)
	want = pageSize * 2 // 8000 bytes rounds up to two pages
	if got != want {
		t.Fatalf("FixedPageMultipleImportSize(1000, 4096, 8) = %d, want %d", got, want)
	}
}

func TestFixedPageMultipleImportSizeClampsMinSlots(t *testing.T) {
	got := FixedPageMultipleImportSize(100, 4096, 0)
	if got != 4096 {
		t.Fatalf("a non-positive minSlotsPerSlab should clamp to 1 slot, got %d", got)
	}
}
