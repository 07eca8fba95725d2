package arena

import "github.com/Voskan/slabcache/internal/unsafehelpers"

// QuantumImportSize computes the bufctl-layout import size for a
// quantum-cache cache (spec §4.1): a power-of-two multiple, at least 3x, of
// the source arena's quantum maximum.
func QuantumImportSize(quantumMax uintptr) uintptr {
	if quantumMax == 0 {
		quantumMax = 1
	}
	size := quantumMax * 3
	// Round up to the next power of two.
	p := uintptr(1)
	for p < size {
		p <<= 1
	}
	return p
}

// FixedPageMultipleImportSize computes the bufctl-layout import size for a
// non-quantum-cache cache: objSize rounded up to a fixed multiple of pages,
// large enough to host at least minSlotsPerSlab objects.
func FixedPageMultipleImportSize(objSize, pageSize uintptr, minSlotsPerSlab int) uintptr {
	if minSlotsPerSlab < 1 {
		minSlotsPerSlab = 1
	}
	want := objSize * uintptr(minSlotsPerSlab)
	return unsafehelpers.AlignUp(want, pageSize)
}
