// Package unsafehelpers centralises **all** unavoidable usage of the
// `unsafe` standard‑library package so that the rest of slabcache stays clean
// and easier to audit. Every helper is documented with clear pre‑/post‑
// conditions.
//
// ⚠️  **DISCLAIMER**   These helpers deliberately break the Go memory‑safety
// model for the sake of zero‑allocation conversions over slab-owned memory.
// Use ONLY inside this repository; they are not part of the public API and
// may change without notice. Misuse will lead to subtle data‑races or
// garbage‑collector corruption.
//
// All functions are `go:linkname`‑free, cgo‑free and pure Go 1.24.
//
// © 2025 slabcache authors. MIT License.
package unsafehelpers

import "unsafe"

/* -------------------------------------------------------------------------
   1. Generic pointer <-> slice helpers
   ------------------------------------------------------------------------- */

// PtrSlice converts an arbitrary *T pointer + element count into a `[]T`
// without copying. Useful when a region import needs to be treated as an
// array of fixed-size slots for iteration. The slice is still backed by the
// region's memory and thus safe from GC, but the usual rules about region
// lifetime apply (the owning Slab must outlive the slice).
func PtrSlice[T any](ptr *T, n int) []T {
	if n == 0 {
		return nil
	}
	return unsafe.Slice(ptr, n)
}

// ByteSliceFrom returns a []byte view of raw memory starting at `ptr` with
// the given length. Caller must ensure the memory block is at least `length`
// bytes.
func ByteSliceFrom(ptr unsafe.Pointer, length uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), length)
}

/* -------------------------------------------------------------------------
   2. Alignment helpers
   ------------------------------------------------------------------------- */

// AlignUp rounds x up to the nearest multiple of align (which must be a
// power of two). Fast bit‑twiddling alternative to math.Ceil for sizes.
func AlignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}

// AlignDown rounds x down to the nearest multiple of align (which must be a
// power of two). Used to find the page (and therefore the slab record) that
// owns a given object address in the embedded layout.
func AlignDown(x, align uintptr) uintptr {
	return x &^ (align - 1)
}

// IsPowerOfTwo returns true if x is a power of two (exactly one bit set).
func IsPowerOfTwo(x uintptr) bool {
	return x != 0 && (x&(x-1)) == 0
}

/* -------------------------------------------------------------------------
   3. Raw pointer arithmetic
   ------------------------------------------------------------------------- */

// Add returns p advanced by off bytes. The result is only valid as long as
// the memory block p points into is kept alive by its owner.
func Add(p unsafe.Pointer, off uintptr) unsafe.Pointer {
	return unsafe.Pointer(uintptr(p) + off)
}

// Sub returns the byte distance between two pointers into the same block
// (a - b).
func Sub(a, b unsafe.Pointer) uintptr {
	return uintptr(a) - uintptr(b)
}
