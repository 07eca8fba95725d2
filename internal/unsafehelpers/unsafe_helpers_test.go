package unsafehelpers

import (
	"testing"
	"unsafe"
)

func TestAlignUp(t *testing.T) {
	cases := []struct{ x, align, want uintptr }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{4095, 4096, 4096},
		{4096, 4096, 4096},
	}
	for _, c := range cases {
		if got := AlignUp(c.x, c.align); got != c.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", c.x, c.align, got, c.want)
		}
	}
}

func TestAlignDown(t *testing.T) {
	cases := []struct{ x, align, want uintptr }{
		{0, 8, 0},
		{7, 8, 0},
		{8, 8, 8},
		{9, 8, 8},
		{4097, 4096, 4096},
	}
	for _, c := range cases {
		if got := AlignDown(c.x, c.align); got != c.want {
			t.Errorf("AlignDown(%d, %d) = %d, want %d", c.x, c.align, got, c.want)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	trues := []uintptr{1, 2, 4, 8, 1024, 1 << 20}
	for _, x := range trues {
		if !IsPowerOfTwo(x) {
			t.Errorf("IsPowerOfTwo(%d) = false, want true", x)
		}
	}
	falses := []uintptr{0, 3, 5, 6, 100, 1023}
	for _, x := range falses {
		if IsPowerOfTwo(x) {
			t.Errorf("IsPowerOfTwo(%d) = true, want false", x)
		}
	}
}

func TestAddAndSubRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	base := unsafe.Pointer(unsafe.SliceData(buf))

	p := Add(base, 40)
	if Sub(p, base) != 40 {
		t.Fatalf("Sub(Add(base, 40), base) = %d, want 40", Sub(p, base))
	}
}

func TestPtrSlice(t *testing.T) {
	arr := [4]int32{1, 2, 3, 4}
	s := PtrSlice(&arr[0], 4)
	if len(s) != 4 || s[0] != 1 || s[3] != 4 {
		t.Fatalf("PtrSlice = %v, want [1 2 3 4]", s)
	}
}

func TestPtrSliceZeroLength(t *testing.T) {
	var x int
	if s := PtrSlice(&x, 0); s != nil {
		t.Fatalf("PtrSlice(_, 0) = %v, want nil", s)
	}
}

func TestByteSliceFrom(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	base := unsafe.Pointer(unsafe.SliceData(buf))

	got := ByteSliceFrom(base, 3)
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("ByteSliceFrom = %v, want [1 2 3]", got)
	}
}
