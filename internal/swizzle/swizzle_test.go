package swizzle

import "testing"

func TestDCTwiddleKnownValues(t *testing.T) {
	// i=0 has no set bits, so the interleave is always 0.
	if got := DCTwiddle(0); got != 0 {
		t.Errorf("DCTwiddle(0) = %d, want 0", got)
	}
	// i=1 (bit 0 set) spreads to bit 0 of the output: still 1.
	if got := DCTwiddle(1); got != 1 {
		t.Errorf("DCTwiddle(1) = %d, want 1", got)
	}
	// i=2 (bit 1 set) spreads bit1 to bit position j=1 once shifted: value 4.
	if got := DCTwiddle(2); got != 4 {
		t.Errorf("DCTwiddle(2) = %d, want 4", got)
	}
}

func TestDCTwiddleIndexOrigin(t *testing.T) {
	if got := DCTwiddleIndex(0, 0); got != 0 {
		t.Errorf("DCTwiddleIndex(0,0) = %d, want 0", got)
	}
}

func TestN3DSTileOrderIsPermutation(t *testing.T) {
	seen := make(map[uint8]bool, 64)
	for _, v := range N3DSTileOrder {
		if seen[v] {
			t.Fatalf("duplicate entry %d in N3DSTileOrder", v)
		}
		seen[v] = true
	}
	if len(seen) != 64 {
		t.Fatalf("N3DSTileOrder has %d distinct entries, want 64", len(seen))
	}
}

func TestUnswizzleIdentityRoundTrips(t *testing.T) {
	const w, h = 16, 8
	src := make([]uint8, w*h)
	for i := range src {
		src[i] = uint8(i)
	}
	dst := make([]uint8, w*h)
	Unswizzle(dst, src, w, h)

	// Every source index must land in exactly one destination slot (the
	// transform is a permutation of the w*h elements).
	seen := make([]bool, w*h)
	for _, v := range dst {
		if seen[v] {
			t.Fatalf("value %d written to more than one destination slot", v)
		}
		seen[v] = true
	}
	for i, s := range seen {
		if !s {
			t.Fatalf("source value %d never appears in dst", i)
		}
	}
}
