package blockdec

import "testing"

func TestBC7InvalidModeRejected(t *testing.T) {
	block := make([]byte, 16) // all-zero lsb has no set bit -> mode -1
	if _, ok := DecodeBC7(block); ok {
		t.Fatal("DecodeBC7 accepted a block with no mode bit set")
	}
}

func TestBC7Mode6ZeroPayloadBlock(t *testing.T) {
	// Mode 6: 1 subset, no partition, 2 endpoints, 7-bit RGB + 7-bit alpha,
	// 1 P-bit each, 4-bit indexes. Mode selector is bit 6 (0x40).
	block := make([]byte, 16)
	block[0] = 0x40 // mode = 6 (bit index 6 set)
	tile, ok := DecodeBC7(block)
	if !ok {
		t.Fatal("DecodeBC7 rejected a valid mode-6 block")
	}
	// All-zero payload after the mode bit decodes to black, alpha 0
	// (both endpoints zero, P-bits zero); just confirm it decodes without
	// panicking and produces a deterministic, fully-populated tile.
	for i, px := range tile {
		if px>>24 > 255 {
			t.Fatalf("pixel %d has invalid alpha %#x", i, px>>24)
		}
	}
}

func TestBC7ModeDetection(t *testing.T) {
	tests := []struct {
		dword0 uint32
		want   int
	}{
		{0x1, 0},
		{0x2, 1},
		{0x4, 2},
		{0x40, 6},
		{0x80, 7},
		{0x0, -1},
	}
	for _, tt := range tests {
		if got := bc7Mode(tt.dword0); got != tt.want {
			t.Errorf("bc7Mode(%#x) = %d, want %d", tt.dword0, got, tt.want)
		}
	}
}

func TestInterpolateComponentEndpointPassthrough(t *testing.T) {
	if got := interpolateComponent(2, 0, 10, 200); got != 10 {
		t.Errorf("index 0 = %d, want endpoint e0 (10)", got)
	}
	if got := interpolateComponent(2, 3, 10, 200); got != 200 {
		t.Errorf("index 3 (max for 2 bits) = %d, want endpoint e1 (200)", got)
	}
}

func TestBC7AnchorIndexSubsetZeroAlwaysZero(t *testing.T) {
	if got := bc7AnchorIndex(5, 0, 2); got != 0 {
		t.Errorf("subset 0 anchor = %d, want 0", got)
	}
}
