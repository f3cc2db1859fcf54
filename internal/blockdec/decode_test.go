package blockdec

import "testing"

func solidDXT1Block(color uint16) []byte {
	b := make([]byte, 8)
	copy(b[0:2], le16(color))
	copy(b[2:4], le16(color))
	// all index 0, color0==color1 so palette isn't ambiguous
	return b
}

func TestFromDXT1NonAlignedDimensionsCrop(t *testing.T) {
	// 5x5 logical image needs a 8x8 physical (2x2 tiles) decode then crop.
	buf := make([]byte, 4*8) // 4 tiles * 8 bytes
	block := solidDXT1Block(0xFFFF)
	for i := 0; i < 4; i++ {
		copy(buf[i*8:(i+1)*8], block)
	}
	img, err := FromDXT1(5, 5, buf, false)
	if err != nil {
		t.Fatalf("FromDXT1 failed: %v", err)
	}
	if img.Width() != 5 || img.Height() != 5 {
		t.Fatalf("got %dx%d, want 5x5 after crop", img.Width(), img.Height())
	}
}

func TestFromDXT1TruncatedBuffer(t *testing.T) {
	_, err := FromDXT1(4, 4, []byte{1, 2, 3}, false)
	if err == nil {
		t.Fatal("expected error for truncated DXT1 buffer")
	}
}

func TestFromDXT3AlignedExact(t *testing.T) {
	buf := make([]byte, 16) // one 4x4 block, DXT3 = 16 bytes
	for i := range buf[8:10] {
		_ = i
	}
	copy(buf[8:10], le16(0xFFFF))
	copy(buf[10:12], le16(0x0000))
	img, err := FromDXT3(4, 4, buf)
	if err != nil {
		t.Fatalf("FromDXT3 failed: %v", err)
	}
	if img.Width() != 4 || img.Height() != 4 {
		t.Fatalf("got %dx%d, want 4x4", img.Width(), img.Height())
	}
}

func TestFromBC7InvalidBlockDoesNotError(t *testing.T) {
	buf := make([]byte, 16) // zero block -> invalid mode, handled as black tile
	img, err := FromBC7(4, 4, buf)
	if err != nil {
		t.Fatalf("FromBC7 should not propagate a per-block decode failure: %v", err)
	}
	if img.Width() != 4 {
		t.Fatalf("got width %d, want 4", img.Width())
	}
}

func TestFromDXT1GCNRejectsOddMacroblockGrid(t *testing.T) {
	// 4x4 -> 1 tile in each dimension, not a multiple of the 2x2 macroblock grid.
	_, err := FromDXT1GCN(4, 4, make([]byte, 8))
	if err == nil {
		t.Fatal("expected error for a tile grid that isn't macroblock-aligned")
	}
}

func TestFromDXT1GCNAlignedGrid(t *testing.T) {
	// 8x8 -> 2x2 tiles -> exactly one macroblock.
	buf := make([]byte, 4*8)
	img, err := FromDXT1GCN(8, 8, buf)
	if err != nil {
		t.Fatalf("FromDXT1GCN failed: %v", err)
	}
	if img.Width() != 8 || img.Height() != 8 {
		t.Fatalf("got %dx%d, want 8x8", img.Width(), img.Height())
	}
}

func TestFromBC4SBITRedOnly(t *testing.T) {
	buf := make([]byte, 8)
	img, err := FromBC4(4, 4, buf)
	if err != nil {
		t.Fatalf("FromBC4 failed: %v", err)
	}
	sb := img.SBIT()
	if sb.Red != 8 || sb.Green != 0 || sb.Blue != 0 {
		t.Fatalf("sBIT = %+v, want red-only", sb)
	}
}

func TestAlignUp4(t *testing.T) {
	cases := map[int]int{1: 4, 4: 4, 5: 8, 8: 8, 9: 12}
	for in, want := range cases {
		if got := alignUp4(in); got != want {
			t.Errorf("alignUp4(%d) = %d, want %d", in, got, want)
		}
	}
}
