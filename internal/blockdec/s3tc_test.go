package blockdec

import "testing"

func le16(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

func TestDXT1OpaqueBlock(t *testing.T) {
	// color0 > color1 numerically -> 4-colour palette, no transparency.
	block := make([]byte, 8)
	copy(block[0:2], le16(0xFFFF)) // white
	copy(block[2:4], le16(0x0000)) // black
	block[4] = 0x00                // all pixels index 0 (white)
	tile := DXT1(block, false)
	for i, px := range tile {
		if px != 0xFFFFFFFF {
			t.Fatalf("pixel %d = %#x, want white", i, px)
		}
	}
}

func TestDXT1TransparentVariant(t *testing.T) {
	// color0 <= color1 triggers the 3-colour + transparency branch when
	// colorTransparent is requested.
	block := make([]byte, 8)
	copy(block[0:2], le16(0x0000))
	copy(block[2:4], le16(0xFFFF))
	// all index 3 -> transparent in the _A1 variant
	block[4], block[5], block[6], block[7] = 0xFF, 0xFF, 0xFF, 0xFF
	tile := DXT1(block, true)
	for i, px := range tile {
		if px>>24 != 0 {
			t.Fatalf("pixel %d alpha = %#x, want fully transparent", i, px>>24)
		}
	}
}

func TestDXT1GCNTransparentAlwaysIndex3(t *testing.T) {
	block := make([]byte, 8)
	// big-endian colours, color0 <= color1
	block[0], block[1] = 0x00, 0x00
	block[2], block[3] = 0xFF, 0xFF
	block[4], block[5], block[6], block[7] = 0xFF, 0xFF, 0xFF, 0xFF
	tile := DXT1GCN(block)
	for i, px := range tile {
		if px>>24 != 0 {
			t.Fatalf("pixel %d alpha = %#x, want fully transparent (GCN always treats index 3 as alpha)", i, px>>24)
		}
	}
}

func TestDXT3FourBitAlpha(t *testing.T) {
	block := make([]byte, 16)
	// alpha nibble 0xF for every pixel -> full alpha via nibble replication (F|F0=FF)
	for i := 0; i < 8; i++ {
		block[i] = 0xFF
	}
	copy(block[8:10], le16(0xFFFF))
	copy(block[10:12], le16(0x0000))
	tile := DXT3(block)
	for i, px := range tile {
		if px>>24 != 0xFF {
			t.Fatalf("pixel %d alpha = %#x, want 0xFF", i, px>>24)
		}
	}
}

func TestDXT5AlphaEndpointsPassThrough(t *testing.T) {
	block := make([]byte, 16)
	block[0] = 255 // a0
	block[1] = 0   // a1
	// code field all zero -> every pixel selects code 0 -> a0 (255)
	copy(block[8:10], le16(0xFFFF))
	copy(block[10:12], le16(0x0000))
	tile := DXT5(block)
	for i, px := range tile {
		if px>>24 != 255 {
			t.Fatalf("pixel %d alpha = %#x, want 255 (code 0 selects a0)", i, px>>24)
		}
	}
}

func TestDecodeAlphaCodeEightStepRamp(t *testing.T) {
	// a0 > a1: codes 0 and 1 pass through the endpoints exactly.
	if got := decodeAlphaCode(0, 200, 50); got != 200 {
		t.Errorf("code 0 = %d, want 200", got)
	}
	if got := decodeAlphaCode(1, 200, 50); got != 50 {
		t.Errorf("code 1 = %d, want 50", got)
	}
}

func TestDecodeAlphaCodeSixStepRampWithFixedEnds(t *testing.T) {
	// a0 <= a1: codes 6 and 7 are the fixed 0/255 endpoints.
	if got := decodeAlphaCode(6, 50, 200); got != 0 {
		t.Errorf("code 6 = %d, want 0", got)
	}
	if got := decodeAlphaCode(7, 50, 200); got != 255 {
		t.Errorf("code 7 = %d, want 255", got)
	}
}

func TestBC4RedOnlyChannel(t *testing.T) {
	block := make([]byte, 8)
	block[0], block[1] = 100, 100 // a0 == a1, code 0 selects a0
	tile := BC4(block)
	for i, px := range tile {
		c := fromU32(px)
		if c.r != 100 || c.g != 0 || c.b != 0 || c.a != 0xFF {
			t.Fatalf("pixel %d = %+v, want r=100 g=0 b=0 a=FF", i, c)
		}
	}
}

func TestBC5RedGreenChannels(t *testing.T) {
	block := make([]byte, 16)
	block[0], block[1] = 10, 10
	block[8], block[9] = 20, 20
	tile := BC5(block)
	for i, px := range tile {
		c := fromU32(px)
		if c.r != 10 || c.g != 20 || c.b != 0 {
			t.Fatalf("pixel %d = %+v, want r=10 g=20 b=0", i, c)
		}
	}
}

func TestRGB565ToARGB32WhiteAndBlack(t *testing.T) {
	if got := rgb565ToARGB32(0xFFFF); got != 0xFFFFFFFF {
		t.Errorf("white = %#x, want 0xFFFFFFFF", got)
	}
	if got := rgb565ToARGB32(0x0000); got != 0xFF000000 {
		t.Errorf("black = %#x, want 0xFF000000", got)
	}
}
