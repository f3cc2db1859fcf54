package pixel

import "testing"

// TestAlphaRules checks that bits 24..31 of every primitive's output
// satisfy its documented alpha rule.
func TestAlphaRules(t *testing.T) {
	// Opaque formats always produce 0xFF alpha.
	opaque := []uint32{
		RGB565ToARGB32(0xFFFF),
		BGR565ToARGB32(0x0000),
		RGB555ToARGB32(0x0000),
		BGR555ToARGB32(0x7FFF),
		xRGB4444ToARGB32(0x0FFF),
		RGB888ToARGB32(1, 2, 3),
		R8ToARGB32(5),
		RGB332ToARGB32(0xFF),
	}
	for i, got := range opaque {
		if got>>24 != 0xFF {
			t.Errorf("opaque[%d] = %#08x, want alpha 0xFF", i, got)
		}
	}

	// 1-bit alpha formats only ever produce {0x00, 0xFF}.
	for _, px := range []uint32{0x0000, 0x8000, 0xFFFF, 0x7FFF} {
		got := ARGB1555ToARGB32(px) >> 24
		if got != 0x00 && got != 0xFF {
			t.Errorf("ARGB1555ToARGB32(%#04x) alpha = %#02x, want 0x00 or 0xFF", px, got)
		}
	}

	// 3-bit alpha (RGB5A3 low branch) is monotonic in the 3-bit field.
	var prev uint32
	for a := uint32(0); a < 8; a++ {
		px := a << 12 // high bit clear => RGB4A3 branch
		got := RGB5A3ToARGB32(px) >> 24
		if got < prev {
			t.Errorf("RGB5A3 alpha not monotonic at a=%d: got %#02x < prev %#02x", a, got, prev)
		}
		prev = got
	}
}

func TestBGR555PS1Transparent(t *testing.T) {
	if got := BGR555PS1ToARGB32(0x0000); got != 0 {
		t.Errorf("BGR555PS1ToARGB32(0) = %#08x, want 0 (fully transparent)", got)
	}
	if got := BGR555PS1ToARGB32(0x7FFF) >> 24; got != 0xFF {
		t.Errorf("BGR555PS1ToARGB32(0x7FFF) alpha = %#02x, want 0xFF", got)
	}
}

func TestRGB5A3GameCubeExample(t *testing.T) {
	// S2 scenario-style check: high bit clear, (a3,r4,g4,b4) = (0b011,0x8,0x4,0x2).
	px := uint32(0b011)<<12 | 0x8<<8 | 0x4<<4 | 0x2
	got := RGB5A3ToARGB32(px)
	want := uint32(0x6D_88_44_22)
	if got != want {
		t.Errorf("RGB5A3ToARGB32(%#04x) = %#08x, want %#08x", px, got, want)
	}
}

func TestExpand5And6(t *testing.T) {
	if expand5to8(0x1F) != 0xFF {
		t.Errorf("expand5to8(0x1F) = %#x, want 0xFF", expand5to8(0x1F))
	}
	if expand5to8(0) != 0 {
		t.Errorf("expand5to8(0) = %#x, want 0", expand5to8(0))
	}
	if expand6to8(0x3F) != 0xFF {
		t.Errorf("expand6to8(0x3F) = %#x, want 0xFF", expand6to8(0x3F))
	}
}

func TestA2A3Lookup(t *testing.T) {
	want2 := [4]uint32{0, 0x55000000, 0xAA000000, 0xFF000000}
	for i, w := range want2 {
		if got := A2Lookup(uint32(i)); got != w {
			t.Errorf("A2Lookup(%d) = %#x, want %#x", i, got, w)
		}
	}
	if A3Lookup(7) != 0xFF000000 {
		t.Errorf("A3Lookup(7) = %#x, want 0xFF000000", A3Lookup(7))
	}
}

func TestRGB9E5(t *testing.T) {
	// Exponent field 24 (scale 2^0) with all-zero mantissas: black, but
	// alpha must still be opaque.
	px := uint32(15+9) << 27 // mantissas all zero -> black, alpha opaque
	got := RGB9E5ToARGB32(px)
	if got>>24 != 0xFF {
		t.Errorf("RGB9E5ToARGB32 alpha = %#x, want 0xFF", got>>24)
	}
}
