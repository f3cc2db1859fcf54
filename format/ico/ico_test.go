package ico

import (
	"encoding/binary"
	"testing"

	"github.com/deepteams/retroimg"
)

// buildICO32 constructs a minimal standalone .ico: one ICONDIR entry
// pointing at a 16x16, 32-bpp, BI_RGB BITMAPINFOHEADER icon with
// biHeight=32 (positive, bottom-up per the doubled-height convention) and
// a 1-bpp AND mask with alternating column stripes (even columns masked).
func buildICO32() []byte {
	const w, h = 16, 16
	const maskStride = 4 // ALIGN_BYTES(4, 16/8) = 4
	const rowStride = w * 4
	imgOff := icoHeaderSize + direntSize
	bodyOff := imgOff + bihSize
	iconSize := rowStride * h
	maskSize := maskStride * h
	total := bodyOff + iconSize + maskSize

	buf := make([]byte, total)
	binary.LittleEndian.PutUint16(buf[2:4], typeIcon)
	binary.LittleEndian.PutUint16(buf[4:6], 1)

	e := buf[icoHeaderSize:]
	e[0], e[1] = w, h
	binary.LittleEndian.PutUint16(e[6:8], 32)
	binary.LittleEndian.PutUint32(e[8:12], uint32(bihSize+iconSize+maskSize))
	binary.LittleEndian.PutUint32(e[12:16], uint32(imgOff))

	bih := buf[imgOff:]
	binary.LittleEndian.PutUint32(bih[0:4], bihSize)
	binary.LittleEndian.PutUint32(bih[4:8], uint32(w))
	binary.LittleEndian.PutUint32(bih[8:12], uint32(2*h)) // doubled height, positive = bottom-up
	binary.LittleEndian.PutUint16(bih[12:14], 1)          // planes
	binary.LittleEndian.PutUint16(bih[14:16], 32)
	binary.LittleEndian.PutUint32(bih[16:20], biRGB)

	icon := buf[bodyOff : bodyOff+iconSize]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*rowStride + x*4
			icon[off+0] = 0x44       // B
			icon[off+1] = 0x55       // G
			icon[off+2] = byte(y)    // R: row index, to verify the post-decode flip
			icon[off+3] = 0x80       // A (partial, to check it survives on non-masked pixels)
		}
	}

	mask := buf[bodyOff+iconSize : bodyOff+iconSize+maskSize]
	for y := 0; y < h; y++ {
		mask[y*maskStride] = 0xAA // 10101010: even columns (MSB-first) masked
	}

	return buf
}

func TestIdentifyICO(t *testing.T) {
	data := buildICO32()
	ok, err := Reader{}.Identify(retroimg.NewSliceSource(data, "test.ico"))
	if err != nil || !ok {
		t.Fatalf("Identify() = %v, %v; want true, nil", ok, err)
	}
}

// TestDecode32BitMaskedBottomUp is grounded on the Win3.x 32-bpp + 1-bpp
// mask scenario: a positive biHeight means the stored row order is
// bottom-up relative to the icon's own top-down logical order, so the
// decoded image must come out vertically flipped relative to storage;
// mask-set pixels must be fully zeroed (not just alpha-cleared), and
// non-mask-set pixels keep their source alpha untouched.
func TestDecode32BitMaskedBottomUp(t *testing.T) {
	data := buildICO32()
	img, err := Reader{}.DecodeImage(retroimg.NewSliceSource(data, "test.ico"))
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if img.Width() != 16 || img.Height() != 16 {
		t.Fatalf("got %dx%d, want 16x16", img.Width(), img.Height())
	}

	stride := img.Stride()
	bits := img.Bits()
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			off := y*stride + x*4
			px := bits[off : off+4]
			masked := x%2 == 0
			if masked {
				if px[0] != 0 || px[1] != 0 || px[2] != 0 || px[3] != 0 {
					t.Fatalf("pixel(%d,%d) = %v, want fully zeroed (masked)", x, y, px)
				}
				continue
			}
			if px[3] != 0x80 {
				t.Errorf("pixel(%d,%d) alpha = %#x, want 0x80 (source alpha preserved)", x, y, px[3])
			}
			// Storage row y came from source row (15-y): bottom-up storage
			// is flipped back to top-down logical order by DecodeImage.
			wantR := byte(15 - y)
			if px[0] != 0x44 || px[1] != 0x55 || px[2] != wantR {
				t.Errorf("pixel(%d,%d) BGR = %v, want [0x44 0x55 %#x]", x, y, px[:3], wantR)
			}
		}
	}
}

func TestIdentifyRejectsBadHeader(t *testing.T) {
	ok, _ := Reader{}.Identify(retroimg.NewSliceSource(make([]byte, 32), "bad.ico"))
	if ok {
		t.Fatal("expected Identify to reject a zeroed header")
	}
}

// buildWin1Icon constructs a raw Win1.x icon: an 8-byte header (format,
// width, height, stride) followed by a 1-bpp mask and a 1-bpp bitmap, each
// width=8/height=2/stride=1. Row 0 is fully masked (transparent regardless
// of colour); row 1 is unmasked with an alternating bit pattern so both
// palette entries actually get exercised. When both is true, format's high
// byte is set to 2 (loadImage_Win1's "DIB and DDB both present" marker);
// the trailing DDB bytes themselves are never read by DecodeImage, since
// the DIB is always first and "best icon" for Win1.x is just that first
// bitmap.
func buildWin1Icon(both bool) []byte {
	const w, h, stride = 8, 2, 1
	iconSize := stride * h
	buf := make([]byte, win1HeaderSize+iconSize*2)

	format := uint16(0x0001)
	if both {
		format = 0x0201
	}
	binary.LittleEndian.PutUint16(buf[0:2], format)
	binary.LittleEndian.PutUint16(buf[2:4], w)
	binary.LittleEndian.PutUint16(buf[4:6], h)
	binary.LittleEndian.PutUint16(buf[6:8], stride)

	mask := buf[win1HeaderSize : win1HeaderSize+iconSize]
	mask[0] = 0xFF // row 0: fully masked
	icon := buf[win1HeaderSize+iconSize:]
	icon[0] = 0xAA // row 0: alternating, but masked away
	icon[1] = 0xAA // row 1: alternating, visible

	return buf
}

func TestIdentifyWin1(t *testing.T) {
	ok, err := Reader{}.Identify(retroimg.NewSliceSource(buildWin1Icon(false), "test.ico"))
	if err != nil || !ok {
		t.Fatalf("Identify() = %v, %v; want true, nil", ok, err)
	}
}

func TestFieldsWin1ReportsBitmapCount(t *testing.T) {
	single, err := Reader{}.Fields(retroimg.NewSliceSource(buildWin1Icon(false), "test.ico"))
	if err != nil {
		t.Fatalf("Fields (single): %v", err)
	}
	if v := fieldValue(single, "Image Count"); v != "1" {
		t.Errorf("single-bitmap Image Count = %q, want 1", v)
	}

	both, err := Reader{}.Fields(retroimg.NewSliceSource(buildWin1Icon(true), "test.ico"))
	if err != nil {
		t.Fatalf("Fields (both): %v", err)
	}
	if v := fieldValue(both, "Image Count"); v != "2" {
		t.Errorf("DIB+DDB Image Count = %q, want 2", v)
	}
	if v := fieldValue(both, "Generation"); v != "Win1.x" {
		t.Errorf("Generation = %q, want Win1.x", v)
	}
}

func fieldValue(fields []retroimg.Field, name string) string {
	for _, f := range fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// TestDecodeWin1MaskAndBits is grounded on loadImage_Win1's single
// mask-then-bitmap layout: row 0 is entirely mask-set and must decode
// transparent regardless of its underlying bit pattern, while row 1's
// alternating bits must come through as alternating palette indices 0/1
// with the mask-adjusted palette still reporting opaque black/white there.
func TestDecodeWin1MaskAndBits(t *testing.T) {
	img, err := Reader{}.DecodeImage(retroimg.NewSliceSource(buildWin1Icon(false), "test.ico"))
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if img.Width() != 8 || img.Height() != 2 {
		t.Fatalf("got %dx%d, want 8x2", img.Width(), img.Height())
	}

	row0 := img.ScanLine(0)
	for x, b := range row0 {
		if b&0x02 == 0 {
			t.Fatalf("row0[%d] = %d, want mask bit (0x02) set", x, b)
		}
	}

	row1 := img.ScanLine(1)
	want := []byte{1, 0, 1, 0, 1, 0, 1, 0} // 0xAA, MSB-first
	for x, b := range row1 {
		if b != want[x] {
			t.Errorf("row1[%d] = %d, want %d", x, b, want[x])
		}
	}

	pal := img.Palette()
	if pal.Entries[2] != 0x00FFFFFF || pal.Entries[3] != 0x00000000 {
		t.Errorf("masked palette entries = [%#x %#x], want [0x00ffffff 0x0]", pal.Entries[2], pal.Entries[3])
	}
}
