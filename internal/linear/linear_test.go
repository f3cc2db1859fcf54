package linear

import (
	"testing"

	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/pixel"
)

func TestFromCI8Basic(t *testing.T) {
	// 2x1 CI8 image, indices 0 and 1, RGB565 palette.
	palBuf := make([]byte, 256*2)
	// Entry 0: RGB565 0x0000 (opaque black, since RGB565 has no alpha).
	// Entry 1: RGB565 0xFFFF (opaque white).
	palBuf[2], palBuf[3] = 0xFF, 0xFF

	img, err := FromCI8(pixel.FormatRGB565, 2, 1, []byte{0, 1}, palBuf)
	if err != nil {
		t.Fatalf("FromCI8: %v", err)
	}
	if img.Format() != retroimg.FormatCI8 {
		t.Fatalf("format = %v, want CI8", img.Format())
	}
	if img.ScanLine(0)[0] != 0 || img.ScanLine(0)[1] != 1 {
		t.Fatalf("scanline = %v, want [0 1]", img.ScanLine(0))
	}
}

func TestFromCI4NibbleOrder(t *testing.T) {
	palBuf := make([]byte, 16*2)
	imgBuf := []byte{0x21} // two pixels: nibble 1 and nibble 2

	lsnImg, err := FromCI4(pixel.FormatRGB565, false, 2, 1, imgBuf, palBuf)
	if err != nil {
		t.Fatalf("FromCI4 LSN: %v", err)
	}
	if lsnImg.ScanLine(0)[0] != 1 || lsnImg.ScanLine(0)[1] != 2 {
		t.Fatalf("LSN scanline = %v, want [1 2]", lsnImg.ScanLine(0))
	}

	msnImg, err := FromCI4(pixel.FormatRGB565, true, 2, 1, imgBuf, palBuf)
	if err != nil {
		t.Fatalf("FromCI4 MSN: %v", err)
	}
	if msnImg.ScanLine(0)[0] != 2 || msnImg.ScanLine(0)[1] != 1 {
		t.Fatalf("MSN scanline = %v, want [2 1]", msnImg.ScanLine(0))
	}
}

func TestFromMono(t *testing.T) {
	// One row, 8 pixels: 0b10110000 -> [1,0,1,1,0,0,0,0]
	img, err := FromMono(8, 1, []byte{0b10110000})
	if err != nil {
		t.Fatalf("FromMono: %v", err)
	}
	want := []byte{1, 0, 1, 1, 0, 0, 0, 0}
	got := img.ScanLine(0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixel %d = %d, want %d (row=%v)", i, got[i], want[i], got)
		}
	}
	if img.Palette().Entries[0] != 0xFFFFFFFF || img.Palette().Entries[1] != 0xFF000000 {
		t.Fatalf("palette = %#x/%#x, want white/black", img.Palette().Entries[0], img.Palette().Entries[1])
	}
}

func TestFrom8L8(t *testing.T) {
	img, err := From8(pixel.FormatL8, 2, 1, []byte{0x80, 0xFF}, 0)
	if err != nil {
		t.Fatalf("From8: %v", err)
	}
	if img.Format() != retroimg.FormatARGB32 {
		t.Fatalf("format = %v, want ARGB32", img.Format())
	}
}

func TestFrom16RGB565(t *testing.T) {
	buf := []byte{0xFF, 0xFF} // little-endian 0xFFFF
	img, err := From16(pixel.FormatRGB565, 1, 1, buf, 0)
	if err != nil {
		t.Fatalf("From16: %v", err)
	}
	row := img.ScanLine(0)
	got := uint32(row[0]) | uint32(row[1])<<8 | uint32(row[2])<<16 | uint32(row[3])<<24
	if got>>24 != 0xFF {
		t.Fatalf("alpha = %#x, want 0xFF", got>>24)
	}
}

func TestFrom16RejectsInvalidStride(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0, 0}
	if _, err := From16(pixel.FormatRGB565, 1, 1, buf, 3); err == nil {
		t.Fatal("From16 with stride not a multiple of bytespp: want error")
	}
}

func TestFrom24RGB888ByteOrder(t *testing.T) {
	// Disk order (b,g,r) = (0x10, 0x20, 0x30) -> ARGB 0xFF302010.
	img, err := From24(pixel.FormatRGB888, 1, 1, []byte{0x10, 0x20, 0x30}, 0)
	if err != nil {
		t.Fatalf("From24: %v", err)
	}
	row := img.ScanLine(0)
	got := uint32(row[0]) | uint32(row[1])<<8 | uint32(row[2])<<16 | uint32(row[3])<<24
	want := uint32(0xFF302010)
	if got != want {
		t.Fatalf("pixel = %#08x, want %#08x", got, want)
	}
}

func TestFrom32FastPath(t *testing.T) {
	buf := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	img, err := From32(pixel.FormatARGB8888, 2, 1, buf, 0)
	if err != nil {
		t.Fatalf("From32: %v", err)
	}
	if string(img.Bits()) != string(buf) {
		t.Fatalf("bits = %v, want %v (identity fast path)", img.Bits(), buf)
	}
}

func TestFromCI8Truncated(t *testing.T) {
	palBuf := make([]byte, 256*2)
	if _, err := FromCI8(pixel.FormatRGB565, 4, 4, []byte{0, 1, 2}, palBuf); err == nil {
		t.Fatal("FromCI8 with short image buffer: want error")
	}
}
