package segapvr

import (
	"encoding/binary"
	"testing"

	"github.com/deepteams/retroimg"
)

// putHeader writes a 16-byte PVR_Header (no GBIX prefix) at the start of
// buf: magic, length, width, height (little-endian), px_format,
// img_data_type.
func putHeader(buf []byte, magic string, width, height int, pxFormat, imgDataType byte) {
	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(buf)-8))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(width))
	binary.LittleEndian.PutUint16(buf[10:12], uint16(height))
	buf[12] = pxFormat
	buf[13] = imgDataType
}

func TestIdentifyRejectsGarbage(t *testing.T) {
	ok, _ := Reader{}.Identify(retroimg.NewSliceSource(make([]byte, 64), "bad.pvr"))
	if ok {
		t.Fatal("expected Identify to reject a zeroed buffer")
	}
}

func TestReadHeaderGBIXPrefix(t *testing.T) {
	buf := make([]byte, 8+16+64)
	copy(buf[0:4], "GBIX")
	binary.LittleEndian.PutUint32(buf[4:8], 8)
	putHeader(buf[16:], "PVRT", 8, 8, pxRGB565, pvrImgRectangle)

	h, err := readHeader(retroimg.NewSliceSource(buf, "gbix.pvr"))
	if err != nil {
		t.Fatalf("readHeader failed: %v", err)
	}
	if h.kind != kindPVR {
		t.Fatalf("kind = %v, want kindPVR", h.kind)
	}
	if h.gbixLen != 16 {
		t.Fatalf("gbixLen = %d, want 16", h.gbixLen)
	}
	if h.width != 8 || h.height != 8 {
		t.Fatalf("got %dx%d, want 8x8", h.width, h.height)
	}
}

func TestReadHeaderSVRDisambiguation(t *testing.T) {
	buf := make([]byte, 64)
	putHeader(buf, "PVRT", 128, 128, svrPxBGR5A3, svrImgIndex8BGR5A3Square)

	h, err := readHeader(retroimg.NewSliceSource(buf, "test.svr"))
	if err != nil {
		t.Fatalf("readHeader failed: %v", err)
	}
	if h.kind != kindSVR {
		t.Fatalf("kind = %v, want kindSVR (shares PVRT magic with Dreamcast PVR)", h.kind)
	}
}

func TestReadHeaderGVRBigEndianDims(t *testing.T) {
	buf := make([]byte, 64)
	copy(buf[0:4], "GVRT")
	binary.LittleEndian.PutUint32(buf[4:8], 56)
	binary.BigEndian.PutUint16(buf[8:10], 32)
	binary.BigEndian.PutUint16(buf[10:12], 16)
	buf[13] = gvrImgRGB5A3

	h, err := readHeader(retroimg.NewSliceSource(buf, "test.gvr"))
	if err != nil {
		t.Fatalf("readHeader failed: %v", err)
	}
	if h.kind != kindGVR {
		t.Fatalf("kind = %v, want kindGVR", h.kind)
	}
	if h.width != 32 || h.height != 16 {
		t.Fatalf("got %dx%d, want 32x16 (big-endian fields)", h.width, h.height)
	}
}

// TestDecodeDreamcastSquareTwiddled builds a minimal 2x2 square-twiddled
// RGB565 PVR from a hand-picked source layout (for a 2x2 image the twiddle
// map is the identity on {0,1}, so srcIdx(x,y) = (x<<1)|y) and checks that
// it decodes to a 2x2 image whose pixel (0,0) is opaque.
func TestDecodeDreamcastSquareTwiddled(t *testing.T) {
	const w, h = 2, 2
	total := pvrHeaderSize + w*h*2
	buf := make([]byte, total)
	putHeader(buf, "PVRT", w, h, pxRGB565, pvrImgSquareTwiddled)

	// srcIdx order for (x,y) in row-major destination order:
	// (0,0)->0, (1,0)->2, (0,1)->1, (1,1)->3
	colors := [4]uint16{0x001F, 0xF800, 0x07E0, 0xFFFF} // indices 0..3
	imgBuf := buf[pvrHeaderSize:]
	for i, c := range colors {
		binary.LittleEndian.PutUint16(imgBuf[i*2:], c)
	}

	img, err := Reader{}.DecodeImage(retroimg.NewSliceSource(buf, "test.pvr"))
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if img.Width() != w || img.Height() != h {
		t.Fatalf("got %dx%d, want %dx%d", img.Width(), img.Height(), w, h)
	}

	// (0,0): srcIdx 0 -> colors[0] 0x001F (blue) -> ARGB32 should have blue channel set, alpha opaque.
	px := img.ScanLine(0)[0:4]
	if px[3] == 0 {
		t.Fatalf("pixel(0,0) alpha = 0, want opaque")
	}
}

// TestDecodeSVRIndexedBitSwapAndPaletteMismatchDiagnostic builds a minimal
// SVR CI8 image (below the unswizzle size threshold) whose image-data-type
// implies ABGR8 palette entries while px_format says BGR5A3, and checks
// that the mismatch is recorded in Diagnostics without failing decode.
func TestDecodeSVRIndexedBitSwapAndPaletteMismatchDiagnostic(t *testing.T) {
	const w, h = 4, 4
	palBytes := 256 * 2 // px_format says BGR5A3: 2 bytes/entry
	total := pvrHeaderSize + palBytes + w*h
	buf := make([]byte, total)
	// img_data_type says "ABGR8" (Index8ABGR8Square) while px_format says BGR5A3.
	putHeader(buf, "PVRT", w, h, svrPxBGR5A3, svrImgIndex8ABGR8Square)

	palOff := pvrHeaderSize
	for i := 0; i < 256; i++ {
		binary.LittleEndian.PutUint16(buf[palOff+i*2:], 0x8000)
	}
	imgOff := palOff + palBytes
	for i := 0; i < w*h; i++ {
		buf[imgOff+i] = byte(i)
	}

	img, err := Reader{}.DecodeImage(retroimg.NewSliceSource(buf, "test.svr"))
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if len(img.Diagnostics) == 0 {
		t.Fatal("expected a palette-format mismatch diagnostic")
	}
}

func TestDecodeGVRRejectsUnimplementedI4(t *testing.T) {
	buf := make([]byte, pvrHeaderSize+32)
	copy(buf[0:4], "GVRT")
	binary.LittleEndian.PutUint32(buf[4:8], 24)
	binary.BigEndian.PutUint16(buf[8:10], 8)
	binary.BigEndian.PutUint16(buf[10:12], 8)
	buf[13] = gvrImgI4

	_, err := Reader{}.DecodeImage(retroimg.NewSliceSource(buf, "test.gvr"))
	if err == nil {
		t.Fatal("expected an error decoding GVR_IMG_I4 (unimplemented upstream too)")
	}
}

func TestDecodeGVRRGB5A3Tiled(t *testing.T) {
	const w, h = 4, 4
	buf := make([]byte, pvrHeaderSize+w*h*2)
	copy(buf[0:4], "GVRT")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(buf)-8))
	binary.BigEndian.PutUint16(buf[8:10], w)
	binary.BigEndian.PutUint16(buf[10:12], h)
	buf[13] = gvrImgRGB5A3

	imgBuf := buf[pvrHeaderSize:]
	for i := 0; i < w*h; i++ {
		binary.BigEndian.PutUint16(imgBuf[i*2:], 0x8000|uint16(i))
	}

	img, err := Reader{}.DecodeImage(retroimg.NewSliceSource(buf, "test.gvr"))
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if img.Width() != w || img.Height() != h {
		t.Fatalf("got %dx%d, want %dx%d", img.Width(), img.Height(), w, h)
	}
}

func TestFieldsReportsKind(t *testing.T) {
	buf := make([]byte, 64)
	putHeader(buf, "PVRT", 16, 16, pxRGB565, pvrImgRectangle)
	fields, err := Reader{}.Fields(retroimg.NewSliceSource(buf, "test.pvr"))
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	if len(fields) == 0 || fields[0].Value != "Sega Dreamcast PVR" {
		t.Fatalf("Fields()[0] = %+v, want Texture Format = Sega Dreamcast PVR", fields)
	}
}
