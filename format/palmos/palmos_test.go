package palmos

import (
	"encoding/binary"
	"testing"

	"github.com/deepteams/retroimg"
)

// buildPRC constructs a minimal .prc file: a 0x4E-byte PRC header with one
// resource record (tAIB/1000) pointing at a single BitmapType v3 16-bpp
// bitmap, no chaining, no compression.
func buildPRC(transparentValue uint32, pixels [16][16]uint16) []byte {
	const bitmapAddr = prcHeaderSize + resHeaderSize
	const bitmapHdrLen = 24
	const rowBytes = 16 * 2
	dataLen := rowBytes * 16

	buf := make([]byte, bitmapAddr+bitmapHdrLen+dataLen)
	binary.BigEndian.PutUint16(buf[numRecordsOff:], 1)

	rec := buf[firstResHdrOff:]
	binary.BigEndian.PutUint32(rec[0:4], resTypeAppIcon)
	binary.BigEndian.PutUint16(rec[4:6], iconResIDLarge)
	binary.BigEndian.PutUint32(rec[6:10], bitmapAddr)

	h := buf[bitmapAddr:]
	binary.BigEndian.PutUint16(h[0:2], 16)        // width
	binary.BigEndian.PutUint16(h[2:4], 16)        // height
	binary.BigEndian.PutUint16(h[4:6], rowBytes)  // rowBytes
	binary.BigEndian.PutUint16(h[6:8], flagHasTransparency)
	h[8] = 16 // pixelSize
	h[9] = 3  // version
	h[10] = 0
	h[11] = pixelFormatRGB565BE
	h[12] = 0
	h[13] = comprNone
	binary.BigEndian.PutUint16(h[14:16], 0) // density
	binary.BigEndian.PutUint32(h[16:20], transparentValue)
	binary.BigEndian.PutUint32(h[20:24], 0) // nextBitmapOffset = 0

	data := h[bitmapHdrLen:]
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			binary.BigEndian.PutUint16(data[y*rowBytes+x*2:], pixels[y][x])
		}
	}
	return buf
}

func TestIdentifyPRC(t *testing.T) {
	var pixels [16][16]uint16
	data := buildPRC(0x07E0, pixels)
	ok, err := Reader{}.Identify(retroimg.NewSliceSource(data, "test.prc"))
	if err != nil || !ok {
		t.Fatalf("Identify() = %v, %v; want true, nil", ok, err)
	}
}

// TestDecodeV3ChromaKeyGreen is grounded on the green-screen scenario: eight
// pixels set to the transparent RGB565 value come out with alpha forced to
// 0 (apply_chroma_key's contract is "set alpha to 0 for matching RGB", not
// "zero the whole word" - so the RGB bits of a keyed-out green pixel are
// still green, just invisible).
func TestDecodeV3ChromaKeyGreen(t *testing.T) {
	const green = 0x07E0
	var pixels [16][16]uint16
	for i := 0; i < 8; i++ {
		pixels[0][i] = green
	}
	data := buildPRC(green, pixels)

	img, err := Reader{}.DecodeImage(retroimg.NewSliceSource(data, "test.prc"))
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if img.Width() != 16 || img.Height() != 16 {
		t.Fatalf("got %dx%d, want 16x16", img.Width(), img.Height())
	}

	bits := img.Bits()
	for i := 0; i < 8; i++ {
		px := binary.LittleEndian.Uint32(bits[i*4:])
		if px>>24 != 0 {
			t.Errorf("keyed pixel %d alpha = %#x, want 0", i, px>>24)
		}
	}
	for i := 8; i < 16; i++ {
		px := binary.LittleEndian.Uint32(bits[i*4:])
		if px != 0xFF000000 {
			t.Errorf("non-keyed pixel %d = %#08x, want 0xFF000000", i, px)
		}
	}
}

func TestIdentifyRejectsMissingIconResource(t *testing.T) {
	buf := make([]byte, prcHeaderSize)
	ok, _ := Reader{}.Identify(retroimg.NewSliceSource(buf, "bad.prc"))
	if ok {
		t.Fatal("expected Identify to reject a file with no tAIB/1000 resource")
	}
}
