package n3ds

import (
	"encoding/binary"
	"testing"

	"github.com/deepteams/retroimg"
)

// buildSMDH constructs a minimal .smdh file: header filled with zero titles
// and settings, followed by a small (24x24) and large (48x48) RGB565
// tiled icon. smallPixel00 is the raw uint16 stored at tile index 0 of the
// small icon (tile-local index 0 maps to image pixel (0,0) via the Z-order
// identity N3DSTileOrder[0] == 0).
func buildSMDH(smallPixel00 uint16) []byte {
	buf := make([]byte, smdhHeaderSize+smdhIconSize)
	copy(buf[0:4], smdhMagic[:])

	iconOff := smdhHeaderSize
	binary.LittleEndian.PutUint16(buf[iconOff:], smallPixel00)
	return buf
}

func TestIdentifySMDH(t *testing.T) {
	data := buildSMDH(0xFFFF)
	ok, err := Reader{}.Identify(retroimg.NewSliceSource(data, "test.smdh"))
	if err != nil || !ok {
		t.Fatalf("Identify() = %v, %v; want true, nil", ok, err)
	}
}

func TestDecodeSmallIconTopLeftWhite(t *testing.T) {
	data := buildSMDH(0xFFFF)
	src := retroimg.NewSliceSource(data, "test.smdh")

	img, err := Reader{}.DecodeSmallIcon(src)
	if err != nil {
		t.Fatalf("DecodeSmallIcon failed: %v", err)
	}
	if img.Width() != iconSmallW || img.Height() != iconSmallH {
		t.Fatalf("got %dx%d, want %dx%d", img.Width(), img.Height(), iconSmallW, iconSmallH)
	}

	stride := img.Stride()
	bits := img.Bits()
	px00 := binary.LittleEndian.Uint32(bits[0:4])
	if px00 != 0xFFFFFFFF {
		t.Errorf("pixel(0,0) = %#08x, want 0xFFFFFFFF", px00)
	}
	px10 := binary.LittleEndian.Uint32(bits[4:8])
	if px10 != 0xFF000000 {
		t.Errorf("pixel(1,0) = %#08x, want 0xFF000000", px10)
	}
	pxLastRow := binary.LittleEndian.Uint32(bits[(iconSmallH-1)*stride:])
	if pxLastRow != 0xFF000000 {
		t.Errorf("pixel(0,%d) = %#08x, want 0xFF000000", iconSmallH-1, pxLastRow)
	}
}

func TestDecodeImageLargeIcon(t *testing.T) {
	data := buildSMDH(0x0000)
	img, err := Reader{}.DecodeImage(retroimg.NewSliceSource(data, "test.smdh"))
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if img.Width() != iconLargeW || img.Height() != iconLargeH {
		t.Fatalf("got %dx%d, want %dx%d", img.Width(), img.Height(), iconLargeW, iconLargeH)
	}
}

func Test3DSXExtendedHeaderSMDHOffset(t *testing.T) {
	smdh := buildSMDH(0xFFFF)
	buf := make([]byte, smdxExtHeaderSize+len(smdh))
	copy(buf[0:4], n3dsxMagic[:])
	binary.LittleEndian.PutUint16(buf[4:], smdxExtHeaderSize)
	binary.LittleEndian.PutUint32(buf[smdxSMDHOffsetOff:], smdxExtHeaderSize)
	copy(buf[smdxExtHeaderSize:], smdh)

	src := retroimg.NewSliceSource(buf, "test.3dsx")
	ok, err := Reader{}.Identify(src)
	if err != nil || !ok {
		t.Fatalf("Identify() = %v, %v; want true, nil", ok, err)
	}

	img, err := Reader{}.DecodeSmallIcon(src)
	if err != nil {
		t.Fatalf("DecodeSmallIcon failed: %v", err)
	}
	bits := img.Bits()
	if binary.LittleEndian.Uint32(bits[0:4]) != 0xFFFFFFFF {
		t.Errorf("pixel(0,0) mismatch for 3DSX-embedded SMDH")
	}
}

func TestIdentityRejectsNonContainer(t *testing.T) {
	ok, _ := Reader{}.Identify(retroimg.NewSliceSource(make([]byte, 64), "bad.smdh"))
	if ok {
		t.Fatal("expected Identify to reject a file with no recognised magic")
	}
}
