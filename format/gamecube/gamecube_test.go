package gamecube

import (
	"testing"

	"github.com/deepteams/retroimg"
)

// buildGCI constructs a minimal no-header GCI file: 64-byte directory entry
// followed by a single 8192-byte data block.
func buildGCI(bannerfmt byte, iconfmt, iconspeed uint16, dataBlock []byte) []byte {
	buf := make([]byte, dirEntSize+len(dataBlock))
	copy(buf[0:6], []byte("GALE01"))
	buf[6] = 0xFF // pad_00
	buf[7] = bannerfmt
	buf[0x30] = byte(iconfmt >> 8)
	buf[0x31] = byte(iconfmt)
	buf[0x32] = byte(iconspeed >> 8)
	buf[0x33] = byte(iconspeed)
	numBlocks := len(dataBlock) / 8192
	buf[0x38] = byte(numBlocks >> 8)
	buf[0x39] = byte(numBlocks)
	buf[0x3A] = 0xFF // pad_01 hi
	buf[0x3B] = 0xFF // pad_01 lo
	copy(buf[dirEntSize:], dataBlock)
	return buf
}

func TestIdentifyGCI(t *testing.T) {
	data := buildGCI(0, 0, 0, make([]byte, 8192))
	ok, err := Reader{}.Identify(retroimg.NewSliceSource(data, "test.gci"))
	if err != nil || !ok {
		t.Fatalf("Identify() = %v, %v; want true, nil", ok, err)
	}
}

func TestDecodeBannerCI8SharedPaletteEntrySeven(t *testing.T) {
	block := make([]byte, 8192)
	// bannerfmt: CI8 banner, iconaddr = 0 (banner right at start of data area).
	bannerSize := bannerW * bannerH
	palOff := bannerSize
	// Palette entry 7: high bit clear, (a3,r4,g4,b4) = (0b011,0x8,0x4,0x2) -> 0x3842.
	entry7 := uint16(0b011)<<12 | 0x8<<8 | 0x4<<4 | 0x2
	block[palOff+7*2] = byte(entry7 >> 8)
	block[palOff+7*2+1] = byte(entry7)

	data := buildGCI(cardBannerCI, 0, 0, block)
	img, err := Reader{}.DecodeBanner(retroimg.NewSliceSource(data, "test.gci"))
	if err != nil {
		t.Fatalf("DecodeBanner failed: %v", err)
	}
	if img.Width() != bannerW || img.Height() != bannerH {
		t.Fatalf("got %dx%d, want %dx%d", img.Width(), img.Height(), bannerW, bannerH)
	}
	got := img.Palette().Entries[7]
	want := uint32(0x6D_88_44_22)
	if got != want {
		t.Errorf("palette[7] = %#08x, want %#08x", got, want)
	}
}

func TestLoadDirEntryRejectsBadPadding(t *testing.T) {
	data := buildGCI(0, 0, 0, make([]byte, 8192))
	data[6] = 0x00 // corrupt pad_00
	ok, _ := Reader{}.Identify(retroimg.NewSliceSource(data, "bad.gci"))
	if ok {
		t.Fatal("expected Identify to reject a directory entry with bad padding")
	}
}

func TestIdentifyRejectsNonAlignedSize(t *testing.T) {
	ok, _ := Reader{}.Identify(retroimg.NewSliceSource(make([]byte, 100), "bad.gci"))
	if ok {
		t.Fatal("expected Identify to reject a size that isn't header+64+N*8192")
	}
}
