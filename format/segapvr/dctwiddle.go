package segapvr

import (
	"encoding/binary"

	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/pixel"
	"github.com/deepteams/retroimg/internal/swizzle"
)

// dcSBITFor returns the sBIT preset for one of the three 16-bit pixel
// formats the Dreamcast twiddled/VQ decoders accept; ok is false for any
// other format (fromDreamcastSquareTwiddled16/fromDreamcastVQ16 only switch
// on these three in the original).
func dcSBITFor(px pixel.Format) (retroimg.SBIT, bool) {
	switch px {
	case pixel.FormatARGB1555:
		return retroimg.SBIT1555, true
	case pixel.FormatRGB565:
		return retroimg.SBIT565, true
	case pixel.FormatARGB4444:
		return retroimg.SBIT4444, true
	default:
		return retroimg.SBIT{}, false
	}
}

// fromDreamcastSquareTwiddled16 converts a Dreamcast square-twiddled 16bpp
// image into ARGB32, reading each destination (x, y) from the twiddled
// source index swizzle.DCTwiddleIndex(x, y) computes.
func fromDreamcastSquareTwiddled16(px pixel.Format, width, height int, buf []byte) (*retroimg.Image, error) {
	if width != height {
		return nil, retroimg.NewError("segapvr", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	if width <= 0 || width > swizzle.DCTwiddleMapSize {
		return nil, retroimg.NewError("segapvr", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	if len(buf) < width*height*2 {
		return nil, retroimg.NewError("segapvr", retroimg.KindTruncated, retroimg.ErrTruncated)
	}
	sbit, ok := dcSBITFor(px)
	if !ok {
		return nil, retroimg.NewError("segapvr", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
	}

	img, err := retroimg.New(width, height, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}
	img.SetSBIT(sbit)

	for y := 0; y < height; y++ {
		dst := img.ScanLine(y)
		for x := 0; x < width; x++ {
			srcIdx := swizzle.DCTwiddleIndex(x, y)
			raw := uint32(binary.LittleEndian.Uint16(buf[srcIdx*2:]))
			argb, ok := pixel.Convert16(px, raw)
			if !ok {
				return nil, retroimg.NewError("segapvr", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
			}
			putU32(dst[x*4:], argb)
		}
	}
	return img, nil
}

// smallVQPaletteEntriesNoMipmaps and smallVQPaletteEntriesWithMipmaps return
// the Dreamcast SmallVQ codebook's palette entry (colour) count for a given
// texture width, ported from calcDreamcastSmallVQPaletteEntries_NoMipmaps/
// _WithMipmaps (ImageDecoder_DC.hpp, original_source). The returned count
// already accounts for the "4 colours per codebook entry" factor, matching
// fromDreamcastVQ16's own pal_entry_count convention.
func smallVQPaletteEntriesNoMipmaps(width int) int {
	switch {
	case width <= 16:
		return 8 * 4
	case width <= 32:
		return 32 * 4
	case width <= 64:
		return 128 * 4
	default:
		return 256 * 4
	}
}

func smallVQPaletteEntriesWithMipmaps(width int) int {
	switch {
	case width <= 16:
		return 16 * 4
	case width <= 32:
		return 64 * 4
	case width <= 64:
		return 128 * 4
	default:
		return 256 * 4
	}
}

// fromDreamcastVQ16 converts a Dreamcast vector-quantized 16bpp image into
// ARGB32. The codebook is a flat palette of palEntryCount colours (regular
// VQ always has 1024; SmallVQ's count depends on width and whether mipmaps
// are present); each codebook index selects a 2x2 destination block whose
// four corners read palette[idx*4+0/2/1/3] respectively (top-left,
// top-right, bottom-left, bottom-right) — the codebook's own internal
// layout is not row-major, per fromDreamcastVQ16 (original_source).
func fromDreamcastVQ16(px pixel.Format, smallVQ, hasMipmaps bool, width, height int, imgBuf, palBuf []byte) (*retroimg.Image, error) {
	if width != height {
		return nil, retroimg.NewError("segapvr", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	if width <= 0 || width > swizzle.DCTwiddleMapSize {
		return nil, retroimg.NewError("segapvr", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	if len(imgBuf) == 0 || len(palBuf) == 0 {
		return nil, retroimg.NewError("segapvr", retroimg.KindTruncated, retroimg.ErrTruncated)
	}

	var palEntryCount int
	if smallVQ {
		if hasMipmaps {
			palEntryCount = smallVQPaletteEntriesWithMipmaps(width)
		} else {
			palEntryCount = smallVQPaletteEntriesNoMipmaps(width)
		}
	} else {
		palEntryCount = 1024
	}
	if palEntryCount%2 != 0 || palEntryCount*2 < len(palBuf) {
		return nil, retroimg.NewError("segapvr", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}

	sbit, ok := dcSBITFor(px)
	if !ok {
		return nil, retroimg.NewError("segapvr", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
	}

	palette := make([]uint32, palEntryCount)
	for i := 0; i+1 < palEntryCount && (i+1)*2+1 < len(palBuf)+2; i += 2 {
		if (i+1)*2+2 > len(palBuf) {
			break
		}
		raw0 := uint32(binary.LittleEndian.Uint16(palBuf[i*2:]))
		raw1 := uint32(binary.LittleEndian.Uint16(palBuf[(i+1)*2:]))
		c0, ok := pixel.Convert16(px, raw0)
		if !ok {
			return nil, retroimg.NewError("segapvr", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
		}
		c1, ok := pixel.Convert16(px, raw1)
		if !ok {
			return nil, retroimg.NewError("segapvr", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
		}
		palette[i] = c0
		palette[i+1] = c1
	}

	img, err := retroimg.New(width, height, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}
	img.SetSBIT(sbit)

	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x += 2 {
			srcIdx := swizzle.DCTwiddleIndex(x>>1, y>>1)
			if srcIdx >= len(imgBuf) {
				return nil, retroimg.NewError("segapvr", retroimg.KindTruncated, retroimg.ErrTruncated)
			}
			palIdx := int(imgBuf[srcIdx]) * 4
			if palIdx+3 >= palEntryCount {
				return nil, retroimg.NewError("segapvr", retroimg.KindCorrupt, retroimg.ErrCorrupt)
			}

			row0 := img.ScanLine(y)
			row1 := img.ScanLine(y + 1)
			putU32(row0[x*4:], palette[palIdx+0])
			putU32(row0[(x+1)*4:], palette[palIdx+2])
			putU32(row1[x*4:], palette[palIdx+1])
			putU32(row1[(x+1)*4:], palette[palIdx+3])
		}
	}
	return img, nil
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
