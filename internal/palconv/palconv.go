// Package palconv implements the palette decoders: converting an
// on-disk colour table of 16 or 256 entries into a retroimg.Palette, and
// locating the transparent index the CI4/CI8 linear decoders need.
//
// Grounded on fromLinearCI4/fromLinearCI8's palette-conversion loops in
// ImageDecoder_Linear.cpp (original_source): each source pixel format gets
// its own sBIT preset and its own "first fully-transparent entry wins
// tr_idx" scan, which this package reproduces as a table-driven decoder
// instead of one switch arm per call site.
package palconv

import (
	"encoding/binary"

	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/pixel"
)

// entrySize is the on-disk byte width of one palette entry for a given
// source pixel format.
func entrySize(f pixel.Format) int {
	switch f {
	case pixel.FormatRGB888, pixel.FormatBGR888:
		return 3
	case pixel.FormatBGR888_ABGR7888, pixel.FormatARGB8888, pixel.FormatABGR8888,
		pixel.FormatRGBA8888, pixel.FormatBGRA8888, pixel.FormatxRGB8888,
		pixel.FormatxBGR8888, pixel.FormatRGBx8888, pixel.FormatBGRx8888:
		return 4
	default:
		return 2
	}
}

// sBITFor returns the sBIT preset the original decoder attaches for a given
// palette pixel format.
func sBITFor(f pixel.Format) retroimg.SBIT {
	switch f {
	case pixel.FormatARGB1555, pixel.FormatRGBA5551:
		return retroimg.SBIT1555
	case pixel.FormatRGB565, pixel.FormatBGR565:
		return retroimg.SBIT565
	case pixel.FormatARGB4444, pixel.FormatRGBA4444:
		return retroimg.SBIT4444
	case pixel.FormatRGB555, pixel.FormatBGR555, pixel.FormatBGR555PS1:
		return retroimg.SBIT555
	case pixel.FormatRGB5A3, pixel.FormatBGR5A3:
		return retroimg.SBIT{Red: 5, Green: 5, Blue: 5, Alpha: 4}
	case pixel.FormatBGR888_ABGR7888, pixel.FormatARGB8888, pixel.FormatABGR8888,
		pixel.FormatRGBA8888, pixel.FormatBGRA8888:
		return retroimg.SBIT8888
	case pixel.FormatRGB888, pixel.FormatBGR888,
		pixel.FormatxRGB8888, pixel.FormatxBGR8888, pixel.FormatRGBx8888, pixel.FormatBGRx8888:
		return retroimg.SBIT888
	default:
		return retroimg.SBIT{}
	}
}

// Decode converts count palette entries (16 for CI4, 256 for CI8) of
// format f, packed in buf, into a retroimg.Palette. It returns the sBIT
// preset associated with f alongside the populated palette.
//
// The PS1 BGR555 quirk (pixel value 0x0000 means "transparent", not
// "opaque black") is handled the same way fromLinearCI4/CI8 handle it:
// inline in the per-entry loop rather than as a post-pass.
func Decode(f pixel.Format, count int, buf []byte) (retroimg.Palette, retroimg.SBIT, error) {
	size := entrySize(f)
	if len(buf) < count*size {
		return retroimg.Palette{}, retroimg.SBIT{}, retroimg.Wrap("palconv", retroimg.KindTruncated, retroimg.ErrTruncated)
	}

	pal := retroimg.NewPalette()
	if count > retroimg.PaletteLen {
		count = retroimg.PaletteLen
	}

	for i := 0; i < count; i++ {
		entry := buf[i*size : i*size+size]
		argb, ok := decodeEntry(f, entry)
		if !ok {
			return retroimg.Palette{}, retroimg.SBIT{}, retroimg.Wrap("palconv", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
		}
		pal.Entries[i] = argb
		if pal.TrIdx < 0 && argb>>24 == 0 {
			pal.TrIdx = i
		}
	}

	return pal, sBITFor(f), nil
}

func decodeEntry(f pixel.Format, entry []byte) (uint32, bool) {
	switch entrySize(f) {
	case 2:
		px := uint32(binary.LittleEndian.Uint16(entry))
		if f == pixel.FormatBGR555PS1 {
			if px == 0 {
				// PS1 quirk: $0000 is the transparent sentinel, not opaque black.
				return 0, true
			}
			return pixel.BGR555ToARGB32(px), true
		}
		return pixel.Convert16(f, px)
	case 3:
		return pixel.Convert24(f, entry[0], entry[1], entry[2])
	case 4:
		px := binary.LittleEndian.Uint32(entry)
		return pixel.Convert32(f, px)
	default:
		return 0, false
	}
}
