package segapvr

import (
	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/linear"
	"github.com/deepteams/retroimg/internal/pixel"
	"github.com/deepteams/retroimg/internal/swizzle"
)

// pvrPixelFormat maps the on-disk px_format byte (PVR 0x00-0x02, SVR
// 0x08-0x09) to the internal/pixel enum and its sBIT preset, per
// loadPvrImage's own px_format switch.
func pvrPixelFormat(pxFormat byte) (pixel.Format, retroimg.SBIT, bool, error) {
	switch pxFormat {
	case pxARGB1555:
		return pixel.FormatARGB1555, retroimg.SBIT1555, false, nil
	case pxRGB565:
		return pixel.FormatRGB565, retroimg.SBIT565, false, nil
	case pxARGB4444:
		return pixel.FormatARGB4444, retroimg.SBIT4444, false, nil
	case svrPxBGR5A3:
		return pixel.FormatBGR5A3, retroimg.SBIT{Red: 5, Green: 5, Blue: 5, Alpha: 4}, false, nil
	case svrPxBGR888ABGR7888:
		return pixel.FormatBGR888_ABGR7888, retroimg.SBIT8888, true, nil
	default:
		return 0, retroimg.SBIT{}, false, retroimg.NewError("segapvr", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
	}
}

// mipmapSkipSize computes how many bytes of mipmap pyramid precede the
// base-level image for the four mipmap image-data-types, per loadPvrImage's
// "Do we need to skip mipmap data?" block. ok is false (with zero size) for
// any non-mipmap type.
func mipmapSkipSize(h header) (uint32, bool, error) {
	var bpp uint32
	var size uint32
	switch h.imgDataType {
	case pvrImgSquareTwiddledMipmap:
		bpp = 16
		size = (1 * bpp) >> 3 // a 1x1 mip costs as much space as a 2x1 mip
	case pvrImgSquareTwiddledMipmapAlt:
		bpp = 16
		size = (3 * bpp) >> 3 // a 1x1 mip costs as much space as a 2x2 mip
	case pvrImgVQMipmap, pvrImgSmallVQMipmap:
		bpp = 2
	default:
		return 0, false, nil
	}

	if h.width != h.height {
		return 0, false, retroimg.NewError("segapvr", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	if !isPow2(h.width) {
		return 0, false, retroimg.NewError("segapvr", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}

	length := log2(h.width)
	for lvl, dim := uint32(1), length; dim > 0; dim, lvl = dim-1, lvl<<1 {
		v := (lvl * lvl * bpp) >> 3
		if v < 1 {
			v = 1
		}
		size += v
	}
	return size, true, nil
}

// pvrImageSize computes the on-disk byte size of the base-level image (plus
// any palette prefix folded into it) for one image-data-type, per
// loadPvrImage's "Determine the image size" switch. For VQ-family types it
// also returns the palette byte count (prefixed to the returned data).
func pvrImageSize(h header) (total uint32, paletteSize uint32, err error) {
	w, ht := uint32(h.width), uint32(h.height)
	switch h.imgDataType {
	case pvrImgSquareTwiddled, pvrImgSquareTwiddledMipmap, pvrImgSquareTwiddledMipmapAlt,
		pvrImgRectangle, svrImgRectangle, svrImgRectangleSwizzled:
		switch h.pxFormat {
		case pxARGB1555, pxRGB565, pxARGB4444, svrPxBGR5A3:
			return w * ht * 2, 0, nil
		case svrPxBGR888ABGR7888:
			return w * ht * 4, 0, nil
		default:
			return 0, 0, retroimg.NewError("segapvr", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
		}

	case pvrImgVQ:
		return 1024*2 + (w*ht)/4, 1024 * 2, nil
	case pvrImgVQMipmap:
		return (w * ht) / 4, 1024 * 2, nil

	case pvrImgSmallVQ:
		pal := uint32(smallVQPaletteEntriesNoMipmaps(h.width)) * 2
		return pal + (w*ht)/4, pal, nil
	case pvrImgSmallVQMipmap:
		pal := uint32(smallVQPaletteEntriesWithMipmaps(h.width)) * 2
		return (w * ht) / 4, pal, nil

	case svrImgIndex4BGR5A3Rectangle, svrImgIndex4BGR5A3Square,
		svrImgIndex4ABGR8Rectangle, svrImgIndex4ABGR8Square:
		pal, e := svrIndexedPaletteSize(h.pxFormat, 16)
		if e != nil {
			return 0, 0, e
		}
		return pal + (w*ht)/2, pal, nil

	case svrImgIndex8BGR5A3Rectangle, svrImgIndex8BGR5A3Square,
		svrImgIndex8ABGR8Rectangle, svrImgIndex8ABGR8Square:
		pal, e := svrIndexedPaletteSize(h.pxFormat, 256)
		if e != nil {
			return 0, 0, e
		}
		return pal + w*ht, pal, nil

	default:
		return 0, 0, retroimg.NewError("segapvr", retroimg.KindUnsupportedByFormat, retroimg.ErrUnsupportedByFormat)
	}
}

// svrIndexedPaletteSize sizes an SVR CI4/CI8 palette by pixel format, not by
// image-data-type: the two sometimes disagree (a known Puyo Tools quirk),
// and the pixel-format field is the one this package trusts for layout.
func svrIndexedPaletteSize(pxFormat byte, entries int) (uint32, error) {
	switch pxFormat {
	case svrPxBGR5A3:
		return uint32(entries * 2), nil
	case svrPxBGR888ABGR7888:
		return uint32(entries * 4), nil
	default:
		return 0, retroimg.NewError("segapvr", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
	}
}

// loadPvrImage decodes the Dreamcast PVR and PS2 SVR container variants,
// which share one header layout and most of their pixel formats.
func loadPvrImage(src retroimg.Source, h header, dataStart uint64) (*retroimg.Image, error) {
	if h.width > 32768 || h.height > 32768 {
		return nil, retroimg.NewError("segapvr", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}

	mipmapSize, _, err := mipmapSkipSize(h)
	if err != nil {
		return nil, err
	}
	expectedSize, paletteSize, err := pvrImageSize(h)
	if err != nil {
		return nil, err
	}

	switch h.imgDataType {
	case pvrImgVQMipmap:
		mipmapSize += paletteSize
	case pvrImgSmallVQMipmap:
		mipmapSize += paletteSize
	}

	fileSize := src.Size()
	if dataStart+uint64(mipmapSize)+uint64(expectedSize) > uint64(fileSize) {
		return nil, retroimg.NewError("segapvr", retroimg.KindTruncated, retroimg.ErrTruncated)
	}

	switch h.imgDataType {
	case pvrImgVQMipmap, pvrImgSmallVQMipmap:
		// The palette precedes the mipmap pyramid, so it's read separately
		// from the base-level image data that follows the skipped mipmaps.
		palBuf := make([]byte, paletteSize)
		if _, err := src.SeekAndRead(dataStart, palBuf); err != nil {
			return nil, retroimg.Wrap("segapvr", retroimg.KindTruncated, err)
		}
		imgBuf := make([]byte, expectedSize)
		if _, err := src.SeekAndRead(dataStart+uint64(mipmapSize), imgBuf); err != nil {
			return nil, retroimg.Wrap("segapvr", retroimg.KindTruncated, err)
		}
		px, sbit, _, err := pvrPixelFormat(h.pxFormat)
		if err != nil {
			return nil, err
		}
		smallVQ := h.imgDataType == pvrImgSmallVQMipmap
		img, err := fromDreamcastVQ16(px, smallVQ, true, h.width, h.height, imgBuf, palBuf)
		if err != nil {
			return nil, err
		}
		img.SetSBIT(sbit)
		return img, nil
	}

	buf := make([]byte, expectedSize)
	if _, err := src.SeekAndRead(dataStart+uint64(mipmapSize), buf); err != nil {
		return nil, retroimg.Wrap("segapvr", retroimg.KindTruncated, err)
	}

	px, sbit, is32bit, err := pvrPixelFormat(h.pxFormat)
	if err != nil {
		return nil, err
	}

	switch h.imgDataType {
	case pvrImgSquareTwiddled, pvrImgSquareTwiddledMipmap, pvrImgSquareTwiddledMipmapAlt:
		img, err := fromDreamcastSquareTwiddled16(px, h.width, h.height, buf)
		if err != nil {
			return nil, err
		}
		img.SetSBIT(sbit)
		return img, nil

	case pvrImgRectangle, svrImgRectangle, svrImgRectangleSwizzled:
		var img *retroimg.Image
		if is32bit {
			img, err = linear.From32Func(px, h.width, h.height, buf, 0)
		} else {
			img, err = linear.From16Func(px, h.width, h.height, buf, 0)
		}
		if err != nil {
			return nil, err
		}
		img.SetSBIT(sbit)
		if h.imgDataType == svrImgRectangleSwizzled && h.pxFormat == svrPxBGR5A3 &&
			h.width >= 64 && h.height >= 64 {
			unswz := make([]uint32, h.width*h.height)
			src32 := bitsAsU32(img)
			swizzle.Unswizzle[uint32](unswz, src32, h.width, h.height)
			u32ToImage(img, unswz)
		}
		return img, nil

	case pvrImgVQ, pvrImgSmallVQ:
		palBuf := buf[:paletteSize]
		imgBuf := buf[paletteSize:]
		smallVQ := h.imgDataType == pvrImgSmallVQ
		img, err := fromDreamcastVQ16(px, smallVQ, false, h.width, h.height, imgBuf, palBuf)
		if err != nil {
			return nil, err
		}
		img.SetSBIT(sbit)
		return img, nil

	case svrImgIndex4BGR5A3Rectangle, svrImgIndex4BGR5A3Square,
		svrImgIndex4ABGR8Rectangle, svrImgIndex4ABGR8Square:
		palBuf := buf[:paletteSize]
		imgBuf := buf[paletteSize:]
		// Least-significant nibble first.
		img, err := linear.FromCI4(px, false, h.width, h.height, imgBuf, palBuf)
		if err != nil {
			return nil, err
		}
		imgIsBGR888 := h.imgDataType == svrImgIndex4ABGR8Rectangle || h.imgDataType == svrImgIndex4ABGR8Square
		warnPaletteFormatMismatch(img, h.pxFormat, imgIsBGR888)
		if h.width >= 128 && h.height >= 128 {
			unswizzleCI8(img)
		}
		return img, nil

	case svrImgIndex8BGR5A3Rectangle, svrImgIndex8BGR5A3Square,
		svrImgIndex8ABGR8Rectangle, svrImgIndex8ABGR8Square:
		palBuf := buf[:paletteSize]
		imgBuf := buf[paletteSize:]
		svrBitSwap(imgBuf)
		img, err := linear.FromCI8(px, h.width, h.height, imgBuf, palBuf)
		if err != nil {
			return nil, err
		}
		imgIsBGR888 := h.imgDataType == svrImgIndex8ABGR8Rectangle || h.imgDataType == svrImgIndex8ABGR8Square
		warnPaletteFormatMismatch(img, h.pxFormat, imgIsBGR888)
		if h.width >= 128 && h.height >= 64 {
			unswizzleCI8(img)
		}
		return img, nil

	default:
		return nil, retroimg.NewError("segapvr", retroimg.KindUnsupportedByFormat, retroimg.ErrUnsupportedByFormat)
	}
}

// svrBitSwap transposes bits 3 and 4 of every image byte (not palette byte),
// compensating for the PS2 GPU's palette rearrangement for 8-bit SVR
// textures. Ported from the inline uint32-at-a-time loop in loadPvrImage;
// expressed here per-byte since imgBuf length isn't guaranteed 4-aligned
// once a palette prefix has been split off.
func svrBitSwap(buf []byte) {
	for i, b := range buf {
		sw := b & 0xE7
		b3 := (b & 0x10) >> 1
		b4 := (b & 0x08) << 1
		buf[i] = sw | b3 | b4
	}
}

// unswizzleCI8 reverses the PS2 tile interleave in place for a CI8 image.
func unswizzleCI8(img *retroimg.Image) {
	w, h := img.Width(), img.Height()
	if w%4 != 0 || h%4 != 0 {
		return
	}
	src := img.Bits()
	dst := make([]byte, len(src))
	swizzle.Unswizzle[byte](dst, src, w, h)
	copy(src, dst)
}

func bitsAsU32(img *retroimg.Image) []uint32 {
	bits := img.Bits()
	out := make([]uint32, len(bits)/4)
	for i := range out {
		off := i * 4
		out[i] = uint32(bits[off]) | uint32(bits[off+1])<<8 | uint32(bits[off+2])<<16 | uint32(bits[off+3])<<24
	}
	return out
}

func u32ToImage(img *retroimg.Image, src []uint32) {
	bits := img.Bits()
	for i, v := range src {
		off := i * 4
		bits[off] = byte(v)
		bits[off+1] = byte(v >> 8)
		bits[off+2] = byte(v >> 16)
		bits[off+3] = byte(v >> 24)
	}
}
