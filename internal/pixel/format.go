package pixel

// Format enumerates the source pixel layouts the linear decoders and block
// decoders dispatch on. Grouped by storage width, mirroring the original
// implementation's generic dispatch-by-pixel-format-enum entry points.
type Format int

const (
	FormatUnknown Format = iota

	// 8-bit
	FormatL8
	FormatA8
	FormatR8
	FormatRGB332
	FormatA4L4 // packed 8-bit source, two 4-bit channels

	// 16-bit
	FormatRGB565
	FormatBGR565
	FormatARGB1555
	FormatABGR1555
	FormatRGBA5551
	FormatBGRA5551
	FormatARGB4444
	FormatABGR4444
	FormatRGBA4444
	FormatBGRA4444
	FormatxRGB4444
	FormatxBGR4444
	FormatRGBx4444
	FormatBGRx4444
	FormatARGB8332 // stored as 16 bits (8-bit alpha + 8-bit colour)
	FormatRGB555
	FormatBGR555
	FormatBGR555PS1
	FormatRGB5A3
	FormatBGR5A3
	FormatIA8
	FormatA8L8
	FormatL8A8
	FormatL16
	FormatRG88
	FormatGR88

	// 24-bit
	FormatRGB888
	FormatBGR888

	// 32-bit
	FormatARGB8888
	FormatABGR8888
	FormatRGBA8888
	FormatBGRA8888
	FormatxRGB8888
	FormatxBGR8888
	FormatRGBx8888
	FormatBGRx8888
	FormatG16R16
	FormatA2R10G10B10
	FormatA2B10G10R10
	FormatRGB9E5
	FormatBGR888_ABGR7888
	FormatRABG8888 // VTF "ARGB8888" quirk: actually byte-swapped RABG
)

// BitsPerPixel returns the on-disk storage width of fmt, in bits.
func (f Format) BitsPerPixel() int {
	switch f {
	case FormatL8, FormatA8, FormatR8, FormatRGB332, FormatA4L4:
		return 8
	case FormatRGB888, FormatBGR888:
		return 24
	case FormatARGB8888, FormatABGR8888, FormatRGBA8888, FormatBGRA8888,
		FormatxRGB8888, FormatxBGR8888, FormatRGBx8888, FormatBGRx8888,
		FormatG16R16, FormatA2R10G10B10, FormatA2B10G10R10, FormatRGB9E5,
		FormatBGR888_ABGR7888, FormatRABG8888:
		return 32
	case FormatUnknown:
		return 0
	default:
		return 16
	}
}

// BytesPerPixel is BitsPerPixel/8, rounded up.
func (f Format) BytesPerPixel() int { return (f.BitsPerPixel() + 7) / 8 }

// Convert8 dispatches an 8-bit-wide source pixel to ARGB32. ok is false for
// formats not in the 8-bit family.
func Convert8(f Format, px uint8) (uint32, bool) {
	switch f {
	case FormatL8:
		return L8ToARGB32(px), true
	case FormatA8:
		return A8ToARGB32(px), true
	case FormatR8:
		return R8ToARGB32(px), true
	case FormatRGB332:
		return RGB332ToARGB32(px), true
	case FormatA4L4:
		return A4L4ToARGB32(px), true
	default:
		return 0, false
	}
}

// Convert16 dispatches a 16-bit-wide source pixel to ARGB32.
func Convert16(f Format, px uint32) (uint32, bool) {
	switch f {
	case FormatRGB565:
		return RGB565ToARGB32(px), true
	case FormatBGR565:
		return BGR565ToARGB32(px), true
	case FormatARGB1555:
		return ARGB1555ToARGB32(px), true
	case FormatABGR1555:
		return ABGR1555ToARGB32(px), true
	case FormatRGBA5551:
		return RGBA5551ToARGB32(px), true
	case FormatBGRA5551:
		return BGRA5551ToARGB32(px), true
	case FormatARGB4444:
		return ARGB4444ToARGB32(px), true
	case FormatABGR4444:
		return ABGR4444ToARGB32(px), true
	case FormatRGBA4444:
		return RGBA4444ToARGB32(px), true
	case FormatBGRA4444:
		return BGRA4444ToARGB32(px), true
	case FormatxRGB4444:
		return xRGB4444ToARGB32(px), true
	case FormatxBGR4444:
		return xBGR4444ToARGB32(px), true
	case FormatRGBx4444:
		return RGBx4444ToARGB32(px), true
	case FormatBGRx4444:
		return BGRx4444ToARGB32(px), true
	case FormatARGB8332:
		return ARGB8332ToARGB32(px), true
	case FormatRGB555:
		return RGB555ToARGB32(px), true
	case FormatBGR555:
		return BGR555ToARGB32(px), true
	case FormatBGR555PS1:
		return BGR555PS1ToARGB32(px), true
	case FormatRGB5A3:
		return RGB5A3ToARGB32(px), true
	case FormatBGR5A3:
		return BGR5A3ToARGB32(px), true
	case FormatIA8:
		return IA8ToARGB32(px), true
	case FormatA8L8:
		return A8L8ToARGB32(px), true
	case FormatL8A8:
		return L8A8ToARGB32(px), true
	case FormatL16:
		return L16ToARGB32(px), true
	case FormatRG88:
		return RG88ToARGB32(px), true
	case FormatGR88:
		return GR88ToARGB32(px), true
	default:
		return 0, false
	}
}

// Convert24 dispatches a 24-bit-wide source pixel (byte-addressed, so the
// channel order is given as separate bytes rather than one packed int).
//
// Per fromLinear24_cpp (original_source), PixelFormat::RGB888's three disk
// bytes are read in (b,g,r) order and PixelFormat::BGR888's in (r,g,b)
// order — the enum names describe the conceptual channel order, not the
// disk byte order, so b0/b2 are swapped relative to what the format name
// alone would suggest.
func Convert24(f Format, b0, b1, b2 uint8) (uint32, bool) {
	switch f {
	case FormatRGB888:
		return RGB888ToARGB32(b2, b1, b0), true
	case FormatBGR888:
		return BGR888ToARGB32(b2, b1, b0), true
	default:
		return 0, false
	}
}

// Convert32 dispatches a 32-bit-wide source pixel to ARGB32.
func Convert32(f Format, px uint32) (uint32, bool) {
	switch f {
	case FormatARGB8888:
		return ARGB8888ToARGB32(px), true
	case FormatABGR8888:
		return ABGR8888ToARGB32(px), true
	case FormatRGBA8888:
		return RGBA8888ToARGB32(px), true
	case FormatBGRA8888:
		return BGRA8888ToARGB32(px), true
	case FormatxRGB8888:
		return xRGB8888ToARGB32(px), true
	case FormatxBGR8888:
		return xBGR8888ToARGB32(px), true
	case FormatRGBx8888:
		return RGBx8888ToARGB32(px), true
	case FormatBGRx8888:
		return BGRx8888ToARGB32(px), true
	case FormatG16R16:
		return G16R16ToARGB32(px), true
	case FormatA2R10G10B10:
		return A2R10G10B10ToARGB32(px), true
	case FormatA2B10G10R10:
		return A2B10G10R10ToARGB32(px), true
	case FormatRGB9E5:
		return RGB9E5ToARGB32(px), true
	case FormatBGR888_ABGR7888:
		return BGR888ABGR7888ToARGB32(px), true
	case FormatRABG8888:
		return RABG8888ToARGB32(px), true
	default:
		return 0, false
	}
}
