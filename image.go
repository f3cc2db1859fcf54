package retroimg

import (
	"image"
	"image/color"
)

// Format is the pixel storage format of a decoded Image.
type Format int

const (
	FormatNone Format = iota
	// FormatCI8 is 8-bit palette index; Palette()/TrIdx() are meaningful.
	FormatCI8
	// FormatARGB32 is host-endian 0xAARRGGBB (A in bits 24..31).
	FormatARGB32
)

func (f Format) String() string {
	switch f {
	case FormatCI8:
		return "CI8"
	case FormatARGB32:
		return "ARGB32"
	default:
		return "None"
	}
}

// BytesPerPixel returns the storage width of one pixel in this format.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatCI8:
		return 1
	case FormatARGB32:
		return 4
	default:
		return 0
	}
}

// MaxDimension is the largest width or height a decoded image may declare
// (both > 0, <= 32768).
const MaxDimension = 32768

// Image is an owned rectangle of pixels: the library's image container.
// It never shares its backing buffer with another Image; decoders that need
// to hand out a derived image (Flip, DupARGB32) allocate a fresh one.
type Image struct {
	width, height int
	format        Format
	stride        int
	bits          []byte
	palette       Palette
	sbit          SBIT
	// Diagnostics carries non-fatal notes a format reader wants to surface
	// (e.g. SVR's pixel-format/image-data-type mismatch), distinct from a
	// hard decode failure.
	Diagnostics []string
}

// New allocates an Image of the given size and format. The palette (if any)
// starts zeroed with TrIdx = -1, matching rp_image's construction rule.
func New(width, height int, format Format) (*Image, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, NewError("image", KindInvalidGeometry, ErrInvalidGeometry)
	}
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, NewError("image", KindInvalidPixelFormat, ErrInvalidPixelFormat)
	}
	stride := width * bpp
	bits := make([]byte, height*stride)
	if bits == nil {
		return nil, NewError("image", KindAllocationFailed, ErrAllocationFailed)
	}
	return &Image{
		width:   width,
		height:  height,
		format:  format,
		stride:  stride,
		bits:    bits,
		palette: NewPalette(),
	}, nil
}

// NewWithStride is like New but lets the caller pick a row stride, e.g. to
// preserve a source format's row padding.
func NewWithStride(width, height int, format Format, stride int) (*Image, error) {
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, NewError("image", KindInvalidPixelFormat, ErrInvalidPixelFormat)
	}
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, NewError("image", KindInvalidGeometry, ErrInvalidGeometry)
	}
	if stride < width*bpp || stride%bpp != 0 {
		return nil, NewError("image", KindInvalidGeometry, ErrInvalidGeometry)
	}
	bits := make([]byte, height*stride)
	return &Image{
		width:   width,
		height:  height,
		format:  format,
		stride:  stride,
		bits:    bits,
		palette: NewPalette(),
	}, nil
}

func (im *Image) Width() int    { return im.width }
func (im *Image) Height() int   { return im.height }
func (im *Image) Format() Format { return im.format }
func (im *Image) Stride() int   { return im.stride }

// Bits returns the whole backing buffer (height*stride bytes).
func (im *Image) Bits() []byte { return im.bits }

// ScanLine returns row y (0-based) as a sub-slice of the backing buffer, or
// nil if y is out of range.
func (im *Image) ScanLine(y int) []byte {
	if y < 0 || y >= im.height {
		return nil
	}
	off := y * im.stride
	return im.bits[off : off+im.stride]
}

// Palette returns the image's palette. Only meaningful for FormatCI8.
func (im *Image) Palette() *Palette { return &im.palette }

// PaletteLen returns 256 for a CI8 image and 0 otherwise.
func (im *Image) PaletteLen() int {
	if im.format != FormatCI8 {
		return 0
	}
	return PaletteLen
}

// TrIdx returns the single transparent palette index, or -1 if absent.
func (im *Image) TrIdx() int { return im.palette.TrIdx }

// SetTrIdx sets the single transparent palette index. i must be in [0,256)
// or -1 to clear it.
func (im *Image) SetTrIdx(i int) error {
	if i != -1 && (i < 0 || i >= PaletteLen) {
		return NewError("image", KindInvalidGeometry, ErrInvalidGeometry)
	}
	im.palette.TrIdx = i
	return nil
}

func (im *Image) SBIT() SBIT       { return im.sbit }
func (im *Image) SetSBIT(s SBIT)   { im.sbit = s }

// Flip returns a new Image with rows reversed (vertical flip) or, if
// vertical is false, columns reversed within each row. Stride is preserved
// on the returned image, but padding bytes beyond width*bpp are not mirrored
// meaningfully for a horizontal flip. Flipping twice returns to the
// original pixel layout (flip(flip(img)) == img).
func (im *Image) Flip(vertical bool) (*Image, error) {
	out, err := NewWithStride(im.width, im.height, im.format, im.stride)
	if err != nil {
		return nil, err
	}
	out.palette = im.palette
	out.sbit = im.sbit
	bpp := im.format.BytesPerPixel()
	if vertical {
		for y := 0; y < im.height; y++ {
			copy(out.ScanLine(im.height-1-y), im.ScanLine(y))
		}
		return out, nil
	}
	for y := 0; y < im.height; y++ {
		src := im.ScanLine(y)
		dst := out.ScanLine(y)
		for x := 0; x < im.width; x++ {
			srcOff := x * bpp
			dstOff := (im.width-1-x)*bpp
			copy(dst[dstOff:dstOff+bpp], src[srcOff:srcOff+bpp])
		}
	}
	return out, nil
}

// Shrink crops the image in place to the top-left w' x h' region; stride is
// preserved. w' and h' must not exceed the current dimensions.
func (im *Image) Shrink(w, h int) error {
	if w <= 0 || h <= 0 || w > im.width || h > im.height {
		return NewError("image", KindInvalidGeometry, ErrInvalidGeometry)
	}
	// Rows beyond h are simply no longer addressable; bits stays the same
	// backing array (no copy needed since row 0..h-1 are already contiguous
	// with the original stride).
	im.bits = im.bits[:h*im.stride]
	im.width = w
	im.height = h
	return nil
}

// DupARGB32 returns a new ARGB32 image with the same pixels, resolving the
// palette (including TrIdx -> alpha 0) for a CI8 source. For an ARGB32
// source it returns a plain copy.
func (im *Image) DupARGB32() (*Image, error) {
	out, err := New(im.width, im.height, FormatARGB32)
	if err != nil {
		return nil, err
	}
	out.sbit = im.sbit
	if im.format == FormatARGB32 {
		for y := 0; y < im.height; y++ {
			copy(out.ScanLine(y), im.ScanLine(y))
		}
		return out, nil
	}
	if im.format != FormatCI8 {
		return nil, NewError("image", KindInvalidPixelFormat, ErrInvalidPixelFormat)
	}
	trIdx := im.palette.TrIdx
	for y := 0; y < im.height; y++ {
		srcRow := im.ScanLine(y)
		dstRow := out.ScanLine(y)
		for x := 0; x < im.width; x++ {
			idx := srcRow[x]
			argb := im.palette.Entries[idx]
			if int(idx) == trIdx {
				argb &^= 0xFF000000
			}
			putARGB32(dstRow[x*4:], argb)
		}
	}
	return out, nil
}

// UnPremultiply reverses premultiplied alpha in place: for every pixel with
// non-zero A, r,g,b = min(255, channel*255/a). Only meaningful for
// FormatARGB32.
func (im *Image) UnPremultiply() error {
	if im.format != FormatARGB32 {
		return NewError("image", KindInvalidPixelFormat, ErrInvalidPixelFormat)
	}
	for y := 0; y < im.height; y++ {
		row := im.ScanLine(y)
		for x := 0; x < im.width; x++ {
			off := x * 4
			argb := getARGB32(row[off:])
			a := (argb >> 24) & 0xFF
			if a == 0 {
				continue
			}
			r := (argb >> 16) & 0xFF
			g := (argb >> 8) & 0xFF
			b := argb & 0xFF
			r = unpremulChannel(r, a)
			g = unpremulChannel(g, a)
			b = unpremulChannel(b, a)
			putARGB32(row[off:], (a<<24)|(r<<16)|(g<<8)|b)
		}
	}
	return nil
}

func unpremulChannel(c, a uint32) uint32 {
	v := c * 255 / a
	if v > 255 {
		v = 255
	}
	return v
}

// ApplyChromaKey sets alpha to 0 for every pixel whose RGB equals argb's RGB
// Only meaningful for FormatARGB32.
func (im *Image) ApplyChromaKey(argb uint32) error {
	if im.format != FormatARGB32 {
		return NewError("image", KindInvalidPixelFormat, ErrInvalidPixelFormat)
	}
	key := argb & 0x00FFFFFF
	for y := 0; y < im.height; y++ {
		row := im.ScanLine(y)
		for x := 0; x < im.width; x++ {
			off := x * 4
			px := getARGB32(row[off:])
			if px&0x00FFFFFF == key {
				putARGB32(row[off:], px&0x00FFFFFF)
			}
		}
	}
	return nil
}

func getARGB32(b []byte) uint32 {
	return uint32(b[3])<<24 | uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0])
}

func putARGB32(b []byte, argb uint32) {
	b[0] = byte(argb)
	b[1] = byte(argb >> 8)
	b[2] = byte(argb >> 16)
	b[3] = byte(argb >> 24)
}

// --- image.Image interop, so a host shell that already speaks Go's stdlib
// image package can display a decoded icon without understanding CI8/sBIT. ---

func (im *Image) ColorModel() color.Model {
	if im.format == FormatCI8 {
		pal := make(color.Palette, PaletteLen)
		for i, argb := range im.palette.Entries {
			pal[i] = argbToNRGBA(argb)
		}
		return pal
	}
	return color.NRGBAModel
}

func (im *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.width, im.height)
}

func (im *Image) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= im.width || y >= im.height {
		return color.NRGBA{}
	}
	row := im.ScanLine(y)
	if im.format == FormatCI8 {
		idx := row[x]
		argb := im.palette.Entries[idx]
		if int(idx) == im.palette.TrIdx {
			argb &^= 0xFF000000
		}
		return argbToNRGBA(argb)
	}
	return argbToNRGBA(getARGB32(row[x*4:]))
}

func argbToNRGBA(argb uint32) color.NRGBA {
	return color.NRGBA{
		A: uint8(argb >> 24),
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
	}
}
