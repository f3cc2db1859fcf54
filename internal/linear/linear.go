// Package linear implements the linear raster decoders: converting a
// row-major, optionally strided, source buffer (CI4, CI8, 1bpp mono, or
// 8/16/24/32-bit-per-pixel truecolour) into a retroimg.Image.
//
// Grounded on ImageDecoder_Linear.cpp's fromLinearCI4/fromLinearCI8/
// fromLinearMono/fromLinear8/fromLinear16_cpp/fromLinear24_cpp/
// fromLinear32_cpp (original_source): this package keeps one function per
// source width, mirroring that split, and reuses internal/blit +
// internal/palconv + internal/pixel rather than re-deriving bit layouts.
package linear

import (
	"encoding/binary"

	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/palconv"
	"github.com/deepteams/retroimg/internal/pixel"
)

// strideAdjust validates an explicit byte stride against width*bytespp and
// returns the number of source bytes to skip at the end of each row.
// stride == 0 means "tightly packed".
func strideAdjust(stride, width, bytespp int) (int, error) {
	if stride == 0 {
		return 0, nil
	}
	if stride%bytespp != 0 || stride < width*bytespp {
		return 0, retroimg.Wrap("linear", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	return stride - width*bytespp, nil
}

func checkGeometry(width, height int) error {
	if width <= 0 || height <= 0 {
		return retroimg.Wrap("linear", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	return nil
}

// FromCI4 converts a packed 4-bit-per-pixel source plus a 16-entry palette
// into a CI8 retroimg.Image. width must be even.
func FromCI4(format pixel.Format, msnLeft bool, width, height int, imgBuf []byte, palBuf []byte) (*retroimg.Image, error) {
	if err := checkGeometry(width, height); err != nil {
		return nil, err
	}
	if width%2 != 0 {
		return nil, retroimg.Wrap("linear", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	need := (width * height) / 2
	if len(imgBuf) < need {
		return nil, retroimg.Wrap("linear", retroimg.KindTruncated, retroimg.ErrTruncated)
	}

	pal, sbit, err := palconv.Decode(format, 16, palBuf)
	if err != nil {
		return nil, err
	}

	img, err := retroimg.New(width, height, retroimg.FormatCI8)
	if err != nil {
		return nil, err
	}
	*img.Palette() = pal
	img.SetSBIT(sbit)

	srcStride := width / 2
	for y := 0; y < height; y++ {
		srcRow := imgBuf[y*srcStride : (y+1)*srcStride]
		dstRow := img.ScanLine(y)
		for i, b := range srcRow {
			lo, hi := b&0x0F, b>>4
			if msnLeft {
				dstRow[i*2] = hi
				dstRow[i*2+1] = lo
			} else {
				dstRow[i*2] = lo
				dstRow[i*2+1] = hi
			}
		}
	}
	return img, nil
}

// FromCI8 converts an 8-bit-per-pixel source plus a 256-entry palette into
// a CI8 retroimg.Image.
func FromCI8(format pixel.Format, width, height int, imgBuf []byte, palBuf []byte) (*retroimg.Image, error) {
	if err := checkGeometry(width, height); err != nil {
		return nil, err
	}
	if len(imgBuf) < width*height {
		return nil, retroimg.Wrap("linear", retroimg.KindTruncated, retroimg.ErrTruncated)
	}

	pal, sbit, err := palconv.Decode(format, 256, palBuf)
	if err != nil {
		return nil, err
	}

	img, err := retroimg.New(width, height, retroimg.FormatCI8)
	if err != nil {
		return nil, err
	}
	*img.Palette() = pal
	img.SetSBIT(sbit)

	for y := 0; y < height; y++ {
		copy(img.ScanLine(y), imgBuf[y*width:(y+1)*width])
	}
	return img, nil
}

// FromMono converts a packed 1-bit-per-pixel bitmap (MSB = left-most
// pixel) into a CI8 image with a fixed {white, black} 2-entry palette.
// width must be a multiple of 8.
func FromMono(width, height int, imgBuf []byte) (*retroimg.Image, error) {
	if err := checkGeometry(width, height); err != nil {
		return nil, err
	}
	if width%8 != 0 {
		return nil, retroimg.Wrap("linear", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	need := (width * height) / 8
	if len(imgBuf) < need {
		return nil, retroimg.Wrap("linear", retroimg.KindTruncated, retroimg.ErrTruncated)
	}

	img, err := retroimg.New(width, height, retroimg.FormatCI8)
	if err != nil {
		return nil, err
	}
	pal := img.Palette()
	pal.Entries[0] = 0xFFFFFFFF
	pal.Entries[1] = 0xFF000000
	pal.TrIdx = -1
	img.SetSBIT(retroimg.SBIT{Red: 1, Green: 1, Blue: 1, Gray: 1})

	srcStride := width / 8
	for y := 0; y < height; y++ {
		srcRow := imgBuf[y*srcStride : (y+1)*srcStride]
		dstRow := img.ScanLine(y)
		x := 0
		for _, b := range srcRow {
			for bit := 0; bit < 8; bit++ {
				dstRow[x] = (b >> (7 - bit)) & 1
				x++
			}
		}
	}
	return img, nil
}

// From8 converts an 8-bit-per-pixel single-channel source (luminance,
// alpha, or a packed two-nibble format) into an ARGB32 image.
func From8(format pixel.Format, width, height int, imgBuf []byte, stride int) (*retroimg.Image, error) {
	if err := checkGeometry(width, height); err != nil {
		return nil, err
	}
	srcAdj, err := strideAdjust(stride, width, 1)
	if err != nil {
		return nil, err
	}
	rowWidth := width
	if stride > 0 {
		rowWidth = stride
	}
	if len(imgBuf) < rowWidth*height {
		return nil, retroimg.Wrap("linear", retroimg.KindTruncated, retroimg.ErrTruncated)
	}

	img, err := retroimg.New(width, height, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}
	sbit, ok := sbit8For(format)
	if !ok {
		return nil, retroimg.Wrap("linear", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
	}
	img.SetSBIT(sbit)

	srcOff := 0
	for y := 0; y < height; y++ {
		dstRow := img.ScanLine(y)
		for x := 0; x < width; x++ {
			argb, ok := pixel.Convert8(format, imgBuf[srcOff])
			if !ok {
				return nil, retroimg.Wrap("linear", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
			}
			putU32(dstRow[x*4:], argb)
			srcOff++
		}
		srcOff += srcAdj
	}
	return img, nil
}

func sbit8For(f pixel.Format) (retroimg.SBIT, bool) {
	switch f {
	case pixel.FormatL8:
		return retroimg.SBIT{Red: 8, Green: 8, Blue: 8, Gray: 8}, true
	case pixel.FormatA4L4:
		return retroimg.SBIT{Red: 4, Green: 4, Blue: 4, Gray: 4, Alpha: 4}, true
	case pixel.FormatA8:
		return retroimg.SBIT{Red: 1, Green: 1, Blue: 1, Gray: 1, Alpha: 8}, true
	case pixel.FormatR8:
		return retroimg.SBIT{Red: 8, Green: 1, Blue: 1}, true
	case pixel.FormatRGB332:
		return retroimg.SBIT{Red: 3, Green: 3, Blue: 2}, true
	default:
		return retroimg.SBIT{}, false
	}
}

// From16 converts a 16-bit-per-pixel source into an ARGB32 image.
func From16(format pixel.Format, width, height int, imgBuf []byte, stride int) (*retroimg.Image, error) {
	if err := checkGeometry(width, height); err != nil {
		return nil, err
	}
	srcAdj, err := strideAdjust(stride, width, 2)
	if err != nil {
		return nil, err
	}
	rowBytes := width * 2
	if stride > 0 {
		rowBytes = stride
	}
	if len(imgBuf) < rowBytes*height {
		return nil, retroimg.Wrap("linear", retroimg.KindTruncated, retroimg.ErrTruncated)
	}

	img, err := retroimg.New(width, height, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}
	img.SetSBIT(sbit16For(format))

	srcOff := 0
	for y := 0; y < height; y++ {
		dstRow := img.ScanLine(y)
		for x := 0; x < width; x++ {
			px := uint32(binary.LittleEndian.Uint16(imgBuf[srcOff:]))
			argb, ok := pixel.Convert16(format, px)
			if !ok {
				return nil, retroimg.Wrap("linear", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
			}
			putU32(dstRow[x*4:], argb)
			srcOff += 2
		}
		srcOff += srcAdj
	}
	return img, nil
}

func sbit16For(f pixel.Format) retroimg.SBIT {
	switch f {
	case pixel.FormatARGB1555, pixel.FormatABGR1555, pixel.FormatRGBA5551, pixel.FormatBGRA5551:
		return retroimg.SBIT1555
	case pixel.FormatRGB565, pixel.FormatBGR565:
		return retroimg.SBIT565
	case pixel.FormatARGB4444, pixel.FormatABGR4444, pixel.FormatRGBA4444, pixel.FormatBGRA4444,
		pixel.FormatxRGB4444, pixel.FormatxBGR4444, pixel.FormatRGBx4444, pixel.FormatBGRx4444:
		return retroimg.SBIT4444
	case pixel.FormatRGB555, pixel.FormatBGR555, pixel.FormatBGR555PS1:
		return retroimg.SBIT555
	case pixel.FormatRGB5A3, pixel.FormatBGR5A3:
		return retroimg.SBIT{Red: 5, Green: 5, Blue: 5, Alpha: 4}
	case pixel.FormatIA8, pixel.FormatA8L8, pixel.FormatL8A8:
		return retroimg.SBIT{Red: 8, Green: 8, Blue: 8, Gray: 8, Alpha: 8}
	case pixel.FormatL16:
		return retroimg.SBIT{Red: 8, Green: 8, Blue: 8, Gray: 8}
	case pixel.FormatRG88, pixel.FormatGR88:
		return retroimg.SBIT{Red: 8, Green: 8}
	default:
		return retroimg.SBIT{}
	}
}

// From24 converts a 24-bit-per-pixel source into an ARGB32 image.
func From24(format pixel.Format, width, height int, imgBuf []byte, stride int) (*retroimg.Image, error) {
	if err := checkGeometry(width, height); err != nil {
		return nil, err
	}
	srcAdj, err := strideAdjust(stride, width, 3)
	if err != nil {
		return nil, err
	}
	rowBytes := width * 3
	if stride > 0 {
		rowBytes = stride
	}
	if len(imgBuf) < rowBytes*height {
		return nil, retroimg.Wrap("linear", retroimg.KindTruncated, retroimg.ErrTruncated)
	}

	img, err := retroimg.New(width, height, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}
	img.SetSBIT(retroimg.SBIT888)

	srcOff := 0
	for y := 0; y < height; y++ {
		dstRow := img.ScanLine(y)
		for x := 0; x < width; x++ {
			argb, ok := pixel.Convert24(format, imgBuf[srcOff], imgBuf[srcOff+1], imgBuf[srcOff+2])
			if !ok {
				return nil, retroimg.Wrap("linear", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
			}
			putU32(dstRow[x*4:], argb)
			srcOff += 3
		}
		srcOff += srcAdj
	}
	return img, nil
}

// From32 converts a 32-bit-per-pixel source into an ARGB32 image. When
// img's output stride equals the source stride and format already is
// ARGB32, the fast path copies whole rows instead of converting pixel by
// pixel (mirroring fromLinear32_cpp's own identity-format fast-out, though
// here it is a memcpy fast path rather than a separate function).
func From32(format pixel.Format, width, height int, imgBuf []byte, stride int) (*retroimg.Image, error) {
	if err := checkGeometry(width, height); err != nil {
		return nil, err
	}
	srcAdj, err := strideAdjust(stride, width, 4)
	if err != nil {
		return nil, err
	}
	rowBytes := width * 4
	if stride > 0 {
		rowBytes = stride
	}
	if len(imgBuf) < rowBytes*height {
		return nil, retroimg.Wrap("linear", retroimg.KindTruncated, retroimg.ErrTruncated)
	}

	img, err := retroimg.New(width, height, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}
	img.SetSBIT(sbit32For(format))

	if format == pixel.FormatARGB8888 && img.Stride() == rowBytes {
		copy(img.Bits(), imgBuf[:rowBytes*height])
		return img, nil
	}

	srcOff := 0
	for y := 0; y < height; y++ {
		dstRow := img.ScanLine(y)
		for x := 0; x < width; x++ {
			px := binary.LittleEndian.Uint32(imgBuf[srcOff:])
			argb, ok := pixel.Convert32(format, px)
			if !ok {
				return nil, retroimg.Wrap("linear", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
			}
			putU32(dstRow[x*4:], argb)
			srcOff += 4
		}
		srcOff += srcAdj
	}
	return img, nil
}

func sbit32For(f pixel.Format) retroimg.SBIT {
	switch f {
	case pixel.FormatARGB8888, pixel.FormatABGR8888, pixel.FormatRGBA8888, pixel.FormatBGRA8888,
		pixel.FormatRABG8888:
		return retroimg.SBIT8888
	case pixel.FormatxRGB8888, pixel.FormatxBGR8888, pixel.FormatRGBx8888, pixel.FormatBGRx8888:
		return retroimg.SBIT888
	case pixel.FormatG16R16:
		return retroimg.SBIT{Red: 8, Green: 8}
	case pixel.FormatA2R10G10B10, pixel.FormatA2B10G10R10:
		return retroimg.SBIT{Red: 8, Green: 8, Blue: 8, Alpha: 2}
	case pixel.FormatRGB9E5:
		return retroimg.SBIT888
	case pixel.FormatBGR888_ABGR7888:
		return retroimg.SBIT8888
	default:
		return retroimg.SBIT{}
	}
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
