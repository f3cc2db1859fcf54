package linear

import (
	"encoding/binary"

	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/pixel"
)

// from16Unrolled is functionally identical to From16 but converts four
// source pixels per loop pass instead of one, trading the per-pixel
// bounds-check and loop-branch overhead of From16's inner loop for fewer,
// wider strides through the buffer. Wired in as From16Func's body on
// architectures whose CPU-feature probe reports a wide-register unit
// (simd_amd64.go, simd_arm64.go); architectures without a confirmed probe
// keep From16 itself (simd_other.go).
func from16Unrolled(format pixel.Format, width, height int, imgBuf []byte, stride int) (*retroimg.Image, error) {
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
		x := 0
		for ; x+4 <= width; x += 4 {
			for i := 0; i < 4; i++ {
				px := uint32(binary.LittleEndian.Uint16(imgBuf[srcOff+i*2:]))
				argb, ok := pixel.Convert16(format, px)
				if !ok {
					return nil, retroimg.Wrap("linear", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
				}
				putU32(dstRow[(x+i)*4:], argb)
			}
			srcOff += 8
		}
		for ; x < width; x++ {
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

// from32Unrolled is from16Unrolled's counterpart for 32-bit-per-pixel
// sources; see its doc comment. The identity-format bulk-copy fast path
// already in From32 is preserved so the unrolled path never regresses the
// common ARGB8888 case.
func from32Unrolled(format pixel.Format, width, height int, imgBuf []byte, stride int) (*retroimg.Image, error) {
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
		x := 0
		for ; x+4 <= width; x += 4 {
			for i := 0; i < 4; i++ {
				px := binary.LittleEndian.Uint32(imgBuf[srcOff+i*4:])
				argb, ok := pixel.Convert32(format, px)
				if !ok {
					return nil, retroimg.Wrap("linear", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
				}
				putU32(dstRow[(x+i)*4:], argb)
			}
			srcOff += 16
		}
		for ; x < width; x++ {
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
