// Package blit implements the tile-blit kernels: copying a small
// rectangular tile of already-decoded pixels into a retroimg.Image at a
// given tile coordinate.
//
// Grounded on ImageDecoder_p.hpp (original_source), whose BlitTile /
// BlitTile_CI4_LeftLSN / BlitTile_CI4_LeftMSN templates this package
// reproduces. The C++ template parameters tileW/tileH become ordinary
// runtime ints here: Go generics parametrize over types, not over integer
// constants, and every caller already knows its tile size at the call site.
package blit

import "github.com/deepteams/retroimg"

// Pixel is the set of pixel storage types a tile buffer may hold.
type Pixel interface {
	~uint8 | ~uint32
}

// Image is the subset of *retroimg.Image the blit kernels touch. Kept
// narrow so tests can blit into a bare byte slice without constructing a
// full Image.
type Image interface {
	Bits() []byte
	Stride() int
}

var (
	_ Image = (*retroimg.Image)(nil)
)

// Tile blits an tileW*tileH tile of pixel values into img at tile
// coordinate (tileX, tileY). pixel is uint8 for a CI8 image or uint32 for
// an ARGB32 image; img's format must already match sizeof(pixel) the way
// the caller's decoder loop expects (no runtime check here, matching the
// assert-only contract of the original).
//
// No bounds checking is performed: callers must only emit tiles that lie
// entirely within img.
func Tile[P Pixel](img Image, tileBuf []P, tileW, tileH, tileX, tileY int) {
	bits := img.Bits()
	stride := img.Stride()

	switch any(tileBuf).(type) {
	case []uint8:
		rowStart := tileY*tileH*stride + tileX*tileW
		buf := any(tileBuf).([]uint8)
		for y := 0; y < tileH; y++ {
			copy(bits[rowStart+y*stride:rowStart+y*stride+tileW], buf[y*tileW:(y+1)*tileW])
		}
	case []uint32:
		stridePx := stride / 4
		rowStart := (tileY*tileH*stridePx + tileX*tileW) * 4
		buf := any(tileBuf).([]uint32)
		for y := 0; y < tileH; y++ {
			off := rowStart + y*stride
			for x := 0; x < tileW; x++ {
				putU32LE(bits[off+x*4:off+x*4+4], buf[y*tileW+x])
			}
		}
	default:
		panic("blit: unsupported pixel type")
	}
}

func putU32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// CI4LeftLSN blits a packed CI4 tile (two 4-bit palette indices per byte,
// the left pixel of each pair in the low nibble — the NDS/Dreamcast
// nibble order) into a CI8 image, expanding each nibble to a full byte.
//
// tileW must be even. tileBuf holds tileW*tileH/2 bytes.
func CI4LeftLSN(img Image, tileBuf []byte, tileW, tileH, tileX, tileY int) {
	blitCI4(img, tileBuf, tileW, tileH, tileX, tileY, false)
}

// CI4LeftMSN is CI4LeftLSN with the opposite nibble order (the left pixel
// of each pair in the high nibble — the GameCube/Wii nibble order).
func CI4LeftMSN(img Image, tileBuf []byte, tileW, tileH, tileX, tileY int) {
	blitCI4(img, tileBuf, tileW, tileH, tileX, tileY, true)
}

func blitCI4(img Image, tileBuf []byte, tileW, tileH, tileX, tileY int, leftIsMSN bool) {
	stride := img.Stride()
	bits := img.Bits()

	rowStart := tileY*tileH*stride + tileX*tileW
	srcStride := tileW / 2

	for y := 0; y < tileH; y++ {
		dst := bits[rowStart+y*stride : rowStart+y*stride+tileW]
		src := tileBuf[y*srcStride : (y+1)*srcStride]
		for i, b := range src {
			lo := b & 0x0F
			hi := b >> 4
			if leftIsMSN {
				dst[i*2] = hi
				dst[i*2+1] = lo
			} else {
				dst[i*2] = lo
				dst[i*2+1] = hi
			}
		}
	}
}
