package blockdec

import (
	"fmt"

	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/blit"
)

// alignUp4 rounds n up to the next multiple of 4, mirroring ALIGN_BYTES(4, n)
// for the 4x4-tiled formats (DXTn, BC4/5/7).
func alignUp4(n int) int {
	return (n + 3) &^ 3
}

// decode4x4 runs a block-compressed 4x4-tile image through blockFn tile by
// tile, mirroring the T_fromDXT1/fromDXT3/fromDXT5/fromBC4/fromBC5 pattern:
// allocate at the block-aligned physical size, blit each decoded tile, then
// crop (Shrink) back down to the logical size when it wasn't block-aligned.
func decode4x4(width, height int, buf []byte, blockBytes int, blockFn func(block []byte) Tile) (*retroimg.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, retroimg.NewError("blockdec", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	physWidth := alignUp4(width)
	physHeight := alignUp4(height)
	tilesX := physWidth / 4
	tilesY := physHeight / 4

	need := tilesX * tilesY * blockBytes
	if len(buf) < need {
		return nil, retroimg.Wrap("blockdec", retroimg.KindTruncated, fmt.Errorf("need %d bytes, got %d", need, len(buf)))
	}

	img, err := retroimg.New(physWidth, physHeight, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}

	for y := 0; y < tilesY; y++ {
		for x := 0; x < tilesX; x++ {
			off := (y*tilesX + x) * blockBytes
			tile := blockFn(buf[off : off+blockBytes])
			blit.Tile[uint32](img, tile[:], 4, 4, x, y)
		}
	}

	if width < physWidth || height < physHeight {
		if err := img.Shrink(width, height); err != nil {
			return nil, err
		}
	}
	img.SetSBIT(retroimg.SBIT8888)
	return img, nil
}

// FromDXT1 decodes a standard DXT1 image (width*height, 8 bytes/block).
// alpha1bit selects the "index 3 is transparent when color0<=color1"
// variant (DXT1_A1 / the common EXT_texture_compression_s3tc_srgb form).
func FromDXT1(width, height int, buf []byte, alpha1bit bool) (*retroimg.Image, error) {
	return decode4x4(width, height, buf, 8, func(block []byte) Tile {
		return DXT1(block, alpha1bit)
	})
}

// FromDXT1GCN decodes a GameCube-variant DXT1 image: big-endian, indexes
// reversed, always transparent on index 3, 2x2 macroblocks of 4x4 tiles.
func FromDXT1GCN(width, height int, buf []byte) (*retroimg.Image, error) {
	physWidth := alignUp4(width)
	physHeight := alignUp4(height)
	tilesX := physWidth / 4
	tilesY := physHeight / 4
	if tilesX%2 != 0 || tilesY%2 != 0 {
		return nil, retroimg.NewError("blockdec", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	need := tilesX * tilesY * 8
	if len(buf) < need {
		return nil, retroimg.Wrap("blockdec", retroimg.KindTruncated, fmt.Errorf("need %d bytes, got %d", need, len(buf)))
	}

	img, err := retroimg.New(physWidth, physHeight, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}

	// 2x2 macroblocks of 4x4 tiles, each macroblock 32 bytes.
	macroX, macroY := tilesX/2, tilesY/2
	off := 0
	for my := 0; my < macroY; my++ {
		for mx := 0; mx < macroX; mx++ {
			for sub := 0; sub < 4; sub++ {
				tx := mx*2 + sub%2
				ty := my*2 + sub/2
				tile := DXT1GCN(buf[off : off+8])
				blit.Tile[uint32](img, tile[:], 4, 4, tx, ty)
				off += 8
			}
		}
	}

	if width < physWidth || height < physHeight {
		if err := img.Shrink(width, height); err != nil {
			return nil, err
		}
	}
	img.SetSBIT(retroimg.SBIT8888)
	return img, nil
}

// FromDXT2 decodes DXT2 (DXT3 with premultiplied alpha) and un-premultiplies
// the result, per fromDXT2's "decode as DXT3, then UnPremultiply" shape.
func FromDXT2(width, height int, buf []byte) (*retroimg.Image, error) {
	img, err := FromDXT3(width, height, buf)
	if err != nil {
		return nil, err
	}
	if err := img.UnPremultiply(); err != nil {
		return nil, err
	}
	return img, nil
}

// FromDXT3 decodes a standard DXT3 image (16 bytes/block).
func FromDXT3(width, height int, buf []byte) (*retroimg.Image, error) {
	return decode4x4(width, height, buf, 16, DXT3)
}

// FromDXT4 decodes DXT4 (DXT5 with premultiplied alpha) and un-premultiplies
// the result.
func FromDXT4(width, height int, buf []byte) (*retroimg.Image, error) {
	img, err := FromDXT5(width, height, buf)
	if err != nil {
		return nil, err
	}
	if err := img.UnPremultiply(); err != nil {
		return nil, err
	}
	return img, nil
}

// FromDXT5 decodes a standard DXT5 image (16 bytes/block).
func FromDXT5(width, height int, buf []byte) (*retroimg.Image, error) {
	return decode4x4(width, height, buf, 16, DXT5)
}

// FromBC4 decodes a BC4 (ATI1) single-channel image (8 bytes/block).
func FromBC4(width, height int, buf []byte) (*retroimg.Image, error) {
	img, err := decode4x4(width, height, buf, 8, BC4)
	if err != nil {
		return nil, err
	}
	img.SetSBIT(retroimg.SBIT{Red: 8})
	return img, nil
}

// FromBC5 decodes a BC5 (ATI2) dual-channel image (16 bytes/block).
func FromBC5(width, height int, buf []byte) (*retroimg.Image, error) {
	img, err := decode4x4(width, height, buf, 16, BC5)
	if err != nil {
		return nil, err
	}
	img.SetSBIT(retroimg.SBIT{Red: 8, Green: 8})
	return img, nil
}

// FromBC7 decodes a BC7 image (16 bytes/block).
func FromBC7(width, height int, buf []byte) (*retroimg.Image, error) {
	return decode4x4(width, height, buf, 16, func(block []byte) Tile {
		tile, ok := DecodeBC7(block)
		if !ok {
			// Invalid mode: leave the tile all zero (transparent black), matching a
			// tolerant best-effort decode rather than aborting the
			// whole image over one corrupt block.
			return Tile{}
		}
		return tile
	})
}

// alignASTC rounds width/height up to whole blockX/blockY multiples,
// matching ImageSizeCalc::alignImageSizeASTC.
func alignASTC(width, height, blockX, blockY int) (int, int) {
	physWidth := ((width + blockX - 1) / blockX) * blockX
	physHeight := ((height + blockY - 1) / blockY) * blockY
	return physWidth, physHeight
}

// FromASTC decodes an ASTC 2D LDR image using dec to decompress each
// 16-byte block, tiling blockX*blockY tiles across the image the way
// fromASTC does (it can't reuse the fixed-size BlitTile helper since ASTC
// supports more than a dozen distinct block footprints).
func FromASTC(dec ASTCBlockDecoder, width, height int, buf []byte, blockX, blockY int, srgb bool) (*retroimg.Image, error) {
	if !ValidASTCBlockSize(uint8(blockX), uint8(blockY)) {
		return nil, retroimg.NewError("blockdec", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
	}
	if width <= 0 || height <= 0 {
		return nil, retroimg.NewError("blockdec", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	physWidth, physHeight := alignASTC(width, height, blockX, blockY)
	tilesX := physWidth / blockX
	tilesY := physHeight / blockY

	need := tilesX * tilesY * 16
	if len(buf) < need {
		return nil, retroimg.Wrap("blockdec", retroimg.KindTruncated, fmt.Errorf("need %d bytes, got %d", need, len(buf)))
	}

	img, err := retroimg.New(physWidth, physHeight, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}

	tileBuf := make([]uint32, blockX*blockY)
	stride := img.Stride()
	bits := img.Bits()
	for y := 0; y < tilesY; y++ {
		for x := 0; x < tilesX; x++ {
			off := (y*tilesX + x) * 16
			if err := DecodeASTC(dec, tileBuf, buf[off:off+16], blockX, blockY, srgb); err != nil {
				return nil, err
			}
			destRow := (y*blockY)*stride + (x*blockX)*4
			for ty := 0; ty < blockY; ty++ {
				rowOff := destRow + ty*stride
				for tx := 0; tx < blockX; tx++ {
					putU32(bits[rowOff+tx*4:rowOff+tx*4+4], tileBuf[ty*blockX+tx])
				}
			}
		}
	}

	if width < physWidth || height < physHeight {
		if err := img.Shrink(width, height); err != nil {
			return nil, err
		}
	}
	img.SetSBIT(retroimg.SBIT8888)
	return img, nil
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
