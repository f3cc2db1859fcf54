package gamecube

import (
	"encoding/binary"

	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/blit"
	"github.com/deepteams/retroimg/internal/pixel"
	"github.com/deepteams/retroimg/internal/swizzle"
)

// decodeRGB5A3Tiled ports fromGcn16(RGB5A3): big-endian 16-bit source, 4x4
// tiles walked row-major.
func decodeRGB5A3Tiled(width, height int, buf []byte) (*retroimg.Image, error) {
	if width%swizzle.GCNTile16Width != 0 || height%swizzle.GCNTile16Height != 0 {
		return nil, retroimg.NewError("gamecube", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	need := width * height * 2
	if len(buf) < need {
		return nil, retroimg.NewError("gamecube", retroimg.KindTruncated, retroimg.ErrTruncated)
	}
	img, err := retroimg.New(width, height, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}
	tilesX := width / swizzle.GCNTile16Width
	tilesY := height / swizzle.GCNTile16Height

	pos := 0
	var tile [16]uint32
	for y := 0; y < tilesY; y++ {
		for x := 0; x < tilesX; x++ {
			for i := 0; i < 16; i++ {
				px := binary.BigEndian.Uint16(buf[pos : pos+2])
				pos += 2
				tile[i] = pixel.RGB5A3ToARGB32(uint32(px))
			}
			blit.Tile[uint32](img, tile[:], swizzle.GCNTile16Width, swizzle.GCNTile16Height, x, y)
		}
	}
	img.SetSBIT(retroimg.SBIT{Red: 5, Green: 5, Blue: 5, Alpha: 4})
	return img, nil
}

// decodeCI8Tiled ports fromGcnCI8: 8x4 tiles, palette is 256 big-endian
// RGB5A3 entries.
func decodeCI8Tiled(width, height int, buf []byte, palBuf []byte) (*retroimg.Image, error) {
	if width%swizzle.GCNTile8Width != 0 || height%swizzle.GCNTile8Height != 0 {
		return nil, retroimg.NewError("gamecube", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	if len(buf) < width*height {
		return nil, retroimg.NewError("gamecube", retroimg.KindTruncated, retroimg.ErrTruncated)
	}
	if len(palBuf) < 256*2 {
		return nil, retroimg.NewError("gamecube", retroimg.KindTruncated, retroimg.ErrTruncated)
	}

	img, err := retroimg.New(width, height, retroimg.FormatCI8)
	if err != nil {
		return nil, err
	}

	trIdx := -1
	for i := 0; i < 256; i++ {
		px := binary.BigEndian.Uint16(palBuf[i*2 : i*2+2])
		argb := pixel.RGB5A3ToARGB32(uint32(px))
		img.Palette().Entries[i] = argb
		if trIdx < 0 && argb>>24 == 0 {
			trIdx = i
		}
	}
	if err := img.SetTrIdx(trIdx); err != nil {
		return nil, err
	}

	tilesX := width / swizzle.GCNTile8Width
	tilesY := height / swizzle.GCNTile8Height
	pos := 0
	var tile [32]uint8
	for y := 0; y < tilesY; y++ {
		for x := 0; x < tilesX; x++ {
			copy(tile[:], buf[pos:pos+32])
			pos += 32
			blit.Tile[uint8](img, tile[:], swizzle.GCNTile8Width, swizzle.GCNTile8Height, x, y)
		}
	}
	img.SetSBIT(retroimg.SBIT{Red: 5, Green: 5, Blue: 5, Alpha: 4})
	return img, nil
}
