// Package palmos implements the Palm OS application-icon reader: a
// .prc resource file's "tAIB" bitmap-family resource, decoded through the
// bitmap chain's "best bitmap" selection rule.
//
// Grounded on PalmOS.cpp (resource-header lookup, BitmapType chain walk,
// best-bitmap selection) and PalmOS_Tbmp.cpp (per-version header size,
// per-pixelSize decode dispatch, compression dispatch) from
// original_source. palmos_tbmp_structs.h and palmos_system_palette.h
// themselves were not part of the retrieved corpus: the BitmapType v0-v3
// field layout below is reconstructed from the offsets/fields
// PalmOS.cpp/PalmOS_Tbmp.cpp reference directly (nextDepthOffset,
// compressionType, transparentIndex, pixelFormat, transparentValue,
// nextBitmapOffset, and the per-version header sizes 10/16/16/24 bytes),
// and the 256-entry system palette is synthesised as a 6x6x6 colour cube
// plus a grayscale ramp rather than reproduced byte-for-byte.
package palmos

import (
	"encoding/binary"

	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/bitstream"
	"github.com/deepteams/retroimg/internal/linear"
	"github.com/deepteams/retroimg/internal/pixel"
)

const (
	prcHeaderSize   = 0x4E
	resHeaderSize   = 10
	numRecordsOff   = 0x4C
	firstResHdrOff  = prcHeaderSize

	resTypeAppIcon = 0x74414942 // 'tAIB'
	iconResIDLarge = 1000

	bitmapMaxHeaderSize = 24
)

// Per-version BitmapType header sizes, reconstructed from loadTbmp's
// header_size_tbl lookup.
var headerSizeTbl = [4]int{10, 16, 16, 24}

// Flag bits, reconstructed from Palm OS's public BitmapFlagsType
// documentation (the literal values aren't in the retrieved corpus, since
// palmos_tbmp_structs.h wasn't retrieved).
const (
	flagCompressed          = 0x8000
	flagHasColorTable       = 0x4000
	flagHasTransparency     = 0x2000
	flagIndirect             = 0x1000
	flagDirectColor         = 0x0400
	flagIndirectColorTable  = 0x0200
)

// Compression type values, reconstructed the same way.
const (
	comprNone      = 0xFF
	comprScanLine  = 0x00
	comprRLE       = 0x01
	comprPackBits  = 0x02
)

// pixelFormat values (v3 only), reconstructed the same way.
const (
	pixelFormatIndexed   = 0x00
	pixelFormatIndexedLE = 0x01
	pixelFormatRGB565BE  = 0x02
	pixelFormatRGB565LE  = 0x03
)

// bitmapHeader is a parsed BitmapType struct: the common prefix plus the
// raw version-specific union bytes, still in big-endian file order where
// they are multi-byte.
type bitmapHeader struct {
	addr     uint64
	width    int
	height   int
	rowBytes int
	flags    uint16
	pixelSize uint8
	version  uint8
	union    [16]byte // raw bytes following the 10-byte common prefix
}

func (b *bitmapHeader) v1NextDepthOffset() uint16 { return binary.BigEndian.Uint16(b.union[0:2]) }
func (b *bitmapHeader) v2NextDepthOffset() uint16  { return binary.BigEndian.Uint16(b.union[0:2]) }
func (b *bitmapHeader) v2TransparentIndex() uint8  { return b.union[2] }
func (b *bitmapHeader) v2CompressionType() uint8   { return b.union[3] }
func (b *bitmapHeader) v3PixelFormat() uint8        { return b.union[1] }
func (b *bitmapHeader) v3CompressionType() uint8    { return b.union[3] }
func (b *bitmapHeader) v3TransparentValue() uint32 { return binary.BigEndian.Uint32(b.union[6:10]) }
func (b *bitmapHeader) v3NextBitmapOffset() uint32 { return binary.BigEndian.Uint32(b.union[10:14]) }

func readBitmapHeader(src retroimg.Source, addr uint64) (bitmapHeader, error) {
	buf := make([]byte, bitmapMaxHeaderSize)
	if _, err := src.SeekAndRead(addr, buf); err != nil {
		return bitmapHeader{}, retroimg.Wrap("palmos", retroimg.KindTruncated, err)
	}
	version := buf[9]
	if version > 3 {
		return bitmapHeader{}, retroimg.NewError("palmos", retroimg.KindUnsupportedVersion, retroimg.ErrUnsupportedVersion)
	}
	var b bitmapHeader
	b.addr = addr
	b.width = int(binary.BigEndian.Uint16(buf[0:2]))
	b.height = int(binary.BigEndian.Uint16(buf[2:4]))
	b.rowBytes = int(binary.BigEndian.Uint16(buf[4:6]))
	b.flags = binary.BigEndian.Uint16(buf[6:8])
	b.pixelSize = buf[8]
	b.version = version
	copy(b.union[:], buf[10:])
	return b, nil
}

// nextAddr returns the address of the next bitmap in this family's chain,
// or 0 if this is the last one, per PalmOSPrivate::loadBitmap_tAIB's
// chain-walk switch.
func (b *bitmapHeader) nextAddr() uint64 {
	switch b.version {
	case 0:
		return 0
	case 1:
		if b.pixelSize == 255 {
			return b.addr + 16
		}
		if off := b.v1NextDepthOffset(); off != 0 {
			return b.addr + uint64(off)*4
		}
		return 0
	case 2:
		if off := b.v2NextDepthOffset(); off != 0 {
			return b.addr + uint64(off)*4
		}
		return 0
	case 3:
		if off := b.v3NextBitmapOffset(); off != 0 {
			return b.addr + uint64(off)
		}
		return 0
	}
	return 0
}

func findResHeader(src retroimg.Source, typ uint32, id uint16) (uint32, bool, error) {
	hdr := make([]byte, prcHeaderSize)
	if _, err := src.SeekAndRead(0, hdr); err != nil {
		return 0, false, retroimg.Wrap("palmos", retroimg.KindTruncated, err)
	}
	numRecords := int(binary.BigEndian.Uint16(hdr[numRecordsOff:]))

	rec := make([]byte, resHeaderSize)
	for i := 0; i < numRecords; i++ {
		off := uint64(firstResHdrOff + i*resHeaderSize)
		if _, err := src.SeekAndRead(off, rec); err != nil {
			return 0, false, retroimg.Wrap("palmos", retroimg.KindTruncated, err)
		}
		recType := binary.BigEndian.Uint32(rec[0:4])
		recID := binary.BigEndian.Uint16(rec[4:6])
		if recType == typ && recID == id {
			return binary.BigEndian.Uint32(rec[6:10]), true, nil
		}
	}
	return 0, false, nil
}

func detect(src retroimg.Source) bool {
	if src.Size() < prcHeaderSize {
		return false
	}
	_, found, err := findResHeader(src, resTypeAppIcon, iconResIDLarge)
	return err == nil && found
}

// Reader implements retroimg.FormatReader for Palm OS tAIB application
// icons.
type Reader struct{}

func (Reader) Identify(src retroimg.Source) (bool, error) {
	return detect(src), nil
}

func trimCString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func (Reader) Fields(src retroimg.Source) ([]retroimg.Field, error) {
	hdr := make([]byte, 32)
	if _, err := src.SeekAndRead(0, hdr); err != nil {
		return nil, retroimg.Wrap("palmos", retroimg.KindTruncated, err)
	}
	return []retroimg.Field{
		{Name: "Internal Name", Value: trimCString(hdr[0:32])},
	}, nil
}

// walkBitmapFamily reads every BitmapType header reachable from addr via
// nextAddr, matching loadBitmap_tAIB's bitmapTypeMap construction.
func walkBitmapFamily(src retroimg.Source, addr uint64) ([]bitmapHeader, error) {
	var headers []bitmapHeader
	for addr != 0 {
		b, err := readBitmapHeader(src, addr)
		if err != nil {
			return nil, err
		}
		next := b.nextAddr()
		if b.width > 0 && b.height > 0 {
			headers = append(headers, b)
		}
		addr = next
	}
	return headers, nil
}

// selectBest applies loadBitmap_tAIB's "best bitmap" rule: newer version
// wins, then higher colour depth, then bigger dimensions.
func selectBest(headers []bitmapHeader) *bitmapHeader {
	if len(headers) == 0 {
		return nil
	}
	best := &headers[0]
	for i := 1; i < len(headers); i++ {
		cand := &headers[i]
		switch {
		case cand.version > best.version:
			best = cand
		case cand.version < best.version:
			continue
		case cand.pixelSize > best.pixelSize:
			best = cand
		case cand.pixelSize < best.pixelSize:
			continue
		case cand.width > best.width || cand.height > best.height:
			best = cand
		}
	}
	return best
}

// sysPalette256 synthesises a 256-entry default colour table: a 6x6x6
// colour cube (216 entries) followed by a grayscale ramp filling the
// remaining 40 slots. The real Palm OS default system palette
// (palmos_system_palette.h) wasn't part of the retrieved corpus, so this
// is a locally-generated approximation of its general "web-safe cube +
// grays" shape rather than a byte-exact reproduction.
func sysPalette256() []uint32 {
	levels := [6]uint8{0x00, 0x33, 0x66, 0x99, 0xCC, 0xFF}
	pal := make([]uint32, 256)
	i := 0
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				pal[i] = 0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
				i++
			}
		}
	}
	for i < 256 {
		gray := uint32((i - 216) * 255 / 39)
		pal[i] = 0xFF000000 | gray<<16 | gray<<8 | gray
		i++
	}
	return pal
}

func decompress(data []byte, comprType uint8, rowBytes, height int) ([]byte, error) {
	switch comprType {
	case comprNone:
		return data, nil
	case comprScanLine:
		return bitstream.Scanline(data, rowBytes, height)
	case comprRLE:
		return bitstream.RLE(data, rowBytes, height)
	case comprPackBits:
		return bitstream.PackBits8(data, rowBytes, height)
	default:
		return nil, retroimg.NewError("palmos", retroimg.KindUnsupportedVersion, retroimg.ErrUnsupportedVersion)
	}
}

// decodeBitmap ports loadTbmp's pixelSize dispatch for a single selected
// BitmapType header.
func decodeBitmap(src retroimg.Source, b *bitmapHeader) (*retroimg.Image, error) {
	addr := b.addr + uint64(headerSizeTbl[b.version])

	var directInfo [8]byte
	hasDirectInfo := false
	if b.flags&flagDirectColor != 0 {
		if b.version < 2 || b.pixelSize != 16 {
			return nil, retroimg.NewError("palmos", retroimg.KindCorrupt, retroimg.ErrCorrupt)
		}
		if b.version == 2 {
			if _, err := src.SeekAndRead(addr, directInfo[:]); err != nil {
				return nil, retroimg.Wrap("palmos", retroimg.KindTruncated, err)
			}
			addr += 8
			hasDirectInfo = true
		}
	}

	iconDataLen := b.rowBytes * b.height

	var comprType uint8 = comprNone
	comprDataLen := iconDataLen
	if b.version >= 2 && b.flags&flagCompressed != 0 {
		switch b.version {
		case 3:
			comprType = b.v3CompressionType()
			lbuf := make([]byte, 4)
			if _, err := src.SeekAndRead(addr, lbuf); err != nil {
				return nil, retroimg.Wrap("palmos", retroimg.KindTruncated, err)
			}
			comprDataLen = int(binary.BigEndian.Uint32(lbuf))
			addr += 4
		default: // v2
			comprType = b.v2CompressionType()
			lbuf := make([]byte, 2)
			if _, err := src.SeekAndRead(addr, lbuf); err != nil {
				return nil, retroimg.Wrap("palmos", retroimg.KindTruncated, err)
			}
			comprDataLen = int(binary.BigEndian.Uint16(lbuf))
			addr += 2
		}
	}
	if comprDataLen > iconDataLen {
		return nil, retroimg.NewError("palmos", retroimg.KindCorrupt, retroimg.ErrCorrupt)
	}

	raw := make([]byte, comprDataLen)
	if _, err := src.SeekAndRead(addr, raw); err != nil {
		return nil, retroimg.Wrap("palmos", retroimg.KindTruncated, err)
	}

	switch b.pixelSize {
	case 0, 1:
		return linear.FromMono(b.width, b.height, raw)

	case 2:
		return decodeGray(b.width, b.height, b.rowBytes, raw, 2)

	case 4:
		return decodeGray(b.width, b.height, b.rowBytes, raw, 4)

	case 8:
		if b.flags&(flagHasColorTable|flagDirectColor|flagIndirectColorTable) != 0 {
			return nil, retroimg.NewError("palmos", retroimg.KindUnsupportedByFormat, retroimg.ErrUnsupportedByFormat)
		}
		decomp, err := decompress(raw, comprType, b.rowBytes, b.height)
		if err != nil {
			return nil, err
		}
		return decodeCI8SystemPalette(b, decomp)

	case 16:
		if b.flags&(flagHasColorTable|flagIndirect|flagIndirectColorTable) != 0 {
			return nil, retroimg.NewError("palmos", retroimg.KindUnsupportedByFormat, retroimg.ErrUnsupportedByFormat)
		}
		decomp := raw
		if comprType == comprScanLine {
			var err error
			decomp, err = bitstream.Scanline(raw, b.rowBytes, b.height)
			if err != nil {
				return nil, err
			}
		}
		return decode16(b, decomp, directInfo, hasDirectInfo)

	default:
		return nil, retroimg.NewError("palmos", retroimg.KindInvalidPixelFormat, retroimg.ErrInvalidPixelFormat)
	}
}

// decodeGray builds a CI8 image from a packed 2 or 4 bits-per-pixel
// grayscale bitmap, synthesising an evenly spaced gray ramp the way
// loadTbmp's pixelSize==4 case does explicitly (0xFFFFFFFF stepping down
// by 0x111111 per of 16 levels); the 2-bpp ramp (4 levels, stepping by
// 0x555555) follows the same pattern since ImageDecoder_Linear_Gray.hpp
// wasn't part of the retrieved corpus.
func decodeGray(width, height, rowBytes int, buf []byte, bpp int) (*retroimg.Image, error) {
	levels := 1 << bpp
	step := uint32(0xFFFFFF) / uint32(levels-1)

	img, err := retroimg.New(width, height, retroimg.FormatCI8)
	if err != nil {
		return nil, err
	}
	pal := img.Palette()
	for i := 0; i < levels; i++ {
		gray := uint32(0xFFFFFF) - uint32(i)*step
		pal.Entries[i] = 0xFF000000 | gray
	}
	img.SetSBIT(retroimg.SBIT{Red: uint8(bpp), Green: uint8(bpp), Blue: uint8(bpp), Gray: uint8(bpp)})

	perByte := 8 / bpp
	mask := uint8(levels - 1)
	for y := 0; y < height; y++ {
		srcRow := buf[y*rowBytes : y*rowBytes+(width+perByte-1)/perByte]
		dstRow := img.ScanLine(y)
		x := 0
		for _, bv := range srcRow {
			for s := 0; s < perByte && x < width; s++ {
				shift := 8 - bpp*(s+1)
				dstRow[x] = (bv >> shift) & mask
				x++
			}
		}
	}
	return img, nil
}

func decodeCI8SystemPalette(b *bitmapHeader, data []byte) (*retroimg.Image, error) {
	img, err := retroimg.New(b.width, b.height, retroimg.FormatCI8)
	if err != nil {
		return nil, err
	}
	pal := img.Palette()
	copy(pal.Entries[:], sysPalette256())
	pal.TrIdx = -1

	for y := 0; y < b.height; y++ {
		copy(img.ScanLine(y), data[y*b.rowBytes:y*b.rowBytes+b.width])
	}

	if b.flags&flagHasTransparency != 0 {
		var trIdx uint8
		if b.version <= 2 {
			trIdx = b.v2TransparentIndex()
		} else {
			trIdx = uint8(b.v3TransparentValue())
		}
		if err := img.SetTrIdx(int(trIdx)); err != nil {
			return nil, err
		}
		pal.Entries[trIdx] = 0x00000000
	} else {
		img.SetSBIT(retroimg.SBIT{Red: 8, Green: 8, Blue: 8})
	}
	return img, nil
}

func decode16(b *bitmapHeader, data []byte, directInfo [8]byte, hasDirectInfo bool) (*retroimg.Image, error) {
	pixelFormat := uint8(pixelFormatRGB565BE)
	if b.version == 3 {
		pixelFormat = b.v3PixelFormat()
	}
	if pixelFormat != pixelFormatRGB565BE && pixelFormat != pixelFormatRGB565LE {
		return nil, retroimg.NewError("palmos", retroimg.KindUnsupportedByFormat, retroimg.ErrUnsupportedByFormat)
	}

	img, err := retroimg.New(b.width, b.height, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}
	img.SetSBIT(retroimg.SBIT565)

	srcStride := b.rowBytes
	for y := 0; y < b.height; y++ {
		srcRow := data[y*srcStride : y*srcStride+b.width*2]
		dstRow := img.ScanLine(y)
		for x := 0; x < b.width; x++ {
			var px uint16
			if pixelFormat == pixelFormatRGB565BE {
				px = binary.BigEndian.Uint16(srcRow[x*2:])
			} else {
				px = binary.LittleEndian.Uint16(srcRow[x*2:])
			}
			argb := pixel.RGB565ToARGB32(uint32(px))
			putU32(dstRow[x*4:], argb)
		}
	}

	if b.flags&flagHasTransparency != 0 {
		var key uint32
		switch b.version {
		case 2:
			if !hasDirectInfo {
				return nil, retroimg.NewError("palmos", retroimg.KindCorrupt, retroimg.ErrCorrupt)
			}
			r, g, bl := directInfo[5], directInfo[6], directInfo[7]
			key = 0xFF000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(bl)
		case 3:
			key = pixel.RGB565ToARGB32(b.v3TransparentValue())
		default:
			return nil, retroimg.NewError("palmos", retroimg.KindCorrupt, retroimg.ErrCorrupt)
		}
		if err := img.ApplyChromaKey(key); err != nil {
			return nil, err
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

func (Reader) DecodeImage(src retroimg.Source) (*retroimg.Image, error) {
	addr, found, err := findResHeader(src, resTypeAppIcon, iconResIDLarge)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, retroimg.NewError("palmos", retroimg.KindBadMagic, retroimg.ErrBadMagic)
	}

	headers, err := walkBitmapFamily(src, uint64(addr))
	if err != nil {
		return nil, err
	}
	best := selectBest(headers)
	if best == nil {
		return nil, retroimg.NewError("palmos", retroimg.KindCorrupt, retroimg.ErrCorrupt)
	}
	return decodeBitmap(src, best)
}

var _ retroimg.FormatReader = Reader{}
