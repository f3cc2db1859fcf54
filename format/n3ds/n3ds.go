// Package n3ds implements the Nintendo 3DS icon reader: SMDH icon
// files, 3DSX homebrew executables' embedded SMDH, and CIA installable
// archives' trailing meta-section SMDH. CCI (encrypted cartridge image)
// is deliberately unsupported, matching the original's plaintext-only
// caveat.
//
// Grounded on Nintendo3DS.cpp and n3ds_structs.h (original_source):
// isRomSupported_static's three-way SMDH/3DSX/CIA detection, loadSMDH's
// per-container SMDH address derivation, and loadIcon's RGB565 tiled
// icon decode dispatch. ImageDecoder_N3DS.cpp grounds the tile layout
// (internal/swizzle.N3DSTileOrder) consumed here via internal/blit.
package n3ds

import (
	"encoding/binary"

	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/blit"
	"github.com/deepteams/retroimg/internal/pixel"
	"github.com/deepteams/retroimg/internal/swizzle"
)

const (
	smdhHeaderSize = 8256 // N3DS_SMDH_Header_t
	smdhIconSize   = 0x1680

	smdhTitleSize    = 512
	smdhTitlesCount  = 16
	smdhSettingsSize = 48

	smdxStandardHeaderSize = 32
	smdxExtHeaderSize      = 44
	smdxSMDHOffsetOff      = 32 // uint32 smdh_offset, right after the 32-byte standard header

	ciaHeaderSize     = 0x2020
	ciaMetaHeaderSize = 0x400

	iconSmallW = 24
	iconSmallH = 24
	iconLargeW = 48
	iconLargeH = 48

	tileDim = 8 // N3DS icons are tiled in 8x8 blocks.
)

var smdhMagic = [4]byte{'S', 'M', 'D', 'H'}
var n3dsxMagic = [4]byte{'3', 'D', 'S', 'X'}

// romKind is which of the three supported container shapes a source is.
type romKind int

const (
	kindUnknown romKind = iota
	kindSMDH
	kind3DSX
	kindCIA
)

// toNext64 rounds val up to the next multiple of 64, matching
// Nintendo3DSPrivate::toNext64.
func toNext64(val uint32) uint32 {
	return (val + 63) &^ 63
}

func hasExt(src retroimg.Source, ext string) bool {
	name := src.Filename()
	if len(name) < len(ext) {
		return false
	}
	tail := name[len(name)-len(ext):]
	if len(tail) != len(ext) {
		return false
	}
	for i := range tail {
		a, b := tail[i], ext[i]
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}

// ciaHeaderFields are the few N3DS_CIA_Header_t fields loadSMDH/loadIcon
// actually consult; content_index[0x2000] is never read.
type ciaHeaderFields struct {
	headerSize    uint32
	typ           uint16
	version       uint16
	certChainSize uint32
	ticketSize    uint32
	tmdSize       uint32
	metaSize      uint32
	contentSize   uint64
}

func readCIAHeader(src retroimg.Source) (ciaHeaderFields, error) {
	buf := make([]byte, 0x20)
	if _, err := src.SeekAndRead(0, buf); err != nil {
		return ciaHeaderFields{}, retroimg.Wrap("n3ds", retroimg.KindTruncated, err)
	}
	return ciaHeaderFields{
		headerSize:    binary.LittleEndian.Uint32(buf[0x00:]),
		typ:           binary.LittleEndian.Uint16(buf[0x04:]),
		version:       binary.LittleEndian.Uint16(buf[0x06:]),
		certChainSize: binary.LittleEndian.Uint32(buf[0x08:]),
		ticketSize:    binary.LittleEndian.Uint32(buf[0x0C:]),
		tmdSize:       binary.LittleEndian.Uint32(buf[0x10:]),
		metaSize:      binary.LittleEndian.Uint32(buf[0x14:]),
		contentSize:   binary.LittleEndian.Uint64(buf[0x18:]),
	}, nil
}

// ciaSMDHAddr computes the byte offset of the trailing meta SMDH, per
// loadSMDH's ROM_TYPE_CIA case: each preceding section is padded up to the
// next multiple of 64, the Meta_Header_t is fixed-size and not itself
// padded.
func ciaSMDHAddr(h ciaHeaderFields) uint64 {
	addr := toNext64(h.headerSize) +
		toNext64(h.certChainSize) +
		toNext64(h.ticketSize) +
		toNext64(h.tmdSize) +
		toNext64(uint32(h.contentSize)) +
		uint32(ciaMetaHeaderSize)
	return uint64(addr)
}

// detect mirrors isRomSupported_static: CIA is recognised by extension plus
// a header/size cross-check (it has no unambiguous magic), SMDH and 3DSX by
// magic plus a minimum-size check.
func detect(src retroimg.Source) romKind {
	size := src.Size()

	if hasExt(src, ".cia") && size >= ciaHeaderSize {
		h, err := readCIAHeader(src)
		if err == nil && h.headerSize == ciaHeaderSize && h.typ == 0 && h.version == 0 {
			szMin := toNext64(h.headerSize) + toNext64(h.certChainSize) +
				toNext64(h.ticketSize) + toNext64(h.tmdSize) +
				toNext64(uint32(h.contentSize)) + toNext64(h.metaSize)
			if size >= uint64(szMin) {
				return kindCIA
			}
		}
	}

	magic := make([]byte, 4)
	if _, err := src.SeekAndRead(0, magic); err == nil {
		if string(magic) == string(smdhMagic[:]) && size >= uint64(smdhHeaderSize+smdhIconSize) {
			return kindSMDH
		}
		if string(magic) == string(n3dsxMagic[:]) && size >= smdxExtHeaderSize {
			return kind3DSX
		}
	}
	return kindUnknown
}

// smdhAddr returns the byte offset of the SMDH header within src, per
// loadSMDH's per-romKind switch.
func smdhAddr(src retroimg.Source, k romKind) (uint64, error) {
	switch k {
	case kindSMDH:
		return 0, nil
	case kind3DSX:
		hdr := make([]byte, smdxExtHeaderSize)
		if _, err := src.SeekAndRead(0, hdr); err != nil {
			return 0, retroimg.Wrap("n3ds", retroimg.KindTruncated, err)
		}
		headerSize := binary.LittleEndian.Uint16(hdr[4:6])
		if headerSize <= smdxStandardHeaderSize {
			return 0, retroimg.NewError("n3ds", retroimg.KindUnsupportedByFormat, retroimg.ErrUnsupportedByFormat)
		}
		off := binary.LittleEndian.Uint32(hdr[smdxSMDHOffsetOff:])
		return uint64(off), nil
	case kindCIA:
		h, err := readCIAHeader(src)
		if err != nil {
			return 0, err
		}
		if h.metaSize < uint32(smdhHeaderSize+smdhIconSize) {
			return 0, retroimg.NewError("n3ds", retroimg.KindCorrupt, retroimg.ErrCorrupt)
		}
		return ciaSMDHAddr(h), nil
	default:
		return 0, retroimg.NewError("n3ds", retroimg.KindBadMagic, retroimg.ErrBadMagic)
	}
}

// Reader implements retroimg.FormatReader for Nintendo 3DS SMDH/3DSX/CIA
// icon extraction.
type Reader struct{}

func (Reader) Identify(src retroimg.Source) (bool, error) {
	return detect(src) != kindUnknown, nil
}

func checkSMDHMagic(src retroimg.Source, addr uint64) error {
	magic := make([]byte, 4)
	if _, err := src.SeekAndRead(addr, magic); err != nil {
		return retroimg.Wrap("n3ds", retroimg.KindTruncated, err)
	}
	if string(magic) != string(smdhMagic[:]) {
		return retroimg.NewError("n3ds", retroimg.KindBadMagic, retroimg.ErrBadMagic)
	}
	return nil
}

// titleText reads one UTF-16LE short-description field (title index 1 is
// English, matching the field the original's ROM Properties tab shows).
func titleText(src retroimg.Source, smdh uint64, langIdx int) (string, error) {
	off := smdh + 4 + 2 + 2 + uint64(langIdx)*smdhTitleSize
	buf := make([]byte, 0x80) // short description, UTF-16LE
	if _, err := src.SeekAndRead(off, buf); err != nil {
		return "", retroimg.Wrap("n3ds", retroimg.KindTruncated, err)
	}
	runes := make([]uint16, 0, len(buf)/2)
	for i := 0; i+1 < len(buf); i += 2 {
		u := binary.LittleEndian.Uint16(buf[i:])
		if u == 0 {
			break
		}
		runes = append(runes, u)
	}
	return string(utf16Decode(runes)), nil
}

func utf16Decode(u []uint16) []rune {
	out := make([]rune, 0, len(u))
	for i := 0; i < len(u); i++ {
		r := rune(u[i])
		if r >= 0xD800 && r < 0xDC00 && i+1 < len(u) {
			r2 := rune(u[i+1])
			if r2 >= 0xDC00 && r2 < 0xE000 {
				out = append(out, ((r-0xD800)<<10|(r2-0xDC00))+0x10000)
				i++
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

const langEnglish = 1

func (Reader) Fields(src retroimg.Source) ([]retroimg.Field, error) {
	k := detect(src)
	addr, err := smdhAddr(src, k)
	if err != nil {
		return nil, err
	}
	if err := checkSMDHMagic(src, addr); err != nil {
		return nil, err
	}
	title, err := titleText(src, addr, langEnglish)
	if err != nil {
		return nil, err
	}
	return []retroimg.Field{
		{Name: "Title", Value: title},
	}, nil
}

// decodeTiledRGB565 ports fromN3DSTiledRGB565: pixels are stored in 8x8
// tiles, each tile internally permuted by the Z-order curve in
// swizzle.N3DSTileOrder.
func decodeTiledRGB565(width, height int, buf []byte) (*retroimg.Image, error) {
	if width%tileDim != 0 || height%tileDim != 0 {
		return nil, retroimg.NewError("n3ds", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	need := width * height * 2
	if len(buf) < need {
		return nil, retroimg.NewError("n3ds", retroimg.KindTruncated, retroimg.ErrTruncated)
	}
	img, err := retroimg.New(width, height, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}

	tilesX := width / tileDim
	tilesY := height / tileDim
	var raw [tileDim * tileDim]uint16
	var tile [tileDim * tileDim]uint32
	pos := 0
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			for i := 0; i < tileDim*tileDim; i++ {
				raw[i] = binary.LittleEndian.Uint16(buf[pos : pos+2])
				pos += 2
			}
			for i := 0; i < tileDim*tileDim; i++ {
				tile[i] = pixel.RGB565ToARGB32(uint32(raw[swizzle.N3DSTileOrder[i]]))
			}
			blit.Tile[uint32](img, tile[:], tileDim, tileDim, tx, ty)
		}
	}
	img.SetSBIT(retroimg.SBIT{Red: 5, Green: 6, Blue: 5})
	return img, nil
}

// DecodeImage decodes the large (48x48) icon, matching loadIcon(idx=1),
// the default icon the original's property tab displays.
func (Reader) DecodeImage(src retroimg.Source) (*retroimg.Image, error) {
	k := detect(src)
	addr, err := smdhAddr(src, k)
	if err != nil {
		return nil, err
	}
	if err := checkSMDHMagic(src, addr); err != nil {
		return nil, err
	}
	iconAddr := addr + smdhHeaderSize
	smallBytes := iconSmallW * iconSmallH * 2
	largeBytes := iconLargeW * iconLargeH * 2
	buf := make([]byte, largeBytes)
	if _, err := src.SeekAndRead(iconAddr+uint64(smallBytes), buf); err != nil {
		return nil, retroimg.Wrap("n3ds", retroimg.KindTruncated, err)
	}
	return decodeTiledRGB565(iconLargeW, iconLargeH, buf)
}

// DecodeSmallIcon decodes the small (24x24) icon; an n3ds-specific
// extension beyond retroimg.FormatReader for callers that want both sizes.
func (Reader) DecodeSmallIcon(src retroimg.Source) (*retroimg.Image, error) {
	k := detect(src)
	addr, err := smdhAddr(src, k)
	if err != nil {
		return nil, err
	}
	if err := checkSMDHMagic(src, addr); err != nil {
		return nil, err
	}
	iconAddr := addr + smdhHeaderSize
	buf := make([]byte, iconSmallW*iconSmallH*2)
	if _, err := src.SeekAndRead(iconAddr, buf); err != nil {
		return nil, retroimg.Wrap("n3ds", retroimg.KindTruncated, err)
	}
	return decodeTiledRGB565(iconSmallW, iconSmallH, buf)
}

var _ retroimg.FormatReader = Reader{}
