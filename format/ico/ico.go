// Package ico implements the Windows ICO/CUR reader for standalone
// icon/cursor files of both generations: the Win1.x raw header (1bpp
// DIB and/or DDB plus a same-size 1bpp mask) and the Win3.x ICONDIR +
// ICONDIRENTRY directory with "best icon" selection,
// BITMAPINFOHEADER-family DIB decoding (1/4/8/32-bpp) with AND-mask
// application, and the Windows Vista PNG-chunk short-circuit.
//
// Grounded on ICO.cpp (original_source): loadImage_Win1's format-field
// probe, its "DIB comes first when both are present" addressing, and its
// single-mask-then-single-bitmap layout; loadIconDirectory_Win3's
// directory read and width/height/bitcount "best icon" selection;
// loadImage_Win3's header-size dispatch (BITMAPINFOHEADER family vs. the
// 0x474E5089 "\x89PNG" sentinel), its upside-down/double-height DIB
// convention, and its mask-application strategies (palette-based for 1bpp
// and 4bpp, full-ARGB32 zeroing for 8bpp and 32bpp). ico_structs.h itself
// wasn't part of the retrieved corpus, so the Win1.x header's four
// uint16 fields (format, width, height, stride) and the "high byte of
// format == 2 means both a DIB and a DDB are present" test are
// reconstructed from how loadImage_Win1 addresses and sizes them, not
// from the literal struct definition; ICONDIR/ICONDIRENTRY/
// BITMAPINFOHEADER are a public, stable Windows format, not a
// proprietary one reconstructed from guesswork. PE/NE RT_GROUP_ICON
// resource extraction is not implemented here: standalone .ico/.cur
// covers both generations' on-disk byte layout, and the resource-table
// walk is an orthogonal PE/NE parsing concern the retrieved corpus
// doesn't otherwise ground.
package ico

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"image/png"

	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/linear"
	"github.com/deepteams/retroimg/internal/pixel"
)

const (
	icoHeaderSize  = 6  // ICONDIR
	direntSize     = 16 // ICONDIRENTRY

	bihSize = 40 // BITMAPINFOHEADER

	pngSentinel = 0x474E5089 // "\x89PNG" read as a little-endian uint32

	biRGB = 0

	win1HeaderSize = 8 // format, width, height, stride; each a little-endian uint16
)

// idType values (ICONDIR.idType).
const (
	typeIcon   = 1
	typeCursor = 2
)

type dirEntry struct {
	width, height int
	bitcount      int
	size          uint32
	offset        uint32
}

func readHeader(src retroimg.Source) (count int, idType uint16, err error) {
	buf := make([]byte, icoHeaderSize)
	if _, e := src.SeekAndRead(0, buf); e != nil {
		return 0, 0, retroimg.Wrap("ico", retroimg.KindTruncated, e)
	}
	reserved := binary.LittleEndian.Uint16(buf[0:2])
	idType = binary.LittleEndian.Uint16(buf[2:4])
	count = int(binary.LittleEndian.Uint16(buf[4:6]))
	if reserved != 0 || (idType != typeIcon && idType != typeCursor) || count == 0 {
		return 0, 0, retroimg.NewError("ico", retroimg.KindBadMagic, retroimg.ErrBadMagic)
	}
	return count, idType, nil
}

// win1Header is a Win1.x icon/cursor's raw header: no magic, no
// directory, just the dimensions of the single bitmap that immediately
// follows it (mask first, then the 1bpp image itself).
type win1Header struct {
	format uint16
	width  int
	height int
	stride int
}

// bothBitmaps reports whether this file carries both a DIB and a DDB,
// per loadImage_Win1's "(format >> 8) != 2 means a single bitmap" test.
func (h win1Header) bothBitmaps() bool { return h.format>>8 == 2 }

// readWin1Header reads the raw Win1.x header. A zero format field means
// this is not a Win1.x file at all (it is either a Win3.x ICONDIR, whose
// first field is always a zero "reserved", or garbage); callers fall
// back to readHeader in that case.
func readWin1Header(src retroimg.Source) (win1Header, error) {
	buf := make([]byte, win1HeaderSize)
	if _, err := src.SeekAndRead(0, buf); err != nil {
		return win1Header{}, retroimg.Wrap("ico", retroimg.KindTruncated, err)
	}
	format := binary.LittleEndian.Uint16(buf[0:2])
	if format == 0 {
		return win1Header{}, retroimg.NewError("ico", retroimg.KindBadMagic, retroimg.ErrBadMagic)
	}
	width := int(binary.LittleEndian.Uint16(buf[2:4]))
	height := int(binary.LittleEndian.Uint16(buf[4:6]))
	stride := int(binary.LittleEndian.Uint16(buf[6:8]))
	if width == 0 || height == 0 || stride == 0 {
		return win1Header{}, retroimg.NewError("ico", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	return win1Header{format: format, width: width, height: height, stride: stride}, nil
}

func readDirectory(src retroimg.Source, count int) ([]dirEntry, error) {
	buf := make([]byte, count*direntSize)
	if _, err := src.SeekAndRead(icoHeaderSize, buf); err != nil {
		return nil, retroimg.Wrap("ico", retroimg.KindTruncated, err)
	}
	entries := make([]dirEntry, count)
	for i := 0; i < count; i++ {
		e := buf[i*direntSize:]
		w, h := int(e[0]), int(e[1])
		if w == 0 {
			w = 256
		}
		if h == 0 {
			h = 256
		}
		entries[i] = dirEntry{
			width:    w,
			height:   h,
			bitcount: int(binary.LittleEndian.Uint16(e[6:8])),
			size:     binary.LittleEndian.Uint32(e[8:12]),
			offset:   binary.LittleEndian.Uint32(e[12:16]),
		}
	}
	return entries, nil
}

// bitcountAt peeks at the bitmap header for entry e (either a
// BITMAPINFOHEADER's width/height/biBitCount, or, for a PNG-chunk icon, the
// directory entry's own width/height with a fixed bitcount of 32) to drive
// "best icon" selection, matching getIconBitmapHeaderData.
func bitcountAt(src retroimg.Source, e dirEntry) (width, height, bitcount int, ok bool) {
	hdr := make([]byte, bihSize)
	if _, err := src.SeekAndRead(uint64(e.offset), hdr); err != nil {
		return 0, 0, 0, false
	}
	size := binary.LittleEndian.Uint32(hdr[0:4])
	switch size {
	case bihSize:
		w := int(int32(binary.LittleEndian.Uint32(hdr[4:8])))
		h := int(int32(binary.LittleEndian.Uint32(hdr[8:12]))) / 2
		bc := int(binary.LittleEndian.Uint16(hdr[14:16]))
		return w, h, bc, true
	case pngSentinel:
		// The PNG's IHDR is not read: the directory entry supplies the
		// size, and a PNG icon always counts as 32 bpp.
		return e.width, e.height, 32, true
	default:
		return 0, 0, 0, false
	}
}

// selectBest implements loadIconDirectory_Win3's "larger, then higher
// colour depth" rule.
func selectBest(src retroimg.Source, entries []dirEntry) int {
	best := -1
	bw, bh, bbc := 0, 0, 0
	for i, e := range entries {
		w, h, bc, ok := bitcountAt(src, e)
		if !ok || bc == 0 {
			continue
		}
		better := false
		switch {
		case w > bw || h > bh:
			better = true
		case w == bw && h == bh && bc > bbc:
			better = true
		}
		if better {
			best, bw, bh, bbc = i, w, h, bc
		}
	}
	return best
}

// Reader implements retroimg.FormatReader for standalone .ico/.cur files,
// both the Win1.x and Win3.x generations.
type Reader struct{}

func (Reader) Identify(src retroimg.Source) (bool, error) {
	if _, _, err := readHeader(src); err == nil {
		return true, nil
	}
	if _, err := readWin1Header(src); err == nil {
		return true, nil
	}
	return false, nil
}

func (Reader) Fields(src retroimg.Source) ([]retroimg.Field, error) {
	if count, idType, err := readHeader(src); err == nil {
		kind := "Icon"
		if idType == typeCursor {
			kind = "Cursor"
		}
		return []retroimg.Field{
			{Name: "Generation", Value: "Win3.x"},
			{Name: "Type", Value: kind},
			{Name: "Image Count", Value: itoa(count)},
		}, nil
	}

	h, err := readWin1Header(src)
	if err != nil {
		return nil, err
	}
	kind := "Icon"
	if isCursorExtension(src.Filename()) {
		kind = "Cursor"
	}
	count := 1
	if h.bothBitmaps() {
		count = 2
	}
	return []retroimg.Field{
		{Name: "Generation", Value: "Win1.x"},
		{Name: "Type", Value: kind},
		{Name: "Image Count", Value: itoa(count)},
	}, nil
}

// isCursorExtension applies the ".cur" filename heuristic Source.Filename
// exists for: Win1.x's own format field doesn't reliably distinguish icon
// from cursor without ico_structs.h's literal constants, so the extension
// stands in.
func isCursorExtension(name string) bool {
	n := len(name)
	return n >= 4 && (name[n-4:] == ".cur" || name[n-4:] == ".CUR")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func alignUp4(n int) int { return (n + 3) &^ 3 }

func decodePNGIcon(src retroimg.Source, e dirEntry, size int) (*retroimg.Image, error) {
	buf := make([]byte, size)
	if _, err := src.SeekAndRead(uint64(e.offset), buf); err != nil {
		return nil, retroimg.Wrap("ico", retroimg.KindTruncated, err)
	}
	im, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, retroimg.Wrap("ico", retroimg.KindCorrupt, err)
	}
	b := im.Bounds()
	w, h := b.Dx(), b.Dy()
	img, err := retroimg.New(w, h, retroimg.FormatARGB32)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		row := img.ScanLine(y)
		for x := 0; x < w; x++ {
			// NRGBA un-premultiplies alpha; retroimg.FormatARGB32 stores
			// straight, not premultiplied, colour.
			c := color.NRGBAModel.Convert(im.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			off := x * 4
			row[off] = c.B
			row[off+1] = c.G
			row[off+2] = c.R
			row[off+3] = c.A
		}
	}
	return img, nil
}

// applyMaskZero clears an ARGB32 image's alpha and RGB entirely wherever
// the AND-mask bit is set, matching loadImage_Win3's bitcount>=8 branch
// ("Complete transparency, without keeping the RGB").
func applyMaskZero(img *retroimg.Image, width, height int, mask []byte, maskStride int) {
	stride := img.Stride()
	bits := img.Bits()
	for y := 0; y < height; y++ {
		row := bits[y*stride : y*stride+width*4]
		maskRow := mask[y*maskStride:]
		bit := 0
		for x := 0; x < width; x++ {
			b := maskRow[bit/8]
			if b&(0x80>>(uint(bit)%8)) != 0 {
				off := x * 4
				row[off], row[off+1], row[off+2], row[off+3] = 0, 0, 0, 0
			}
			bit++
		}
	}
}

// applyMaskTrIdx marks mask-set pixels transparent via a fresh palette
// index, matching loadImage_Win3's bitcount<8 branch.
func applyMaskTrIdx(img *retroimg.Image, width, height, bitcount int, mask []byte, maskStride int) error {
	trIdx := 1 << bitcount
	if trIdx >= retroimg.PaletteLen {
		return retroimg.NewError("ico", retroimg.KindCorrupt, retroimg.ErrCorrupt)
	}
	pal := img.Palette()
	pal.Entries[trIdx] = 0
	if err := img.SetTrIdx(trIdx); err != nil {
		return err
	}

	stride := img.Stride()
	bits := img.Bits()
	for y := 0; y < height; y++ {
		row := bits[y*stride : y*stride+width]
		maskRow := mask[y*maskStride:]
		bit := 0
		for x := 0; x < width; x++ {
			b := maskRow[bit/8]
			if b&(0x80>>(uint(bit)%8)) != 0 {
				row[x] = byte(trIdx)
			}
			bit++
		}
	}
	return nil
}

func (Reader) DecodeImage(src retroimg.Source) (*retroimg.Image, error) {
	count, _, err := readHeader(src)
	if err != nil {
		h, win1Err := readWin1Header(src)
		if win1Err != nil {
			return nil, err
		}
		return decodeWin1(src, h)
	}
	entries, err := readDirectory(src, count)
	if err != nil {
		return nil, err
	}
	idx := selectBest(src, entries)
	if idx < 0 {
		return nil, retroimg.NewError("ico", retroimg.KindCorrupt, retroimg.ErrCorrupt)
	}
	e := entries[idx]

	hdr := make([]byte, bihSize)
	if _, err := src.SeekAndRead(uint64(e.offset), hdr); err != nil {
		return nil, retroimg.Wrap("ico", retroimg.KindTruncated, err)
	}
	headerSize := binary.LittleEndian.Uint32(hdr[0:4])
	if headerSize == pngSentinel {
		return decodePNGIcon(src, e, int(e.size))
	}
	if headerSize != bihSize {
		return nil, retroimg.NewError("ico", retroimg.KindUnsupportedVersion, retroimg.ErrUnsupportedVersion)
	}

	width := int(int32(binary.LittleEndian.Uint32(hdr[4:8])))
	origHeight := int(int32(binary.LittleEndian.Uint32(hdr[8:12])))
	height := origHeight
	if height < 0 {
		height = -height
	}
	if width <= 0 || height == 0 || height%2 != 0 {
		return nil, retroimg.NewError("ico", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	planes := binary.LittleEndian.Uint16(hdr[12:14])
	if planes > 1 {
		return nil, retroimg.NewError("ico", retroimg.KindUnsupportedByFormat, retroimg.ErrUnsupportedByFormat)
	}
	bitcount := int(binary.LittleEndian.Uint16(hdr[14:16]))
	compression := binary.LittleEndian.Uint32(hdr[16:20])

	isUpsideDown := origHeight > 0
	halfHeight := height / 2

	var stride int
	switch bitcount {
	case 1:
		stride = width / 8
	case 4:
		stride = width / 2
	case 8:
		stride = width
	case 32:
		stride = width * 4
	default:
		return nil, retroimg.NewError("ico", retroimg.KindUnsupportedByFormat, retroimg.ErrUnsupportedByFormat)
	}
	stride = alignUp4(stride)
	maskStride := alignUp4((width + 7) / 8)

	addr := uint64(e.offset) + bihSize

	var palette []byte
	if bitcount <= 8 {
		palCount := 1 << bitcount
		palette = make([]byte, palCount*4)
		if _, err := src.SeekAndRead(addr, palette); err != nil {
			return nil, retroimg.Wrap("ico", retroimg.KindTruncated, err)
		}
		addr += uint64(len(palette))
	}

	iconSize := stride * halfHeight
	maskSize := maskStride * halfHeight
	body := make([]byte, iconSize+maskSize)
	if _, err := src.SeekAndRead(addr, body); err != nil {
		return nil, retroimg.Wrap("ico", retroimg.KindTruncated, err)
	}

	var iconData, maskData []byte
	if isUpsideDown {
		iconData = body[:iconSize]
		maskData = body[iconSize:]
	} else {
		maskData = body[:maskSize]
		iconData = body[maskSize:]
	}

	var img *retroimg.Image
	switch bitcount {
	case 1:
		img, err = linear.FromMono(width, halfHeight, iconData)
		if err == nil {
			applyMonoMask(img, width, halfHeight, maskData, maskStride)
		}
	case 4:
		img, err = linear.FromCI4(pixel.FormatxRGB8888, true, width, halfHeight, iconData, palette)
		if err == nil {
			err = applyMaskTrIdx(img, width, halfHeight, bitcount, maskData, maskStride)
		}
	case 8:
		img, err = linear.FromCI8(pixel.FormatxRGB8888, width, halfHeight, iconData, palette)
		if err == nil {
			img, err = img.DupARGB32()
		}
		if err == nil {
			applyMaskZero(img, width, halfHeight, maskData, maskStride)
		}
	case 32:
		if compression != biRGB {
			return nil, retroimg.NewError("ico", retroimg.KindUnsupportedByFormat, retroimg.ErrUnsupportedByFormat)
		}
		img, err = linear.From32Func(pixel.FormatARGB8888, width, halfHeight, iconData, stride)
		if err == nil {
			applyMaskZero(img, width, halfHeight, maskData, maskStride)
		}
	}
	if err != nil {
		return nil, err
	}

	if isUpsideDown {
		img, err = img.Flip(true)
		if err != nil {
			return nil, err
		}
	}
	return img, nil
}

// applyMonoMask ports fromLinearMono_WinIcon's mask handling for 1-bpp
// icons: the CI8 mono image's palette is adjusted so a mask-set pixel
// becomes transparent regardless of its underlying black/white value.
func applyMonoMask(img *retroimg.Image, width, height int, mask []byte, maskStride int) {
	pal := img.Palette()
	pal.Entries[0] = 0xFFFFFFFF
	pal.Entries[1] = 0xFF000000

	stride := img.Stride()
	bits := img.Bits()
	anyMasked := false
	for y := 0; y < height; y++ {
		row := bits[y*stride : y*stride+width]
		maskRow := mask[y*maskStride:]
		bit := 0
		for x := 0; x < width; x++ {
			b := maskRow[bit/8]
			if b&(0x80>>(uint(bit)%8)) != 0 {
				row[x] |= 0x02
				anyMasked = true
			}
			bit++
		}
	}
	if anyMasked {
		pal.Entries[2] = 0x00FFFFFF & pal.Entries[0]
		pal.Entries[3] = 0x00FFFFFF & pal.Entries[1]
		pal.TrIdx = -1
	}
}

// decodeWin1 decodes a Win1.x icon/cursor: a single 1bpp mask immediately
// followed by a same-size 1bpp bitmap, both using h's stride, starting
// right after the 8-byte header. When the file carries both a DIB and a
// DDB, the DIB is always first on disk, so reading just the first bitmap
// already implements "choose DIB when present" without needing to locate
// or skip the trailing DDB at all.
func decodeWin1(src retroimg.Source, h win1Header) (*retroimg.Image, error) {
	iconSize := h.stride * h.height
	body := make([]byte, iconSize*2)
	if _, err := src.SeekAndRead(win1HeaderSize, body); err != nil {
		return nil, retroimg.Wrap("ico", retroimg.KindTruncated, err)
	}
	maskData := body[:iconSize]
	iconData := body[iconSize:]

	img, err := decodeMonoStrided(h.width, h.height, h.stride, iconData)
	if err != nil {
		return nil, err
	}
	applyMonoMask(img, h.width, h.height, maskData, h.stride)
	return img, nil
}

// decodeMonoStrided converts a 1bpp bitmap with an explicit byte stride
// (Win1.x's "stride" header field, which need not equal width/8 the way
// linear.FromMono assumes) into a CI8 image with a fixed {white, black}
// palette, using the same per-bit unpacking applyMonoMask already uses for
// its own mask rows.
func decodeMonoStrided(width, height, stride int, data []byte) (*retroimg.Image, error) {
	if width <= 0 || height <= 0 || stride <= 0 {
		return nil, retroimg.NewError("ico", retroimg.KindInvalidGeometry, retroimg.ErrInvalidGeometry)
	}
	if len(data) < stride*height {
		return nil, retroimg.Wrap("ico", retroimg.KindTruncated, retroimg.ErrTruncated)
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

	dstStride := img.Stride()
	bits := img.Bits()
	for y := 0; y < height; y++ {
		srcRow := data[y*stride:]
		dstRow := bits[y*dstStride : y*dstStride+width]
		bit := 0
		for x := 0; x < width; x++ {
			if srcRow[bit/8]&(0x80>>(uint(bit)%8)) != 0 {
				dstRow[x] = 1
			}
			bit++
		}
	}
	return img, nil
}

var _ retroimg.FormatReader = Reader{}
