// Package dreamcast implements the Dreamcast VMS/DCI save-file reader.
//
// Grounded on DreamcastSave.cpp (original_source) for the identification
// and icon-loading flow (loadIcon's palette-then-contiguous-icons layout,
// DCI's whole-buffer 32-bit byteswap, the 250ms default frame delay) and on
// a field-by-field reconstruction of DC_VMS_Header/DC_VMS_DirEnt, since
// dc_structs.h itself wasn't part of the retrieved source.
package dreamcast

import (
	"encoding/binary"

	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/linear"
	"github.com/deepteams/retroimg/internal/pixel"
)

const (
	vmsHeaderSize = 96
	dirEntSize    = 32
	iconW         = 32
	iconH         = 32
	iconBytes     = 512 // 32*32/2 (CI4)
	palBytes      = 32  // 16 entries * 2 bytes
	maxIcons      = 64
	defaultDelayMS = 250
)

type saveKind int

const (
	kindVMS saveKind = iota
	kindDCI
)

// Reader implements retroimg.AnimatedFormatReader for Dreamcast VMS/DCI files.
type Reader struct{}

func detect(src retroimg.Source) (kind saveKind, dataAreaOffset uint64, ok bool) {
	size := src.Size()
	if size%512 == 0 {
		return kindVMS, 0, true
	}
	if size > 32 && (size-32)%512 == 0 {
		return kindDCI, 32, true
	}
	return 0, 0, false
}

// swap32Array byte-swaps buf in place, 4 bytes at a time, per DCI's
// whole-data-area 32-bit word swap.
func swap32Array(buf []byte) {
	for i := 0; i+4 <= len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = buf[i+3], buf[i+2], buf[i+1], buf[i]
	}
}

func printable(b byte) bool { return b >= 0x20 }

func headerLooksValid(hdr []byte) bool {
	if len(hdr) < 48 {
		return false
	}
	// Short description: offset 0, 8 bytes checked. Long description:
	// offset 16, 8 bytes checked: the first eight bytes of both
	// description fields must be printable.
	for i := 0; i < 8; i++ {
		if !printable(hdr[i]) || !printable(hdr[16+i]) {
			return false
		}
	}
	return true
}

// headerOffset tries the two valid VMS header locations: 0 (regular save)
// and 0x200 (game save).
func headerOffset(src retroimg.Source, dataAreaOffset uint64) (uint64, []byte, bool) {
	for _, off := range []uint64{0, 0x200} {
		buf := make([]byte, vmsHeaderSize)
		if _, err := src.SeekAndRead(dataAreaOffset+off, buf); err != nil {
			continue
		}
		if headerLooksValid(buf) {
			return off, buf, true
		}
	}
	return 0, nil, false
}

func (Reader) Identify(src retroimg.Source) (bool, error) {
	_, dataAreaOffset, ok := detect(src)
	if !ok {
		return false, nil
	}
	_, _, ok = headerOffset(src, dataAreaOffset)
	return ok, nil
}

func bcd(b byte) int { return int(b>>4)*10 + int(b&0xF) }

// dirEnt holds the fields of the 32-byte DC_VMS_DirEnt this reader cares
// about; only present for DCI files (the directory entry precedes the data
// area).
type dirEnt struct {
	filetype byte
	ctime    [8]byte // century, year, month, day, hour, minute, second, weekday (BCD)
}

func parseDirEnt(buf []byte) dirEnt {
	var d dirEnt
	d.filetype = buf[0]
	copy(d.ctime[:], buf[16:24])
	return d
}

func (de dirEnt) year() int {
	century := bcd(de.ctime[0])
	year := bcd(de.ctime[1])
	return century*100 + year
}

func (Reader) Fields(src retroimg.Source) ([]retroimg.Field, error) {
	kind, dataAreaOffset, ok := detect(src)
	if !ok {
		return nil, retroimg.NewError("dreamcast", retroimg.KindBadMagic, retroimg.ErrBadMagic)
	}
	_, hdr, ok := headerOffset(src, dataAreaOffset)
	if !ok {
		return nil, retroimg.NewError("dreamcast", retroimg.KindBadMagic, retroimg.ErrBadMagic)
	}

	fields := []retroimg.Field{
		{Name: "Description", Value: trimNulPrintable(hdr[0:16])},
		{Name: "Long Description", Value: trimNulPrintable(hdr[16:48])},
		{Name: "Creator", Value: trimNulPrintable(hdr[48:64])},
	}

	if kind == kindDCI {
		deBuf := make([]byte, dirEntSize)
		if _, err := src.SeekAndRead(0, deBuf); err == nil {
			de := parseDirEnt(deBuf)
			fields = append(fields, retroimg.Field{
				Name:  "Creation Year",
				Value: itoa(de.year()),
			})
		}
	}
	return fields, nil
}

func trimNulPrintable(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == 0 || b[end-1] == ' ') {
		end--
	}
	return string(b[:end])
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// loadIconData reads the icon_count, palette, and contiguous icon bytes,
// applying DCI's whole-area 32-bit byteswap first, per loadIcon.
func loadIconData(src retroimg.Source, kind saveKind, dataAreaOffset, hdrOff uint64) (iconCount int, palette []byte, icons [][]byte, err error) {
	hdr := make([]byte, vmsHeaderSize)
	if _, e := src.SeekAndRead(dataAreaOffset+hdrOff, hdr); e != nil {
		return 0, nil, nil, retroimg.Wrap("dreamcast", retroimg.KindIo, e)
	}
	if kind == kindDCI {
		swap32Array(hdr)
	}
	count := int(binary.LittleEndian.Uint16(hdr[64:66]))
	if count == 0 {
		return 0, nil, nil, nil
	}
	if count > maxIcons {
		count = maxIcons
	}

	rest := make([]byte, palBytes+count*iconBytes)
	if _, e := src.SeekAndRead(dataAreaOffset+hdrOff+vmsHeaderSize, rest); e != nil {
		return 0, nil, nil, retroimg.Wrap("dreamcast", retroimg.KindTruncated, e)
	}
	if kind == kindDCI {
		swap32Array(rest)
	}

	pal := rest[:palBytes]
	icons = make([][]byte, count)
	for i := 0; i < count; i++ {
		off := palBytes + i*iconBytes
		icons[i] = rest[off : off+iconBytes]
	}
	return count, pal, icons, nil
}

func decodeIcons(src retroimg.Source) (*retroimg.Sequence, error) {
	kind, dataAreaOffset, ok := detect(src)
	if !ok {
		return nil, retroimg.NewError("dreamcast", retroimg.KindBadMagic, retroimg.ErrBadMagic)
	}
	hdrOff, _, ok := headerOffset(src, dataAreaOffset)
	if !ok {
		return nil, retroimg.NewError("dreamcast", retroimg.KindBadMagic, retroimg.ErrBadMagic)
	}

	count, pal, icons, err := loadIconData(src, kind, dataAreaOffset, hdrOff)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, retroimg.NewError("dreamcast", retroimg.KindCorrupt, retroimg.ErrCorrupt)
	}

	frames := make([]*retroimg.Image, count)
	seqIdx := make([]int, count)
	delays := make([]retroimg.Delay, count)
	for i := 0; i < count; i++ {
		img, err := linear.FromCI4(pixel.FormatARGB4444, false, iconW, iconH, icons[i], pal)
		if err != nil {
			return nil, err
		}
		frames[i] = img
		seqIdx[i] = i
		delays[i] = retroimg.NewDelay(defaultDelayMS, 1000)
	}

	return &retroimg.Sequence{Frames: frames, SeqIndex: seqIdx, Delays: delays}, nil
}

func (Reader) DecodeImage(src retroimg.Source) (*retroimg.Image, error) {
	seq, err := decodeIcons(src)
	if err != nil {
		return nil, err
	}
	return seq.Frames[seq.SeqIndex[0]], nil
}

func (Reader) DecodeAnimation(src retroimg.Source) (*retroimg.Sequence, error) {
	return decodeIcons(src)
}

var (
	_ retroimg.FormatReader         = Reader{}
	_ retroimg.AnimatedFormatReader = Reader{}
)
