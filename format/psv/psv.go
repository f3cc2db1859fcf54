// Package psv implements the PlayStation 1 PSV ("PS1 on PS3") save-file
// reader.
//
// Grounded on PlayStationSave.cpp and ps1_structs.h (original_source):
// isRomSupported_static's magic check, PS1_PSV_Header/PS1_SC_Struct's byte
// layout, and loadIcon's icon_flag -> frame-count/delay dispatch.
package psv

import (
	"github.com/deepteams/retroimg"
	"github.com/deepteams/retroimg/internal/linear"
	"github.com/deepteams/retroimg/internal/pixel"
)

const (
	headerSize  = 0x84 + 512 // PS1_PSV_Header (0x84) + PS1_SC_Struct (512)
	scOffset    = 0x84
	scMagicOff  = 0
	iconFlagOff = 2
	titleOff    = 4
	iconPalOff  = 0x84 + 96 // sc struct offset 96: icon_pal[16]
	iconDataOff = 0x84 + 96 + 32
	iconW       = 16
	iconH       = 16
	iconBytes   = iconW * iconH / 2 // CI4
	maxFrames   = 3
)

var psvMagic = [8]byte{0x00, 'V', 'S', 'P', 0x00, 0x00, 0x00, 0x00}

// iconFlag values from PS1_SC_Icon_Flag (ps1_structs.h).
const (
	iconNone      = 0x00
	iconStatic    = 0x11
	iconAnim2     = 0x12
	iconAnim3     = 0x13
	iconAltStatic = 0x16
	iconAltAnim2  = 0x17
	iconAltAnim3  = 0x18
)

// Reader implements retroimg.AnimatedFormatReader for PSV save files.
type Reader struct{}

func checkMagic(src retroimg.Source) bool {
	buf := make([]byte, 10)
	if _, err := src.SeekAndRead(0, buf); err != nil {
		return false
	}
	if string(buf[0:8]) != string(psvMagic[:]) {
		return false
	}
	sc := make([]byte, 2)
	if _, err := src.SeekAndRead(scOffset, sc); err != nil {
		return false
	}
	return sc[0] == 'S' && sc[1] == 'C'
}

func (Reader) Identify(src retroimg.Source) (bool, error) {
	if src.Size() < headerSize {
		return false, nil
	}
	return checkMagic(src), nil
}

func trimShiftJISPadding(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == 0 || b[end-1] == ' ') {
		end--
	}
	return string(b[:end])
}

func (Reader) Fields(src retroimg.Source) ([]retroimg.Field, error) {
	if !checkMagic(src) {
		return nil, retroimg.NewError("psv", retroimg.KindBadMagic, retroimg.ErrBadMagic)
	}
	title := make([]byte, 64)
	if _, err := src.SeekAndRead(scOffset+titleOff, title); err != nil {
		return nil, retroimg.Wrap("psv", retroimg.KindTruncated, err)
	}
	return []retroimg.Field{
		{Name: "Title", Value: trimShiftJISPadding(title)},
	}, nil
}

// frameSpec gives the frame count and per-frame PAL-frame delay (at 50Hz)
// for a given icon_flag, per loadIcon's switch.
func frameSpec(flag byte) (frames int, delayPAL int, ok bool) {
	switch flag {
	case iconStatic, iconAltStatic:
		return 1, 0, true
	case iconAnim2, iconAltAnim2:
		return 2, 16, true
	case iconAnim3, iconAltAnim3:
		return 3, 11, true
	default:
		return 0, 0, false
	}
}

func decodeIcons(src retroimg.Source) (*retroimg.Sequence, error) {
	if !checkMagic(src) {
		return nil, retroimg.NewError("psv", retroimg.KindBadMagic, retroimg.ErrBadMagic)
	}

	flagBuf := make([]byte, 1)
	if _, err := src.SeekAndRead(scOffset+iconFlagOff, flagBuf); err != nil {
		return nil, retroimg.Wrap("psv", retroimg.KindTruncated, err)
	}
	frames, delayPAL, ok := frameSpec(flagBuf[0])
	if !ok {
		return nil, retroimg.NewError("psv", retroimg.KindCorrupt, retroimg.ErrCorrupt)
	}

	pal := make([]byte, 32)
	if _, err := src.SeekAndRead(iconPalOff, pal); err != nil {
		return nil, retroimg.Wrap("psv", retroimg.KindTruncated, err)
	}

	imgFrames := make([]*retroimg.Image, frames)
	seqIdx := make([]int, frames)
	delays := make([]retroimg.Delay, frames)
	for i := 0; i < frames; i++ {
		buf := make([]byte, iconBytes)
		if _, err := src.SeekAndRead(uint64(iconDataOff+i*iconBytes), buf); err != nil {
			return nil, retroimg.Wrap("psv", retroimg.KindTruncated, err)
		}
		img, err := linear.FromCI4(pixel.FormatBGR555PS1, false, iconW, iconH, buf, pal)
		if err != nil {
			return nil, err
		}
		imgFrames[i] = img
		seqIdx[i] = i
		delays[i] = retroimg.NewDelay(uint32(delayPAL), 50)
	}

	return &retroimg.Sequence{Frames: imgFrames, SeqIndex: seqIdx, Delays: delays}, nil
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
