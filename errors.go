package retroimg

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure the way a host shell extension needs to
// react to it, independent of which format reader produced it.
type Kind int

const (
	// KindUnknown is the zero value; never returned by a well-behaved reader.
	KindUnknown Kind = iota
	// KindBadMagic means a header magic/signature did not match.
	KindBadMagic
	// KindUnsupportedVersion means a format-level version field was recognised
	// but is outside the set this reader implements.
	KindUnsupportedVersion
	// KindInvalidGeometry means width/height were zero, out of range, or not
	// a valid multiple for the format (e.g. not block-aligned).
	KindInvalidGeometry
	// KindInvalidPixelFormat means a pixel-format field was outside the enum range.
	KindInvalidPixelFormat
	// KindTruncated means a short read relative to the expected payload size.
	KindTruncated
	// KindCorrupt means an internal inconsistency was detected (bad RLE run,
	// compressed size larger than uncompressed, ...).
	KindCorrupt
	// KindAllocationFailed means the output image buffer could not be sized/allocated.
	KindAllocationFailed
	// KindIo means the upstream Source reported a read/seek failure.
	KindIo
	// KindUnsupportedByFormat means the input is well-formed but exercises a
	// feature this reader deliberately doesn't implement (e.g. a 32-bpp icon
	// with BI_BITFIELDS compression, an indirect Palm OS colour table).
	KindUnsupportedByFormat
)

func (k Kind) String() string {
	switch k {
	case KindBadMagic:
		return "bad magic"
	case KindUnsupportedVersion:
		return "unsupported version"
	case KindInvalidGeometry:
		return "invalid geometry"
	case KindInvalidPixelFormat:
		return "invalid pixel format"
	case KindTruncated:
		return "truncated"
	case KindCorrupt:
		return "corrupt"
	case KindAllocationFailed:
		return "allocation failed"
	case KindIo:
		return "io"
	case KindUnsupportedByFormat:
		return "unsupported by format"
	default:
		return "unknown"
	}
}

// Error is the error type every FormatReader returns on failure. It carries
// a Kind so callers can react programmatically (errors.As) without parsing
// the message, matching on the wrapped sentinel errors instead.
type Error struct {
	Kind   Kind
	Format string // e.g. "dreamcast", "gamecube", "ico"
	Err    error  // underlying sentinel or wrapped detail, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("retroimg: %s: %s: %v", e.Format, e.Kind, e.Err)
	}
	return fmt.Sprintf("retroimg: %s: %s", e.Format, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error, wrapping a sentinel or any other underlying error.
func NewError(format string, kind Kind, err error) *Error {
	return &Error{Kind: kind, Format: format, Err: err}
}

// Sentinel errors usable with errors.Is, mirroring the riff.go convention of
// one sentinel per failure mode instead of stringly-typed errors.
var (
	ErrBadMagic             = errors.New("retroimg: bad magic")
	ErrUnsupportedVersion   = errors.New("retroimg: unsupported version")
	ErrInvalidGeometry      = errors.New("retroimg: invalid geometry")
	ErrInvalidPixelFormat   = errors.New("retroimg: invalid pixel format")
	ErrTruncated            = errors.New("retroimg: truncated data")
	ErrCorrupt              = errors.New("retroimg: corrupt data")
	ErrAllocationFailed     = errors.New("retroimg: allocation failed")
	ErrIo                   = errors.New("retroimg: io failure")
	ErrUnsupportedByFormat  = errors.New("retroimg: operation not supported by this format")
)

// Wrap annotates err with a Kind/Format pair; a nil err stays nil. An err
// that already is an *Error gets wrapped again, so errors.As finds the new,
// outer Kind first.
func Wrap(format string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return NewError(format, kind, err)
}
