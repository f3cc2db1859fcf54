package retroimg

// Field is a single key/value record a FormatReader emits about the file it
// parsed (e.g. a save file's description, creation time). Shell-integration
// metadata containers are an external collaborator; the core only ever
// emits these flat records, never owns a field-display widget.
type Field struct {
	Name  string
	Value string
}

// FormatReader is the small trait every per-format reader implements:
// identify, fields, and decode_image, in place of the original
// implementation's class hierarchy — no runtime type switch is needed to
// use one.
type FormatReader interface {
	// Identify reports whether src looks like this reader's format, without
	// fully decoding it.
	Identify(src Source) (bool, error)
	// Fields returns the key/value records this reader can extract.
	Fields(src Source) ([]Field, error)
	// DecodeImage decodes the primary (or only) image/icon this format carries.
	DecodeImage(src Source) (*Image, error)
}

// AnimatedFormatReader is implemented by readers whose primary image may be
// an animated sequence: Dreamcast VMS icons and GameCube banners/icons
// both fall into this category.
type AnimatedFormatReader interface {
	FormatReader
	// DecodeAnimation decodes the full animated-icon sequence, when present.
	DecodeAnimation(src Source) (*Sequence, error)
}
