package retroimg

import "time"

// MaxSequenceFrames is the largest number of distinct frames or sequence
// slots an animated icon may declare.
const MaxSequenceFrames = 64

// Delay is a frame delay expressed both as the source rational (so a caller
// can reproduce the original fraction exactly) and as a pre-computed
// millisecond duration.
type Delay struct {
	Numer uint32
	Denom uint32
	MS    time.Duration
}

// NewDelay builds a Delay from a numer/denom rational, computing the
// millisecond value as numer*1000/denom.
func NewDelay(numer, denom uint32) Delay {
	if denom == 0 {
		denom = 1
	}
	ms := time.Duration(numer) * time.Second / time.Duration(denom)
	return Delay{Numer: numer, Denom: denom, MS: ms}
}

// Sequence is an animated-icon sequence: an ordered list of up
// to 64 frames (some possibly absent, meaning "reuse the previous frame"),
// an ordered display order over those frames, and a parallel delay list.
type Sequence struct {
	// Frames holds up to MaxSequenceFrames image references; a nil entry
	// means "reuse previous frame" when it is selected by SeqIndex.
	Frames []*Image
	// SeqIndex gives the display order as indices into Frames.
	SeqIndex []int
	// Delays is parallel to SeqIndex.
	Delays []Delay
}

// Count returns the number of distinct (non-nil) frames.
func (s *Sequence) Count() int {
	n := 0
	for _, f := range s.Frames {
		if f != nil {
			n++
		}
	}
	return n
}

// SeqCount returns the sequence length (display-order length).
func (s *Sequence) SeqCount() int { return len(s.SeqIndex) }

// IsAnimated is true only when both Count() > 1 and SeqCount() > 1.
func (s *Sequence) IsAnimated() bool {
	return s.Count() > 1 && s.SeqCount() > 1
}

// Validate checks the sequence invariants: every SeqIndex[i]
// points at a non-null frame or a frame reused from an earlier sequence
// slot, and at least one frame exists.
func (s *Sequence) Validate() error {
	if s.Count() < 1 {
		return NewError("sequence", KindCorrupt, ErrCorrupt)
	}
	seenValid := false
	for _, idx := range s.SeqIndex {
		if idx < 0 || idx >= len(s.Frames) {
			return NewError("sequence", KindCorrupt, ErrCorrupt)
		}
		if s.Frames[idx] != nil {
			seenValid = true
		} else if !seenValid {
			// A nil frame reuses the previous one, so it needs a valid
			// frame in an earlier slot.
			return NewError("sequence", KindCorrupt, ErrCorrupt)
		}
	}
	if !seenValid {
		return NewError("sequence", KindCorrupt, ErrCorrupt)
	}
	return nil
}
