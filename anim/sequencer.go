// Package anim implements the animated-icon sequencer.
//
// It follows the shape of a small struct wired up from already-parsed
// container data and exposing time.Duration delays, while the
// cursor/last-valid-frame mechanics are ported directly from
// original_source's IconAnimHelper.
package anim

import "github.com/deepteams/retroimg"

// Sequencer walks a *retroimg.Sequence frame by frame, tracking the last
// frame that actually had valid image data the way IconAnimHelper does: some
// source formats allow a null frame meaning "keep showing whatever was there
// before".
type Sequencer struct {
	seq *retroimg.Sequence

	seqIdx         int
	frame          int
	delay          retroimg.Delay
	lastValidFrame int
}

// NewSequencer wraps seq (which may be nil, meaning "no animation") and
// resets the cursor to the start.
func NewSequencer(seq *retroimg.Sequence) *Sequencer {
	s := &Sequencer{seq: seq}
	s.Reset()
	return s
}

// IsAnimated reports whether the wrapped sequence has more than one distinct
// frame and more than one sequence slot.
func (s *Sequencer) IsAnimated() bool {
	return s.seq != nil && s.seq.IsAnimated()
}

// Reset returns the cursor to the first sequence slot.
func (s *Sequencer) Reset() {
	if s.seq == nil || len(s.seq.SeqIndex) == 0 {
		s.seqIdx, s.frame, s.delay, s.lastValidFrame = 0, 0, retroimg.Delay{}, 0
		return
	}
	s.seqIdx = 0
	s.frame = s.seq.SeqIndex[0]
	s.delay = s.seq.Delays[0]
	s.lastValidFrame = s.frame
}

// FrameNumber returns the last frame that had valid image data, not
// necessarily the frame the cursor currently points at (IconAnimHelper's
// "last valid frame" semantics, so a null frame reuses the previous bitmap).
func (s *Sequencer) FrameNumber() int { return s.lastValidFrame }

// FrameDelay returns the current frame's delay.
func (s *Sequencer) FrameDelay() retroimg.Delay { return s.delay }

// Image returns the image for FrameNumber(), or nil if there is no
// animation data at all.
func (s *Sequencer) Image() *retroimg.Image {
	if s.seq == nil || s.lastValidFrame < 0 || s.lastValidFrame >= len(s.seq.Frames) {
		return nil
	}
	return s.seq.Frames[s.lastValidFrame]
}

// NextFrame advances the animation by one step (wrapping around the
// sequence) and returns the frame number to display plus whether that frame
// actually carried new valid image data (changed == false means "the
// previous bitmap is still showing").
func (s *Sequencer) NextFrame() (frameNumber int, changed bool) {
	if s.seq == nil || len(s.seq.SeqIndex) == 0 {
		return 0, false
	}

	if s.seqIdx >= s.seq.SeqCount()-1 {
		s.seqIdx = 0
	} else {
		s.seqIdx++
	}

	s.frame = s.seq.SeqIndex[s.seqIdx]
	s.delay = s.seq.Delays[s.seqIdx]

	if s.frame >= 0 && s.frame < len(s.seq.Frames) && s.seq.Frames[s.frame] != nil {
		s.lastValidFrame = s.frame
		changed = true
	}

	return s.lastValidFrame, changed
}
