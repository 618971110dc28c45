// Package mode0 implements the song-mode meta-sequencer: mode 0 runs at
// one-sixteenth the normal step rate and, once per bar, reprograms the
// pattern selection and global musical parameters of modes 1-14.
package mode0

import "github.com/gruvbok/gruvbok/event"

const numModes = event.NumModes

// Sequencer holds mode 0's own step cursor plus the global parameters it
// derives from mode 0 / pattern 0 / track 0.
type Sequencer struct {
	song *event.Song

	step       int // 0..15, advances once per bar
	loopLength int // 1..16

	scaleRoot int // 0..11
	scaleType int // 0..7

	velocityOffset  [numModes]int // -64..63, indices 1..14 meaningful
	patternOverride [numModes]int // -1..31, indices 1..14 meaningful
}

// New returns a Sequencer bound to song, with every pattern override unset
// (-1) and the loop length defaulted to a full 16-step bar.
func New(song *event.Song) *Sequencer {
	s := &Sequencer{
		song:       song,
		loopLength: event.NumEvents,
	}
	for i := range s.patternOverride {
		s.patternOverride[i] = -1
	}
	return s
}

// Start resets the song-mode step cursor to 0.
func (s *Sequencer) Start() {
	s.step = 0
}

// Step returns the current song-mode step (0..15).
func (s *Sequencer) Step() int {
	return s.step
}

// LoopLength returns the current song-mode loop length (1..16).
func (s *Sequencer) LoopLength() int {
	return s.loopLength
}

// AdvanceStep moves the song-mode cursor forward, wrapping at LoopLength.
// Call this once per bar (when the normal 16-step cursor wraps to 0).
func (s *Sequencer) AdvanceStep() {
	s.step = (s.step + 1) % s.loopLength
}

// RecalculateLoopLength scans mode 0 / pattern 0 / track 0 for the highest
// active step and sets the loop length to one past it, clamped to 1..16.
// With no active step, the loop runs the full 16 steps.
func (s *Sequencer) RecalculateLoopLength() {
	track := s.song.ModeAt(0).PatternAt(0).TrackAt(0)

	maxStep := -1
	for i := 0; i < event.NumEvents; i++ {
		if track.At(i).Switch() {
			maxStep = i
		}
	}

	length := maxStep + 1
	if length < 1 {
		length = event.NumEvents
	}
	if length > event.NumEvents {
		length = event.NumEvents
	}
	s.loopLength = length
}

// ApplyParameters reads the mode 0 / pattern 0 / track 0 event at the
// current song-mode step. If its switch is off, existing overrides are
// retained. If on, pattern selection, scale, and velocity offset are
// re-derived and broadcast to every mode 1..14.
func (s *Sequencer) ApplyParameters() {
	ev := s.song.ModeAt(0).PatternAt(0).TrackAt(0).At(s.step)
	if !ev.Switch() {
		return
	}

	selectedPattern := clampInt(int(ev.Pot(0))*event.NumPatterns/128, 0, event.NumPatterns-1)
	s.scaleRoot = clampInt(int(ev.Pot(1))*12/128, 0, 11)
	s.scaleType = clampInt(int(ev.Pot(2))*8/128, 0, 7)
	velocity := clampInt(int(ev.Pot(3))-64, -64, 63)

	for m := 1; m < numModes; m++ {
		s.patternOverride[m] = selectedPattern
		s.velocityOffset[m] = velocity
	}
}

// PatternOverride returns the pattern override for mode, or -1 if mode is
// out of range or has no override.
func (s *Sequencer) PatternOverride(mode int) int {
	if mode < 0 || mode >= numModes {
		return -1
	}
	return s.patternOverride[mode]
}

// VelocityOffset returns the velocity offset for mode, or 0 if mode is out
// of range.
func (s *Sequencer) VelocityOffset(mode int) int {
	if mode < 0 || mode >= numModes {
		return 0
	}
	return s.velocityOffset[mode]
}

// ScaleRoot returns the global scale root (0..11, C..B).
func (s *Sequencer) ScaleRoot() int {
	return s.scaleRoot
}

// ScaleType returns the global scale type (0..7).
func (s *Sequencer) ScaleType() int {
	return s.scaleType
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
