// Package event implements the bit-packed event grid: Event, Track, Pattern,
// Mode and Song. A Song is the sequencer's entire state short of playback
// cursors — every step of every track of every pattern of every mode.
package event

// Song/Mode/Pattern/Track/Event sizes. Compile-time constants by convention
// (Go has no const arrays, so these size the fixed arrays below).
const (
	NumModes    = 15
	NumPatterns = 32
	NumTracks   = 8
	NumEvents   = 16
	NumPots     = 4
)

// Bit layout for the packed 32-bit word: bit 0 is the switch, then four
// 7-bit pot fields. Bits 29-31 are unused and must stay zero.
const (
	switchMask = 1 << 0

	pot0Shift = 1
	pot1Shift = 8
	pot2Shift = 15
	pot3Shift = 22

	potMask uint32 = 0x7F // 7 bits, 0-127
)

var potShifts = [NumPots]int{pot0Shift, pot1Shift, pot2Shift, pot3Shift}

// Event is a single step: an on/off switch plus four 7-bit pot values,
// packed into one 32-bit word.
type Event struct {
	data uint32
}

// FromPacked reconstructs an Event from its raw 32-bit representation.
func FromPacked(word uint32) Event {
	return Event{data: word}
}

// Packed returns the raw 32-bit representation of e.
func (e Event) Packed() uint32 {
	return e.data
}

// Switch reports whether this step is active.
func (e Event) Switch() bool {
	return e.data&switchMask != 0
}

// SetSwitch sets the on/off state without touching the pot fields.
func (e *Event) SetSwitch(on bool) {
	if on {
		e.data |= switchMask
	} else {
		e.data &^= switchMask
	}
}

// Pot returns pot i (0-3), clamped to a valid index.
func (e Event) Pot(i int) uint8 {
	i = clampPotIndex(i)
	return uint8((e.data >> potShifts[i]) & potMask)
}

// SetPot clamps value to 0..127 and stores it in pot i (0-3), leaving the
// switch and the other three pots untouched.
func (e *Event) SetPot(i int, value int) {
	i = clampPotIndex(i)
	v := uint32(clampPot(value))
	e.data = (e.data &^ (potMask << potShifts[i])) | (v << potShifts[i])
}

// Clear resets the event to its empty state (switch off, all pots zero).
func (e *Event) Clear() {
	e.data = 0
}

func clampPotIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= NumPots {
		return NumPots - 1
	}
	return i
}

func clampPot(v int) int {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}

// Track is 16 addressable Events.
type Track struct {
	Events [NumEvents]Event
}

// At returns the Event at step, clamping out-of-range indices.
func (t *Track) At(step int) *Event {
	return &t.Events[clampIndex(step, NumEvents)]
}

// Clear zeroes every Event in the track.
func (t *Track) Clear() {
	for i := range t.Events {
		t.Events[i].Clear()
	}
}

// Pattern is 8 addressable Tracks.
type Pattern struct {
	Tracks [NumTracks]Track
}

// TrackAt returns the Track at idx, clamping out-of-range indices.
func (p *Pattern) TrackAt(idx int) *Track {
	return &p.Tracks[clampIndex(idx, NumTracks)]
}

// Clear zeroes every Track in the pattern.
func (p *Pattern) Clear() {
	for i := range p.Tracks {
		p.Tracks[i].Clear()
	}
}

// Mode is 32 addressable Patterns. Mode 0 is the song-mode meta-sequencer;
// modes 1-14 each emit on a fixed MIDI channel (mode N on channel N-1).
type Mode struct {
	Patterns [NumPatterns]Pattern
}

// PatternAt returns the Pattern at idx, clamping out-of-range indices.
func (m *Mode) PatternAt(idx int) *Pattern {
	return &m.Patterns[clampIndex(idx, NumPatterns)]
}

// Clear zeroes every Pattern in the mode.
func (m *Mode) Clear() {
	for i := range m.Patterns {
		m.Patterns[i].Clear()
	}
}

// Channel returns the MIDI channel mode N (N>0) emits on: N-1. Mode 0
// emits no note output and has no channel of its own.
func (m *Mode) Channel(modeNum int) uint8 {
	if modeNum <= 0 {
		return 0
	}
	return uint8(modeNum - 1)
}

// Song is the complete 15x32x8x16 event grid.
type Song struct {
	Modes [NumModes]Mode
}

// New returns a zeroed Song.
func New() *Song {
	return &Song{}
}

// ModeAt returns the Mode at idx, clamping out-of-range indices.
func (s *Song) ModeAt(idx int) *Mode {
	return &s.Modes[clampIndex(idx, NumModes)]
}

// EventAt returns the Event at (mode, pattern, track, step), clamping every
// index defensively so a mis-scaled input control can never crash the
// device.
func (s *Song) EventAt(mode, pattern, track, step int) *Event {
	m := s.ModeAt(mode)
	p := m.PatternAt(pattern)
	t := p.TrackAt(track)
	return t.At(step)
}

// Clear zeroes the entire grid.
func (s *Song) Clear() {
	for i := range s.Modes {
		s.Modes[i].Clear()
	}
}

// MemoryFootprint returns the exact static byte size of the dense event
// grid: NumModes * NumPatterns * NumTracks * NumEvents * 4 bytes.
func MemoryFootprint() int {
	return NumModes * NumPatterns * NumTracks * NumEvents * 4
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
