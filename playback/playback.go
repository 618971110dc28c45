// Package playback holds transport state: tempo, position cursors, the
// step-interval timer, and the debounced script-reinit flag.
package playback

import "time"

const (
	minTempo = 1
	maxTempo = 1000

	numModes    = 15
	numPatterns = 32
	numTracks   = 8
	numSteps    = 16

	tempoDebounce = 1000 * time.Millisecond
)

// State is the sequencer's transport and cursor state. All timestamps are
// caller-supplied (via now time.Time) rather than read from the wall clock
// directly, so the whole component is deterministic under test.
type State struct {
	Playing bool
	TempoBPM int

	CurrentMode    int
	CurrentPattern int
	CurrentTrack   int
	CurrentStep    int
	TargetMode     int // 1..14, used only when editing mode 0

	lastStepTime   time.Time
	stepIntervalMs int64

	reinitPending    bool
	lastTempoChange  time.Time
}

// New returns a State at the default tempo (120 BPM) with cursors zeroed
// and target mode defaulted to 1.
func New() *State {
	s := &State{
		TempoBPM:   120,
		TargetMode: 1,
	}
	s.recalcStepInterval()
	return s
}

// Start begins playback: resets the step cursor to 0 and anchors the
// step timer at now.
func (s *State) Start(now time.Time) {
	s.Playing = true
	s.CurrentStep = 0
	s.lastStepTime = now
}

// Stop halts step advancement. Idempotent.
func (s *State) Stop() {
	s.Playing = false
}

// ShouldAdvanceStep reports whether enough time has elapsed since the last
// step to advance, given the current tempo's step interval.
func (s *State) ShouldAdvanceStep(now time.Time) bool {
	if !s.Playing {
		return false
	}
	return now.Sub(s.lastStepTime).Milliseconds() >= s.stepIntervalMs
}

// AdvanceStep moves the step cursor forward by one, wrapping modulo 16,
// and re-anchors the step timer at now.
func (s *State) AdvanceStep(now time.Time) {
	s.lastStepTime = now
	s.CurrentStep = (s.CurrentStep + 1) % numSteps
}

// StepIntervalMs returns the current per-step interval in milliseconds:
// (60000 / BPM) / 4, integer division.
func (s *State) StepIntervalMs() int64 {
	return s.stepIntervalMs
}

// SetTempo clamps bpm to 1..1000, recomputes the step interval, and arms
// the debounced script-reinit request.
func (s *State) SetTempo(bpm int, now time.Time) {
	if bpm < minTempo {
		bpm = minTempo
	}
	if bpm > maxTempo {
		bpm = maxTempo
	}
	s.TempoBPM = bpm
	s.recalcStepInterval()

	s.reinitPending = true
	s.lastTempoChange = now
}

func (s *State) recalcStepInterval() {
	s.stepIntervalMs = int64((60000 / s.TempoBPM) / 4)
}

// IsReinitPending reports whether a tempo change happened at least 1s ago
// and hasn't yet been consumed by ClearReinitPending.
func (s *State) IsReinitPending(now time.Time) bool {
	if !s.reinitPending {
		return false
	}
	return now.Sub(s.lastTempoChange) >= tempoDebounce
}

// ClearReinitPending consumes the pending flag.
func (s *State) ClearReinitPending() {
	s.reinitPending = false
}

// SetMode rejects out-of-range values (0..14) as a no-op.
func (s *State) SetMode(mode int) {
	if mode >= 0 && mode < numModes {
		s.CurrentMode = mode
	}
}

// SetPattern rejects out-of-range values (0..31) as a no-op.
func (s *State) SetPattern(pattern int) {
	if pattern >= 0 && pattern < numPatterns {
		s.CurrentPattern = pattern
	}
}

// SetTrack rejects out-of-range values (0..7) as a no-op.
func (s *State) SetTrack(track int) {
	if track >= 0 && track < numTracks {
		s.CurrentTrack = track
	}
}

// SetTargetMode rejects 0 and values above 14 as no-ops (target mode only
// ranges over the 14 editable modes).
func (s *State) SetTargetMode(mode int) {
	if mode >= 1 && mode < numModes {
		s.TargetMode = mode
	}
}
