package scheduler

import "time"

const pulsesPerQuarterNote = 24

// ClockManager drives MIDI clock output at 24 PPQN from an absolute
// anchor time, so pulses never drift even if Update is called irregularly
// — any pulses that fall due between calls are all emitted on the next
// Update (catch-up rather than skip).
type ClockManager struct {
	scheduler *Scheduler

	tempo int

	startTime time.Time

	// nextPulseIndex counts pulse slots relative to startTime. Index 0
	// coincides with Start itself (absorbed into the MIDI Start message,
	// not re-sent as a separate Clock byte), so it begins at 1 — the
	// first Clock byte Update can emit is for the slot one interval
	// after the anchor.
	nextPulseIndex int64
	pulseCount     int64
	intervalMs     float64
}

// NewClockManager returns a ClockManager at the default 120 BPM, sending
// transport and clock bytes through scheduler.
func NewClockManager(scheduler *Scheduler) *ClockManager {
	c := &ClockManager{scheduler: scheduler, tempo: 120}
	c.recalcInterval()
	return c
}

// Start anchors the clock at now, resets the pulse count, and sends MIDI
// Start.
func (c *ClockManager) Start(now time.Time) {
	c.startTime = now
	c.nextPulseIndex = 1
	c.pulseCount = 0
	c.scheduler.SendStart()
}

// Stop sends MIDI Stop. It does not reset the pulse count; a subsequent
// Continue (not modeled here, as spec.md scopes it to Start/Stop) would
// need that preserved.
func (c *ClockManager) Stop() {
	c.scheduler.SendStop()
}

// Update emits every clock pulse whose absolute due time has arrived,
// possibly more than one if Update wasn't called for a while. Before the
// first Start it emits nothing.
func (c *ClockManager) Update(now time.Time) {
	if c.nextPulseIndex == 0 {
		return // Start has not been called yet
	}
	next := c.pulseTime(c.nextPulseIndex)
	for !now.Before(next) {
		c.scheduler.SendClock()
		c.pulseCount++
		c.nextPulseIndex++
		next = c.pulseTime(c.nextPulseIndex)
	}
}

// pulseTime returns the anchor time plus the truncated millisecond offset
// of pulse index, truncating (not rounding) to match the integer-ms
// timestamps the rest of the transport operates on.
func (c *ClockManager) pulseTime(index int64) time.Time {
	offsetMs := int64(float64(index) * c.intervalMs)
	return c.startTime.Add(time.Duration(offsetMs) * time.Millisecond)
}

// SetTempo updates the BPM and recalculates the inter-pulse interval. It
// does not re-anchor the clock: pulses already sent are unaffected, and
// every later pulse is timed as its index times the new interval from the
// original Start time.
func (c *ClockManager) SetTempo(bpm int) {
	c.tempo = bpm
	c.recalcInterval()
}

// Tempo returns the current BPM.
func (c *ClockManager) Tempo() int {
	return c.tempo
}

// PulseCount returns how many clock pulses have been sent since Start.
func (c *ClockManager) PulseCount() int64 {
	return c.pulseCount
}

func (c *ClockManager) recalcInterval() {
	c.intervalMs = (60000.0 / float64(c.tempo)) / pulsesPerQuarterNote
}
