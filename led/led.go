// Package led implements the status LED's state machine: a small set of
// named patterns (tempo pulse, button-held, saving, loading, error,
// mirror-mode) each with its own fixed waveform, ticked forward by Update.
package led

import "time"

// Sink is the physical (or simulated) LED output.
type Sink interface {
	SetLED(on bool)
}

// Pattern names a waveform. TempoBeat is the idle/default pattern; Saving
// and Error are self-terminating and revert to TempoBeat when done.
type Pattern int

const (
	TempoBeat Pattern = iota
	ButtonHeld
	Saving
	Loading
	ErrorPattern
	MirrorMode
)

const tempoBeatDuration = 50 * time.Millisecond

// Controller drives sink through Pattern waveforms. All timing decisions
// are driven by a caller-supplied now, matching playback.State and
// scheduler.ClockManager's testable style.
type Controller struct {
	sink Sink

	pattern    Pattern
	on         bool
	brightness uint8

	stateStart time.Time
	phaseStart time.Time
}

// New returns a Controller idling on TempoBeat with the LED off.
func New(sink Sink) *Controller {
	return &Controller{sink: sink, pattern: TempoBeat}
}

// Trigger switches to pattern at brightness, restarting its waveform from
// now with the LED lit.
func (c *Controller) Trigger(pattern Pattern, brightness uint8, now time.Time) {
	c.pattern = pattern
	c.brightness = brightness
	c.stateStart = now
	c.phaseStart = now
	c.on = true
	c.sink.SetLED(true)
}

// TriggerByName triggers a pattern addressed by its script-facing name;
// unrecognized names fall back to TempoBeat.
func (c *Controller) TriggerByName(name string, brightness uint8, now time.Time) {
	c.Trigger(patternByName(name), brightness, now)
}

func patternByName(name string) Pattern {
	switch name {
	case "held":
		return ButtonHeld
	case "saving":
		return Saving
	case "loading":
		return Loading
	case "error":
		return ErrorPattern
	case "mirror":
		return MirrorMode
	default:
		return TempoBeat
	}
}

// CurrentPattern returns the pattern currently driving the LED.
func (c *Controller) CurrentPattern() Pattern {
	return c.pattern
}

// On reports the LED's current lit state.
func (c *Controller) On() bool {
	return c.on
}

// String renders a Pattern's script-facing name, the inverse of
// patternByName, for status displays and logging.
func (p Pattern) String() string {
	switch p {
	case ButtonHeld:
		return "held"
	case Saving:
		return "saving"
	case Loading:
		return "loading"
	case ErrorPattern:
		return "error"
	case MirrorMode:
		return "mirror"
	default:
		return "tempo"
	}
}

// Update advances the current pattern's waveform to now.
func (c *Controller) Update(now time.Time) {
	patternElapsed := now.Sub(c.stateStart)
	phaseElapsed := now.Sub(c.phaseStart)

	switch c.pattern {
	case TempoBeat:
		if c.on && phaseElapsed >= tempoBeatDuration {
			c.setLED(false)
		}

	case ButtonHeld:
		// Fast double-blink: 100ms on, 50ms off, 100ms on, 150ms off, repeat.
		switch {
		case patternElapsed < 100*time.Millisecond:
			c.setLED(true)
		case patternElapsed < 150*time.Millisecond:
			c.setLED(false)
		case patternElapsed < 250*time.Millisecond:
			c.setLED(true)
		case patternElapsed < 400*time.Millisecond:
			c.setLED(false)
		default:
			c.stateStart = now
		}

	case Saving:
		// 5 rapid 100ms-on/100ms-off blinks, then revert to TempoBeat.
		c.runBoundedBlink(phaseElapsed, 200*time.Millisecond, 100*time.Millisecond, 5)

	case Loading:
		// Slow 1s-on/1s-off pulse, indefinitely.
		shouldBeOn := patternElapsed%(2*time.Second) < time.Second
		c.setLED(shouldBeOn)

	case ErrorPattern:
		// 3 fast 50ms-on/50ms-off blinks, then revert to TempoBeat.
		c.runBoundedBlink(phaseElapsed, 100*time.Millisecond, 50*time.Millisecond, 3)

	case MirrorMode:
		// Alternating 200ms on / 100ms off, repeat.
		switch {
		case patternElapsed < 200*time.Millisecond:
			c.setLED(true)
		case patternElapsed < 300*time.Millisecond:
			c.setLED(false)
		default:
			c.stateStart = now
		}
	}
}

// runBoundedBlink implements the Saving/Error shape: cycleLen-long cycles,
// on for onLen of each cycle, for cycleCount cycles, then a fall back to
// TempoBeat with the LED left off.
func (c *Controller) runBoundedBlink(phaseElapsed, cycleLen, onLen time.Duration, cycleCount int) {
	cycle := int(phaseElapsed / cycleLen)
	if cycle >= cycleCount {
		c.pattern = TempoBeat
		c.setLED(false)
		return
	}
	c.setLED(phaseElapsed%cycleLen < onLen)
}

func (c *Controller) setLED(on bool) {
	if on == c.on {
		return
	}
	c.on = on
	c.sink.SetLED(on)
}
