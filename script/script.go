// Package script implements the per-mode scripted-extension calling
// convention. The runtime itself is out of scope — per spec, only the
// calling convention and exposed host API are specified — and no example
// repo in the reference pack carries a scripting-language dependency, so
// a "script" here is a Go Behavior registered under a name and invoked
// through the same load/init/process_event lifecycle a real embedded
// interpreter would be driven through.
package script

import "github.com/gruvbok/gruvbok/debug"

// InitParams mirrors the record passed to a script's init(ctx).
type InitParams struct {
	Tempo          int
	ModeNumber     int
	MidiChannel    uint8
	ScaleRoot      int
	ScaleType      int
	VelocityOffset int
}

// EventView mirrors the event record passed to process_event(track, event).
type EventView struct {
	Switch bool
	Pots   [4]uint8
}

// HostEvent is one MIDI message queued by the host API, still in relative
// (delta) time — Engine converts it to an absolute schedule entry.
type HostEvent struct {
	Data  []byte
	Delta int // milliseconds from now
}

// LEDRequest is one led() host API call, forwarded by Engine to its
// LedController.
type LEDRequest struct {
	Name       string
	Brightness uint8
}

// RuntimeContext is the host API surface a Behavior is given: note/off/cc/
// stopall/led, all accumulating into per-call buffers the Context drains
// after each process_event.
type RuntimeContext struct {
	channel uint8

	events []HostEvent
	leds   []LEDRequest
}

// Note queues a Note On on the context's channel.
func (r *RuntimeContext) Note(pitch, velocity uint8, deltaMs int) {
	r.events = append(r.events, HostEvent{Data: []byte{0x90, pitch & 0x7F, velocity & 0x7F}, Delta: deltaMs})
}

// Off queues a Note Off with the conventional release velocity 0x40.
func (r *RuntimeContext) Off(pitch uint8, deltaMs int) {
	r.events = append(r.events, HostEvent{Data: []byte{0x80, pitch & 0x7F, 0x40}, Delta: deltaMs})
}

// CC queues a Control Change.
func (r *RuntimeContext) CC(controller, value uint8, deltaMs int) {
	r.events = append(r.events, HostEvent{Data: []byte{0xB0, controller & 0x7F, value & 0x7F}, Delta: deltaMs})
}

// StopAll queues an All Notes Off (CC 123, value 0).
func (r *RuntimeContext) StopAll(deltaMs int) {
	r.CC(123, 0, deltaMs)
}

// LED requests an LED pattern by name on the Engine.
func (r *RuntimeContext) LED(name string, brightness uint8) {
	r.leds = append(r.leds, LEDRequest{Name: name, Brightness: brightness})
}

// Behavior is a registered "script": Go code invoked through init/
// process_event rather than loaded from source text.
type Behavior interface {
	Init(ctx *RuntimeContext, params InitParams)
	ProcessEvent(ctx *RuntimeContext, track int, ev EventView)
}

// NamedBehavior is a Behavior that additionally exposes the optional
// mode name / slider labels a real script might define as globals.
type NamedBehavior interface {
	Behavior
	ModeName() string
	SliderLabels() [4]string
}

// Context wraps one Behavior bound to a mode slot and MIDI channel,
// matching the spec's ScriptContext surface.
type Context struct {
	behavior Behavior
	channel  uint8
	valid    bool
	rt       *RuntimeContext
}

// NewContext returns an empty, invalid Context — Load must succeed before
// CallInit/CallProcessEvent do anything.
func NewContext() *Context {
	return &Context{rt: &RuntimeContext{}}
}

// Load resolves name against the Behavior registry. Behaviors missing
// from the registry behave like a script with a missing entry point: the
// context becomes (or stays) invalid.
func (c *Context) Load(name string) bool {
	b, ok := Lookup(name)
	if !ok {
		c.behavior = nil
		c.valid = false
		return false
	}
	c.behavior = b
	c.valid = true
	return true
}

// SetChannel sets the MIDI channel note/off/cc/stopall will be queued on.
func (c *Context) SetChannel(ch uint8) {
	c.channel = ch
	c.rt.channel = ch
}

// Valid reports whether this context can currently produce events.
func (c *Context) Valid() bool {
	return c.valid
}

// Channel returns the MIDI channel this context was assigned via
// SetChannel. Scheduler.Schedule bakes this into each queued event's
// status byte; the events this context's Behavior returns carry no
// channel of their own.
func (c *Context) Channel() uint8 {
	return c.channel
}

// CallInit invokes the behavior's Init. A panic here marks the context
// invalid, same as a script syntax error or missing entry point would.
func (c *Context) CallInit(params InitParams) (ok bool) {
	if !c.valid {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			debug.Log("script", "init fault on mode %d: %v", params.ModeNumber, r)
			c.valid = false
			ok = false
		}
	}()
	c.behavior.Init(c.rt, params)
	return true
}

// CallProcessEvent invokes the behavior's ProcessEvent and drains the
// accumulator. A runtime fault produces no events for this tick but,
// unlike an init fault, does not demote the context — it remains usable
// on the next tick.
func (c *Context) CallProcessEvent(track int, ev EventView) ([]HostEvent, []LEDRequest) {
	if !c.valid {
		return nil, nil
	}
	c.rt.events = nil
	c.rt.leds = nil

	func() {
		defer func() {
			if r := recover(); r != nil {
				debug.Log("script", "process_event fault on channel %d: %v", c.channel, r)
				c.rt.events = nil
				c.rt.leds = nil
			}
		}()
		c.behavior.ProcessEvent(c.rt, track, ev)
	}()

	return c.rt.events, c.rt.leds
}

// ModeName returns the behavior's declared mode name, or "" if it
// doesn't implement NamedBehavior or the context is invalid.
func (c *Context) ModeName() string {
	if nb, ok := c.behavior.(NamedBehavior); ok && c.valid {
		return nb.ModeName()
	}
	return ""
}

// SliderLabels returns the behavior's declared pot labels, or four empty
// strings if it doesn't implement NamedBehavior or the context is
// invalid.
func (c *Context) SliderLabels() [4]string {
	if nb, ok := c.behavior.(NamedBehavior); ok && c.valid {
		return nb.SliderLabels()
	}
	return [4]string{}
}
