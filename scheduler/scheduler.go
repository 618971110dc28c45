// Package scheduler implements MIDI delta-time scheduling (MidiScheduler),
// built on a fixed-size event buffer that never grows under sustained use,
// and 24 PPQN clock generation (ClockManager).
package scheduler

import "time"

// Sink is anything that can transmit a raw MIDI byte sequence. The desktop
// implementation lives in the hardware package; tests use a recording
// fake.
type Sink interface {
	Send(data []byte)
}

// AudioSink is an optional internal MIDI-to-audio renderer (a FluidSynth-
// style software synth), routed independently of the external Sink. A
// Scheduler with no AudioSink set simply never routes to it; the audio
// DSP implementation behind this interface is out of scope, but the
// interface and the conditional routing to it are not.
type AudioSink interface {
	SendMidiMessage(data []byte)
	IsReady() bool
}

const maxQueuedEvents = 64

type slot struct {
	data       []byte
	absoluteMs int64
	active     bool
}

// Scheduler holds up to 64 pending MIDI messages, each tagged with an
// absolute send time, and flushes due ones on Update. A schedule call
// past capacity is dropped rather than grown, matching the bounded-memory
// behavior a fixed-size step sequencer relies on.
type Scheduler struct {
	sink  Sink
	slots [maxQueuedEvents]slot
	count int

	audioSink        AudioSink
	useExternalMidi  bool
	useInternalAudio bool
}

// New returns a Scheduler sending through sink, with external MIDI
// routing enabled and internal audio routing disabled (no AudioSink is
// set until SetAudioSink is called) — the same defaults as the original.
func New(sink Sink) *Scheduler {
	return &Scheduler{sink: sink, useExternalMidi: true}
}

// SetAudioSink attaches (or clears, with nil) the internal audio
// renderer routed to when internal-audio routing is enabled.
func (s *Scheduler) SetAudioSink(audioSink AudioSink) {
	s.audioSink = audioSink
}

// SetUseExternalMidi enables or disables routing due events to the
// external Sink.
func (s *Scheduler) SetUseExternalMidi(use bool) {
	s.useExternalMidi = use
}

// SetUseInternalAudio enables or disables routing due events to the
// AudioSink (still gated on the AudioSink reporting IsReady()).
func (s *Scheduler) SetUseInternalAudio(use bool) {
	s.useInternalAudio = use
}

// UsingExternalMidi reports whether external MIDI routing is enabled.
func (s *Scheduler) UsingExternalMidi() bool { return s.useExternalMidi }

// UsingInternalAudio reports whether internal audio routing is enabled.
func (s *Scheduler) UsingInternalAudio() bool { return s.useInternalAudio }

// Schedule queues data to be sent delay after now, with channel baked
// into the low nibble of the first (status) byte. Returns false if the
// buffer was full and the event was dropped.
func (s *Scheduler) Schedule(data []byte, channel uint8, delay time.Duration, now time.Time) bool {
	i := s.freeSlot()
	if i < 0 {
		return false
	}

	msg := append([]byte(nil), data...)
	if len(msg) > 0 {
		status := msg[0] & 0xF0
		msg[0] = status | (channel & 0x0F)
	}

	s.slots[i] = slot{
		data:       msg,
		absoluteMs: now.Add(delay).UnixMilli(),
		active:     true,
	}
	s.count++
	s.sortAll()
	return true
}

// Update sends every event whose absolute time has arrived, conditionally
// routing each to the external Sink and/or the internal AudioSink per
// spec.md §4.4: external MIDI when useExternalMidi is set, internal audio
// when useInternalAudio is set AND an AudioSink is attached and ready.
func (s *Scheduler) Update(now time.Time) {
	nowMs := now.UnixMilli()
	for i := 0; i < maxQueuedEvents && s.count > 0; i++ {
		if !s.slots[i].active {
			continue
		}
		if s.slots[i].absoluteMs > nowMs {
			break // slots are kept sorted; nothing further is due
		}
		if s.useExternalMidi {
			s.sink.Send(s.slots[i].data)
		}
		if s.useInternalAudio && s.audioSink != nil && s.audioSink.IsReady() {
			s.audioSink.SendMidiMessage(s.slots[i].data)
		}
		s.slots[i].active = false
		s.count--
	}
}

// Clear discards every pending event without sending it.
func (s *Scheduler) Clear() {
	for i := range s.slots {
		s.slots[i].active = false
	}
	s.count = 0
}

// QueuedCount reports how many events are currently pending.
func (s *Scheduler) QueuedCount() int {
	return s.count
}

func (s *Scheduler) freeSlot() int {
	for i := range s.slots {
		if !s.slots[i].active {
			return i
		}
	}
	return -1
}

// sortAll runs an insertion sort over the whole slot array so the active
// slots stay ordered by absolute time, packed ahead of every inactive
// slot (an inactive slot sorts as if it were due last). It re-sorts on every Schedule call
// rather than bubbling only from the newly-inserted index backward:
// freeSlot reuses the lowest free index, so a schedule following a drain
// can land a new, later timestamp in a low slot while an untouched,
// earlier-due event still sits at a higher index — a backward-only bubble
// from the insertion point never looks past its own index and leaves that
// higher slot out of place, which then stalls Update's early-break scan
// behind it. The buffer is small (64 entries, typically far fewer active)
// so a full pass is cheap and allocation-free.
func (s *Scheduler) sortAll() {
	for i := 1; i < maxQueuedEvents; i++ {
		if !s.slots[i].active {
			continue
		}
		temp := s.slots[i]
		j := i - 1
		for j >= 0 && (!s.slots[j].active || s.slots[j].absoluteMs > temp.absoluteMs) {
			s.slots[j+1] = s.slots[j]
			j--
		}
		s.slots[j+1] = temp
	}
}

// Transport messages (System Real-Time) bypass the delta-time buffer and
// are sent immediately.
const (
	transportClock    = 0xF8
	transportStart    = 0xFA
	transportContinue = 0xFB
	transportStop     = 0xFC
)

// SendClock transmits a single MIDI Clock (0xF8) byte immediately.
func (s *Scheduler) SendClock() { s.sink.Send([]byte{transportClock}) }

// SendStart transmits MIDI Start (0xFA) immediately.
func (s *Scheduler) SendStart() { s.sink.Send([]byte{transportStart}) }

// SendStop transmits MIDI Stop (0xFC) immediately.
func (s *Scheduler) SendStop() { s.sink.Send([]byte{transportStop}) }

// SendContinue transmits MIDI Continue (0xFB) immediately.
func (s *Scheduler) SendContinue() { s.sink.Send([]byte{transportContinue}) }

// NoteOn builds a Note On message for channel (low nibble applied by
// Schedule, these factories leave it at 0).
func NoteOn(pitch, velocity uint8) []byte {
	return []byte{0x90, pitch & 0x7F, velocity & 0x7F}
}

// NoteOff builds a Note Off message with a conventional ignored velocity.
func NoteOff(pitch uint8) []byte {
	return []byte{0x80, pitch & 0x7F, 0x40}
}

// ControlChange builds a Control Change message.
func ControlChange(controller, value uint8) []byte {
	return []byte{0xB0, controller & 0x7F, value & 0x7F}
}

// AllNotesOff builds the CC 123 (All Notes Off) message.
func AllNotesOff() []byte {
	return ControlChange(123, 0)
}
