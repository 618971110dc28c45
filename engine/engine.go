// Package engine is the composition root: it owns the Song and wires
// together playback, the mode-0 meta-sequencer, the MIDI scheduler and
// clock, the LED controller, the per-mode script contexts, and a
// hardware sink into the single-threaded, cooperatively-scheduled
// update loop the rest of the system is driven by.
package engine

import (
	"time"

	"github.com/gruvbok/gruvbok/config"
	"github.com/gruvbok/gruvbok/debug"
	"github.com/gruvbok/gruvbok/event"
	"github.com/gruvbok/gruvbok/hardware"
	"github.com/gruvbok/gruvbok/led"
	"github.com/gruvbok/gruvbok/mode0"
	"github.com/gruvbok/gruvbok/persist"
	"github.com/gruvbok/gruvbok/playback"
	"github.com/gruvbok/gruvbok/scheduler"
	"github.com/gruvbok/gruvbok/script"
)

// autosaveDirtyThreshold is how long the store must stay continuously
// dirty before an autosave snapshot is written.
const autosaveDirtyThreshold = 20 * time.Second

// tempoBeatBrightness is the brightness used for the once-per-beat
// TempoBeat pulse fired from processStep.
const tempoBeatBrightness = 127

// programChangeStatus is the MIDI status nibble for Program Change; the
// channel is applied by Scheduler.Schedule, same as every other message.
const programChangeStatus = 0xC0

// EventSnapshot is a read-only view of one event, for host-facing event
// inspection (ListEvents).
type EventSnapshot struct {
	Switch bool
	Pots   [event.NumPots]uint8
}

// Engine owns the Song and every sub-component; Update drives the whole
// sequencer one tick forward.
type Engine struct {
	song     *event.Song
	playback *playback.State
	mode0    *mode0.Sequencer
	sched    *scheduler.Scheduler
	clock    *scheduler.ClockManager
	led      *led.Controller
	scripts  *script.Loader
	cfg      *config.Config

	scriptDir string

	rotaryPots [4]uint8
	rotaryPrev [4]uint8
	sliderPots [4]uint8

	buttonPressed [event.NumEvents]bool
	buttonPrev    [event.NumEvents]bool

	dirty      bool
	dirtySince time.Time
}

// New returns an Engine over song (a fresh Song if nil), sending through
// sink and configured by cfg (config.Default() if nil). Construction
// creates every sub-component but does not start playback; call Start.
func New(song *event.Song, sink hardware.Sink, cfg *config.Config) *Engine {
	if song == nil {
		song = event.New()
	}
	if cfg == nil {
		cfg = config.Default()
	}

	sched := scheduler.New(sink)
	return &Engine{
		song:     song,
		playback: playback.New(),
		mode0:    mode0.New(song),
		sched:    sched,
		clock:    scheduler.NewClockManager(sched),
		led:      led.New(sink),
		scripts:  script.NewLoader(),
		cfg:      cfg,
	}
}

// Song returns the underlying event grid.
func (e *Engine) Song() *event.Song {
	return e.song
}

// SetAudioSink attaches (or clears, with nil) the optional internal
// audio renderer the Engine owns alongside its external hardware.Sink;
// see scheduler.AudioSink.
func (e *Engine) SetAudioSink(audioSink scheduler.AudioSink) {
	e.sched.SetAudioSink(audioSink)
}

// SetUseExternalMidi enables or disables routing due MIDI events to the
// external hardware.Sink.
func (e *Engine) SetUseExternalMidi(use bool) {
	e.sched.SetUseExternalMidi(use)
}

// SetUseInternalAudio enables or disables routing due MIDI events to the
// attached AudioSink.
func (e *Engine) SetUseInternalAudio(use bool) {
	e.sched.SetUseInternalAudio(use)
}

// LoadScripts scans dir for NN_description.lua-named script slots and
// installs them. See script.Loader.LoadFromDirectory.
func (e *Engine) LoadScripts(dir string) (int, error) {
	e.scriptDir = dir
	return e.scripts.LoadFromDirectory(dir, e.playback.TempoBPM)
}

// ReloadMode re-scans the configured script directory and reinitializes
// every loaded context, picking up a changed file for mode (and, as a
// side effect of the loader's directory-wide granularity, any other
// slot whose file changed too). A no-op if no directory was ever loaded
// or mode is out of range.
func (e *Engine) ReloadMode(mode int) error {
	if e.scriptDir == "" || mode < 0 || mode >= event.NumModes {
		return nil
	}
	_, err := e.scripts.LoadFromDirectory(e.scriptDir, e.playback.TempoBPM)
	return err
}

// Start begins playback: anchors the step timer and MIDI clock at now,
// resets the mode-0 cursor, and reinitializes every script context.
func (e *Engine) Start(now time.Time) {
	e.playback.Start(now)
	e.mode0.Start()
	e.clock.Start(now)
	e.reinitScriptModes(now)
}

// Stop halts playback, emits MIDI Stop, and clears the pending
// scheduler queue. Idempotent.
func (e *Engine) Stop() {
	e.playback.Stop()
	e.clock.Stop()
	e.sched.Clear()
}

// reinitScriptModes calls init(ctx) on every loaded mode-1..14 context
// and queues its default Program Change.
func (e *Engine) reinitScriptModes(now time.Time) {
	for mode := 1; mode < event.NumModes; mode++ {
		ctx := e.scripts.ContextFor(mode)
		if ctx == nil {
			continue
		}

		ok := ctx.CallInit(script.InitParams{
			Tempo:          e.playback.TempoBPM,
			ModeNumber:     mode,
			MidiChannel:    ctx.Channel(),
			ScaleRoot:      e.mode0.ScaleRoot(),
			ScaleType:      e.mode0.ScaleType(),
			VelocityOffset: e.mode0.VelocityOffset(mode),
		})
		if !ok {
			continue
		}

		if program := e.cfg.ProgramFor(mode); program >= 0 {
			e.sched.Schedule([]byte{programChangeStatus, byte(program)}, ctx.Channel(), 0, now)
		}
	}
}

// Update advances the engine by one tick. Intended to be called at
// roughly 60 Hz; the ordering (scheduler, then LED, then clock, then
// reinit check, then autosave, then input, then step) is load-bearing —
// see the ordering guarantees this mirrors.
func (e *Engine) Update(now time.Time) {
	e.sched.Update(now)
	e.led.Update(now)
	e.clock.Update(now)

	if e.playback.IsReinitPending(now) {
		e.reinitScriptModes(now)
		e.playback.ClearReinitPending()
	}

	e.checkAutosave(now)
	e.handleInput(now)

	if !e.playback.Playing {
		return
	}

	if e.playback.ShouldAdvanceStep(now) {
		e.processStep(now)
		e.playback.AdvanceStep(now)
		if e.playback.CurrentStep == 0 {
			e.mode0.AdvanceStep()
		}
	}
}

// processStep evaluates every mode's current step and schedules
// whatever MIDI its script context emits.
func (e *Engine) processStep(now time.Time) {
	step := e.playback.CurrentStep

	if step == 0 && e.playback.CurrentMode == 0 {
		e.mode0.ApplyParameters()
	}

	for m := 1; m < event.NumModes; m++ {
		pattern := e.playback.CurrentPattern
		if e.playback.CurrentMode == 0 {
			if override := e.mode0.PatternOverride(m); override >= 0 {
				pattern = override
			}
		}

		ctx := e.scripts.ContextFor(m)
		if ctx == nil || !ctx.Valid() {
			continue
		}

		for track := 0; track < event.NumTracks; track++ {
			ev := e.song.EventAt(m, pattern, track, step)
			view := script.EventView{
				Switch: ev.Switch(),
				Pots:   [4]uint8{ev.Pot(0), ev.Pot(1), ev.Pot(2), ev.Pot(3)},
			}

			events, leds := ctx.CallProcessEvent(track, view)
			for _, he := range events {
				if !e.sched.Schedule(he.Data, ctx.Channel(), time.Duration(he.Delta)*time.Millisecond, now) {
					debug.Log("engine", "scheduler full, dropped event for mode %d track %d", m, track)
				}
			}
			for _, lr := range leds {
				e.led.TriggerByName(lr.Name, lr.Brightness, now)
			}
		}
	}

	if step%4 == 0 {
		e.led.Trigger(led.TempoBeat, tempoBeatBrightness, now)
	}
}

// handleInput reads the current rotary/slider/button simulation state
// and applies it: rotary pots steer mode/tempo/pattern/track (or target
// mode, while editing mode 0); a rising edge on a step button toggles
// that step's switch, latching the slider pots as a parameter lock when
// the step turns on.
func (e *Engine) handleInput(now time.Time) {
	// Each rotary control only acts when its pot reading has changed
	// since the previous tick (and, for tempo, moved past the ±5 BPM
	// hysteresis) — otherwise a pot resting at 0 would force
	// mode/tempo/pattern/track back on every single tick and a
	// host-facing setter could never hold a value the pot disagreed with.
	if mode := clampInt(int(e.rotaryPots[0])*event.NumModes/128, 0, event.NumModes-1); e.rotaryPots[0] != e.rotaryPrev[0] && mode != e.playback.CurrentMode {
		e.playback.SetMode(mode)
	}

	rawTempo := 60 + int(e.rotaryPots[1])*180/127
	if e.rotaryPots[1] != e.rotaryPrev[1] && absInt(rawTempo-e.playback.TempoBPM) > 5 {
		e.playback.SetTempo(rawTempo, now)
	}

	if pattern := clampInt(int(e.rotaryPots[2])*event.NumPatterns/128, 0, event.NumPatterns-1); e.rotaryPots[2] != e.rotaryPrev[2] && pattern != e.playback.CurrentPattern {
		e.playback.SetPattern(pattern)
	}

	if e.playback.CurrentMode == 0 {
		if targetMode := clampInt(1+int(e.rotaryPots[3])*14/128, 1, event.NumModes-1); e.rotaryPots[3] != e.rotaryPrev[3] && targetMode != e.playback.TargetMode {
			e.playback.SetTargetMode(targetMode)
		}
	} else if track := clampInt(int(e.rotaryPots[3])*event.NumTracks/128, 0, event.NumTracks-1); e.rotaryPots[3] != e.rotaryPrev[3] && track != e.playback.CurrentTrack {
		e.playback.SetTrack(track)
	}
	e.rotaryPrev = e.rotaryPots

	for i := 0; i < event.NumEvents; i++ {
		if e.buttonPressed[i] && !e.buttonPrev[i] {
			e.toggleStepButton(i, now)
		}
	}
	e.buttonPrev = e.buttonPressed
}

// toggleStepButton toggles step's switch at the current edit target
// (mode 0/pattern 0/track 0 while editing mode 0, otherwise the current
// mode/pattern/track), latching the slider pots on a switch-on edge.
func (e *Engine) toggleStepButton(step int, now time.Time) {
	mode, pattern, track := e.playback.CurrentMode, e.playback.CurrentPattern, e.playback.CurrentTrack
	if mode == 0 {
		pattern, track = 0, 0
	}

	ev := e.song.EventAt(mode, pattern, track, step)
	turnedOn := !ev.Switch()
	ev.SetSwitch(turnedOn)
	if turnedOn {
		for i := 0; i < event.NumPots; i++ {
			ev.SetPot(i, int(e.sliderPots[i]))
		}
	}

	e.markDirty(now)
	if mode == 0 {
		e.mode0.RecalculateLoopLength()
	}
}

// checkAutosave writes a binary snapshot once the store has been
// continuously dirty for autosaveDirtyThreshold, reporting success or
// failure on the LED.
func (e *Engine) checkAutosave(now time.Time) {
	if !e.dirty || now.Sub(e.dirtySince) < autosaveDirtyThreshold {
		return
	}

	if err := persist.SaveBinary(e.cfg.AutosavePath, e.song); err != nil {
		debug.Log("engine", "autosave failed: %v", err)
		e.led.Trigger(led.ErrorPattern, tempoBeatBrightness, now)
		return
	}

	e.dirty = false
	e.led.Trigger(led.Saving, tempoBeatBrightness, now)
}

func (e *Engine) markDirty(now time.Time) {
	if !e.dirty {
		e.dirty = true
		e.dirtySince = now
	}
}

// --- host-facing API (spec.md §6) ---

// IsPlaying reports whether the transport is running.
func (e *Engine) IsPlaying() bool {
	return e.playback.Playing
}

// IsDirty reports whether the store has unsaved edits.
func (e *Engine) IsDirty() bool {
	return e.dirty
}

// CurrentMode, CurrentPattern, CurrentTrack, CurrentStep, SongModeStep,
// and Tempo expose the playback cursors and tempo.
func (e *Engine) CurrentMode() int    { return e.playback.CurrentMode }
func (e *Engine) CurrentPattern() int { return e.playback.CurrentPattern }
func (e *Engine) CurrentTrack() int   { return e.playback.CurrentTrack }
func (e *Engine) CurrentStep() int    { return e.playback.CurrentStep }
func (e *Engine) SongModeStep() int   { return e.mode0.Step() }
func (e *Engine) Tempo() int          { return e.playback.TempoBPM }

// LEDState returns the LED controller's current pattern and lit state.
func (e *Engine) LEDState() (led.Pattern, bool) {
	return e.led.CurrentPattern(), e.led.On()
}

// SetTempo, SetMode, SetPattern, and SetTrack are the host-facing
// setters; out-of-range values are silently clamped/ignored by the
// underlying PlaybackState.
func (e *Engine) SetTempo(bpm int, now time.Time) { e.playback.SetTempo(bpm, now) }
func (e *Engine) SetMode(mode int)                { e.playback.SetMode(mode) }
func (e *Engine) SetPattern(pattern int)          { e.playback.SetPattern(pattern) }
func (e *Engine) SetTrack(track int)              { e.playback.SetTrack(track) }

// SimulateButton records the held/released state of step button i
// (0..15); Update applies a rising edge as a toggle.
func (e *Engine) SimulateButton(i int, pressed bool) {
	if i < 0 || i >= event.NumEvents {
		return
	}
	e.buttonPressed[i] = pressed
}

// SimulateRotaryPot records rotary pot i's (0..3) raw value (0..127);
// Update's handleInput maps it to mode/tempo/pattern/track on the next
// tick after the value changes.
func (e *Engine) SimulateRotaryPot(i int, value uint8) {
	if i < 0 || i >= 4 {
		return
	}
	e.rotaryPots[i] = value & 0x7F
}

// SimulateSliderPot records slider pot i's (0..3) raw value (0..127);
// latched into an event's pots when a step button transitions to on.
func (e *Engine) SimulateSliderPot(i int, value uint8) {
	if i < 0 || i >= 4 {
		return
	}
	e.sliderPots[i] = value & 0x7F
}

// ListEvents returns all 16 steps of (mode, pattern, track) as a
// read-only snapshot, for a GUI/CLI shell's editor grid.
func (e *Engine) ListEvents(mode, pattern, track int) [event.NumEvents]EventSnapshot {
	var out [event.NumEvents]EventSnapshot
	for step := 0; step < event.NumEvents; step++ {
		ev := e.song.EventAt(mode, pattern, track, step)
		out[step] = EventSnapshot{
			Switch: ev.Switch(),
			Pots:   [4]uint8{ev.Pot(0), ev.Pot(1), ev.Pot(2), ev.Pot(3)},
		}
	}
	return out
}

// SetEventPot directly addresses one event's pot, bypassing the
// button-driven parameter lock — used by a GUI editor grid.
func (e *Engine) SetEventPot(mode, pattern, track, step, pot, value int, now time.Time) {
	e.song.EventAt(mode, pattern, track, step).SetPot(pot, value)
	e.markDirty(now)
}

// ToggleCurrentSwitch toggles the switch of the event at the current
// cursor position (mode/pattern/track from PlaybackState, plus step).
func (e *Engine) ToggleCurrentSwitch(step int, now time.Time) {
	ev := e.song.EventAt(e.playback.CurrentMode, e.playback.CurrentPattern, e.playback.CurrentTrack, step)
	ev.SetSwitch(!ev.Switch())
	e.markDirty(now)
}

// SetCurrentPot sets one pot of the event at the current cursor
// position's step.
func (e *Engine) SetCurrentPot(step, pot, value int, now time.Time) {
	e.song.EventAt(e.playback.CurrentMode, e.playback.CurrentPattern, e.playback.CurrentTrack, step).SetPot(pot, value)
	e.markDirty(now)
}

// SetModeProgram and GetModeProgram read/write the per-mode default GM
// program number the engine sends on (re)init.
func (e *Engine) SetModeProgram(mode, program int) {
	if mode < 0 || mode >= event.NumModes {
		return
	}
	e.cfg.ProgramMap[mode] = program
}

func (e *Engine) GetModeProgram(mode int) int {
	return e.cfg.ProgramFor(mode)
}

// SaveSong writes the current Song as a sparse text project file.
func (e *Engine) SaveSong(path, name string) error {
	return persist.SaveText(path, e.song, name, e.playback.TempoBPM)
}

// LoadSong replaces the current Song with path's contents, returning its
// stored name and tempo. The loaded Song becomes clean (not dirty).
func (e *Engine) LoadSong(path string) (name string, tempo int, err error) {
	song, name, tempo, err := persist.LoadText(path)
	if err != nil {
		return "", 0, err
	}
	*e.song = *song
	e.mode0.RecalculateLoopLength()
	e.dirty = false
	return name, tempo, nil
}

// LoadDemoContent installs spec.md's worked drum-backbeat example: a
// kick on mode 1 / pattern 0 / track 0 at steps {0,4,8,12} with pots
// (0:100, 1:50), and registers the built-in "drums" behavior on mode 1
// so it produces audible output immediately.
func (e *Engine) LoadDemoContent() {
	track := e.song.ModeAt(1).PatternAt(0).TrackAt(0)
	for _, step := range []int{0, 4, 8, 12} {
		ev := track.At(step)
		ev.SetSwitch(true)
		ev.SetPot(0, 100)
		ev.SetPot(1, 50)
	}

	ctx := script.NewContext()
	ctx.Load("drums")
	ctx.SetChannel(e.song.ModeAt(1).Channel(1))
	ctx.CallInit(script.InitParams{Tempo: e.playback.TempoBPM, ModeNumber: 1, MidiChannel: ctx.Channel()})
	e.scripts.Install(1, ctx)
}

// TriggerLEDPattern triggers an LED pattern by its script-facing name,
// the same mapping scripts' led() host-API call uses.
func (e *Engine) TriggerLEDPattern(name string, now time.Time) {
	e.led.TriggerByName(name, tempoBeatBrightness, now)
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

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
