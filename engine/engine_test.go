package engine_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gruvbok/gruvbok/config"
	"github.com/gruvbok/gruvbok/engine"
	"github.com/gruvbok/gruvbok/led"
)

type recordingSink struct {
	sent  [][]byte
	ledOn bool
}

func (r *recordingSink) Send(data []byte) {
	r.sent = append(r.sent, append([]byte(nil), data...))
}

func (r *recordingSink) SetLED(on bool) {
	r.ledOn = on
}

var t0 = time.Unix(0, 0)

func newTestEngine() (*engine.Engine, *recordingSink) {
	sink := &recordingSink{}
	e := engine.New(nil, sink, config.Default())
	return e, sink
}

func TestDemoContentProducesNoMidiWithoutScript(t *testing.T) {
	e, sink := newTestEngine()
	e.Song().ModeAt(1).PatternAt(0).TrackAt(0).At(0).SetSwitch(true)
	e.Start(t0)

	for i := 0; i < 10; i++ {
		e.Update(t0.Add(time.Duration(i) * 20 * time.Millisecond))
	}

	// MIDI Start and Clock bytes are system real-time (0xF0 and up); any
	// byte below that opens a channel message a script would have emitted.
	var channelMsgs [][]byte
	for _, msg := range sink.sent {
		if len(msg) > 0 && msg[0] < 0xF0 {
			channelMsgs = append(channelMsgs, msg)
		}
	}
	assert.Empty(t, channelMsgs, "no script installed on mode 1, so no note output")
}

func TestDrumBackbeatWorkedExample(t *testing.T) {
	e, sink := newTestEngine()
	e.LoadDemoContent()
	e.Start(t0)

	sink.sent = nil // discard the MIDI Start byte sent by Start
	now := t0
	for i := 0; i < 200; i++ {
		now = now.Add(16 * time.Millisecond) // roughly the ~16.7ms tick a 60Hz host would use
		e.Update(now)
	}

	noteOns := 0
	for _, msg := range sink.sent {
		if len(msg) == 3 && msg[0]&0xF0 == 0x90 && msg[1] == 60 {
			noteOns++
		}
	}
	assert.GreaterOrEqual(t, noteOns, 4, "four kicks per bar at steps 0,4,8,12")
}

func TestStartThenStopClearsSchedulerAndEmitsTransport(t *testing.T) {
	e, sink := newTestEngine()
	e.Start(t0)
	require.Contains(t, sink.sent, []byte{0xFA}) // MIDI Start

	e.Stop()
	assert.Contains(t, sink.sent, []byte{0xFC}) // MIDI Stop
	assert.False(t, e.IsPlaying())
}

func TestSimulateButtonTogglesStepOnRisingEdgeOnly(t *testing.T) {
	e, _ := newTestEngine()
	e.Start(t0)

	e.SimulateButton(0, true)
	e.Update(t0)
	assert.True(t, e.Song().EventAt(0, 0, 0, 0).Switch())

	// Holding the button across further ticks must not toggle again.
	e.Update(t0.Add(10 * time.Millisecond))
	assert.True(t, e.Song().EventAt(0, 0, 0, 0).Switch())

	e.SimulateButton(0, false)
	e.Update(t0.Add(20 * time.Millisecond))
	e.SimulateButton(0, true)
	e.Update(t0.Add(30 * time.Millisecond))
	assert.False(t, e.Song().EventAt(0, 0, 0, 0).Switch())
}

func TestSliderPotsLatchOnSwitchOnEdge(t *testing.T) {
	e, _ := newTestEngine()
	e.Start(t0)
	e.SimulateRotaryPot(0, 10) // min(10*15/128, 14) == 1

	e.SimulateSliderPot(0, 60)
	e.SimulateSliderPot(1, 100)
	e.SimulateButton(5, true)
	e.Update(t0)

	ev := e.Song().EventAt(1, 0, 0, 5)
	assert.True(t, ev.Switch())
	assert.EqualValues(t, 60, ev.Pot(0))
	assert.EqualValues(t, 100, ev.Pot(1))
}

func TestEditingMode0AlwaysTargetsPattern0Track0(t *testing.T) {
	e, _ := newTestEngine()
	e.Start(t0)
	e.SetMode(0)
	e.SetPattern(7) // should be irrelevant while editing mode 0
	e.SetTrack(3)

	e.SimulateButton(2, true)
	e.Update(t0)

	assert.True(t, e.Song().EventAt(0, 0, 0, 2).Switch())
	assert.False(t, e.Song().EventAt(0, 7, 3, 2).Switch())
}

func TestIsDirtyAfterEdit(t *testing.T) {
	e, _ := newTestEngine()
	e.Start(t0)
	assert.False(t, e.IsDirty())

	e.SimulateButton(0, true)
	e.Update(t0)
	assert.True(t, e.IsDirty())
}

func TestSaveAndLoadSongRoundTrips(t *testing.T) {
	e, _ := newTestEngine()
	e.Start(t0)
	e.SimulateButton(0, true)
	e.Update(t0)

	path := filepath.Join(t.TempDir(), "song.json")
	require.NoError(t, e.SaveSong(path, "jam"))

	e2, _ := newTestEngine()
	name, tempo, err := e2.LoadSong(path)
	require.NoError(t, err)
	assert.Equal(t, "jam", name)
	assert.Equal(t, 120, tempo)
	assert.True(t, e2.Song().EventAt(0, 0, 0, 0).Switch())
	assert.False(t, e2.IsDirty())
}

func TestAutosaveFiresAfterTwentySecondsContinuousDirty(t *testing.T) {
	cfg := config.Default()
	cfg.AutosavePath = filepath.Join(t.TempDir(), "autosave.bin")
	e := engine.New(nil, &recordingSink{}, cfg)

	e.Start(t0)
	e.SimulateButton(0, true)
	e.Update(t0)
	require.True(t, e.IsDirty())

	e.Update(t0.Add(19 * time.Second))
	assert.True(t, e.IsDirty(), "not yet due")

	e.Update(t0.Add(21 * time.Second))
	assert.False(t, e.IsDirty(), "autosave should have fired and cleared dirty")
}

func TestTempoHysteresisIgnoresSmallRotaryJitter(t *testing.T) {
	e, _ := newTestEngine()
	e.Start(t0)
	e.SetTempo(120, t0)

	// pot value mapping to something within 5 BPM of 120 should not move
	// the tempo (and so must not re-arm the debounced script reinit).
	e.SimulateRotaryPot(1, 42) // 60 + 42*180/127 ≈ 119
	e.Update(t0)
	assert.Equal(t, 120, e.Tempo())
}

type fakeAudioSink struct {
	ready bool
	sent  [][]byte
}

func (f *fakeAudioSink) IsReady() bool { return f.ready }
func (f *fakeAudioSink) SendMidiMessage(data []byte) {
	f.sent = append(f.sent, append([]byte(nil), data...))
}

func TestAudioSinkReceivesEventsWhenAttachedAndEnabled(t *testing.T) {
	e, _ := newTestEngine()
	audio := &fakeAudioSink{ready: true}
	e.SetAudioSink(audio)
	e.SetUseInternalAudio(true)

	e.LoadDemoContent()
	e.Start(t0)

	now := t0
	for i := 0; i < 200; i++ {
		now = now.Add(16 * time.Millisecond)
		e.Update(now)
	}

	assert.NotEmpty(t, audio.sent, "internal audio routing should mirror external MIDI once enabled")
}

func TestLedStateTriggersTempoBeatEveryFourthStep(t *testing.T) {
	e, _ := newTestEngine()
	e.Start(t0)

	now := t0
	for i := 0; i < 5; i++ {
		now = now.Add(125 * time.Millisecond) // one step at the default 120 BPM
		e.Update(now)
	}

	pattern, on := e.LEDState()
	assert.Equal(t, led.TempoBeat, pattern)
	assert.True(t, on)
}
