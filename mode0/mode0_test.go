package mode0_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gruvbok/gruvbok/event"
	"github.com/gruvbok/gruvbok/mode0"
)

func TestNewDefaultsToFullBarAndNoOverrides(t *testing.T) {
	s := mode0.New(event.New())
	assert.Equal(t, 16, s.LoopLength())
	for m := 1; m < event.NumModes; m++ {
		assert.Equal(t, -1, s.PatternOverride(m))
		assert.Equal(t, 0, s.VelocityOffset(m))
	}
}

func TestRecalculateLoopLengthDefaultsTo16WhenNoStepActive(t *testing.T) {
	song := event.New()
	s := mode0.New(song)
	s.RecalculateLoopLength()
	assert.Equal(t, 16, s.LoopLength())
}

func TestRecalculateLoopLengthUsesHighestActiveStepPlusOne(t *testing.T) {
	song := event.New()
	song.EventAt(0, 0, 0, 3).SetSwitch(true)
	song.EventAt(0, 0, 0, 9).SetSwitch(true)

	s := mode0.New(song)
	s.RecalculateLoopLength()
	assert.Equal(t, 10, s.LoopLength())
}

func TestAdvanceStepWrapsAtLoopLength(t *testing.T) {
	song := event.New()
	song.EventAt(0, 0, 0, 2).SetSwitch(true) // loop length 3

	s := mode0.New(song)
	s.RecalculateLoopLength()
	s.Start()

	s.AdvanceStep()
	s.AdvanceStep()
	assert.Equal(t, 2, s.Step())

	s.AdvanceStep()
	assert.Equal(t, 0, s.Step(), "must wrap at loop length, not 16")
}

func TestApplyParametersSkipsWhenSwitchOff(t *testing.T) {
	song := event.New()
	s := mode0.New(song)

	s.ApplyParameters()
	assert.Equal(t, -1, s.PatternOverride(1))
}

func TestApplyParametersBroadcastsToAllPlayableModes(t *testing.T) {
	song := event.New()
	ev := song.EventAt(0, 0, 0, 0)
	ev.SetSwitch(true)
	ev.SetPot(0, 64)  // pattern selection
	ev.SetPot(1, 24)  // scale root
	ev.SetPot(2, 32)  // scale type
	ev.SetPot(3, 96)  // velocity offset (96-64=32)

	s := mode0.New(song)
	s.ApplyParameters()

	for m := 1; m < event.NumModes; m++ {
		assert.Equal(t, s.PatternOverride(1), s.PatternOverride(m))
		assert.Equal(t, s.VelocityOffset(1), s.VelocityOffset(m))
	}
	assert.GreaterOrEqual(t, s.PatternOverride(1), 0)
	assert.Less(t, s.PatternOverride(1), event.NumPatterns)
	assert.Equal(t, 32, s.VelocityOffset(1))
	assert.True(t, s.ScaleRoot() >= 0 && s.ScaleRoot() <= 11)
	assert.True(t, s.ScaleType() >= 0 && s.ScaleType() <= 7)
}

func TestPatternOverrideAndVelocityOffsetDefaultOutOfRange(t *testing.T) {
	s := mode0.New(event.New())
	assert.Equal(t, -1, s.PatternOverride(0))
	assert.Equal(t, -1, s.PatternOverride(99))
	assert.Equal(t, 0, s.VelocityOffset(-1))
	assert.Equal(t, 0, s.VelocityOffset(99))
}

func TestStartResetsStepToZero(t *testing.T) {
	song := event.New()
	song.EventAt(0, 0, 0, 5).SetSwitch(true)
	s := mode0.New(song)
	s.RecalculateLoopLength()
	s.Start()
	s.AdvanceStep()
	s.AdvanceStep()
	assert.NotEqual(t, 0, s.Step())

	s.Start()
	assert.Equal(t, 0, s.Step())
}
