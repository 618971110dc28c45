package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gruvbok/gruvbok/event"
)

func TestEventSetPotClampsAndIsolatesFields(t *testing.T) {
	var e event.Event
	e.SetSwitch(true)
	e.SetPot(0, 10)
	e.SetPot(1, 200) // out of range, clamps to 127
	e.SetPot(2, -5)  // out of range, clamps to 0

	assert.True(t, e.Switch())
	assert.EqualValues(t, 10, e.Pot(0))
	assert.EqualValues(t, 127, e.Pot(1))
	assert.EqualValues(t, 0, e.Pot(2))
	assert.EqualValues(t, 0, e.Pot(3))

	e.SetPot(3, 42)
	assert.EqualValues(t, 10, e.Pot(0), "unrelated pot must be untouched")
	assert.True(t, e.Switch(), "switch must be untouched by pot writes")
}

func TestEventPackedRoundTrips(t *testing.T) {
	for word := uint32(0); word < 1<<20; word += 12347 {
		e := event.FromPacked(word)
		require.Equal(t, word, e.Packed())
	}
}

func TestEventEmptyIsAllZero(t *testing.T) {
	var e event.Event
	assert.False(t, e.Switch())
	for i := 0; i < 4; i++ {
		assert.EqualValues(t, 0, e.Pot(i))
	}
	assert.EqualValues(t, 0, e.Packed())
}

func TestToggleSwitchTwiceIsIdentity(t *testing.T) {
	var e event.Event
	e.SetPot(0, 5)
	before := e.Packed()
	e.SetSwitch(true)
	e.SetSwitch(false)
	assert.Equal(t, before, e.Packed())
}

func TestTrackClampsStepIndex(t *testing.T) {
	var tr event.Track
	tr.At(-1).SetSwitch(true)
	tr.At(1000).SetPot(0, 99)

	assert.True(t, tr.Events[0].Switch())
	assert.EqualValues(t, 99, tr.Events[event.NumEvents-1].Pot(0))
}

func TestSongEventAtClampsEveryLevel(t *testing.T) {
	s := event.New()
	e := s.EventAt(-5, 999, -1, 999)
	e.SetSwitch(true)

	got := s.EventAt(0, event.NumPatterns-1, 0, event.NumEvents-1)
	assert.True(t, got.Switch())
}

func TestSongMemoryFootprint(t *testing.T) {
	assert.Equal(t, 15*32*8*16*4, event.MemoryFootprint())
}

func TestSongClearZeroesEverything(t *testing.T) {
	s := event.New()
	s.EventAt(3, 4, 5, 6).SetSwitch(true)
	s.EventAt(3, 4, 5, 6).SetPot(2, 77)

	s.Clear()

	assert.False(t, s.EventAt(3, 4, 5, 6).Switch())
	assert.EqualValues(t, 0, s.EventAt(3, 4, 5, 6).Pot(2))
}

func TestModeChannelMapping(t *testing.T) {
	var m event.Mode
	assert.EqualValues(t, 0, m.Channel(1))
	assert.EqualValues(t, 9, m.Channel(10))
	assert.EqualValues(t, 13, m.Channel(14))
	assert.EqualValues(t, 0, m.Channel(0))
}
